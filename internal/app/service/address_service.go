package service

import (
	"errors"

	"github.com/jpark/addressbook-backend/internal/app/model"
	"github.com/jpark/addressbook-backend/internal/app/repository"
	"github.com/jpark/addressbook-backend/pkg/geo"
	"github.com/jpark/addressbook-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrAddressNotFound = errors.New("address not found")

// AddressUpdate carries a partial update. Nil fields keep their stored value.
type AddressUpdate struct {
	Street    *string
	City      *string
	State     *string
	ZipCode   *string
	Latitude  *float64
	Longitude *float64
}

type AddressService interface {
	CreateAddress(address *model.Address) error
	GetAddressByID(id uint) (*model.Address, error)
	GetAllAddresses(offset, limit int) ([]model.Address, error)
	UpdateAddress(id uint, update *AddressUpdate) (*model.Address, error)
	DeleteAddress(id uint) error
	SearchByDistance(reference geo.Point, radiusKm float64) ([]model.Address, error)
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{
		addressRepo: addressRepo,
	}
}

func (s *addressService) CreateAddress(address *model.Address) error {
	logger.Info("Creating address", map[string]interface{}{
		"street": address.Street,
		"city":   address.City,
	})

	if err := s.addressRepo.Create(address); err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"street": address.Street,
			"city":   address.City,
		})
		return err
	}

	logger.Info("Address created successfully", map[string]interface{}{
		"address_id": address.ID,
	})
	return nil
}

func (s *addressService) GetAddressByID(id uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug("Address not found", map[string]interface{}{
				"address_id": id,
			})
			return nil, ErrAddressNotFound
		}
		logger.Error("Failed to fetch address", err, map[string]interface{}{
			"address_id": id,
		})
		return nil, err
	}
	return address, nil
}

func (s *addressService) GetAllAddresses(offset, limit int) ([]model.Address, error) {
	addresses, err := s.addressRepo.FindAll(offset, limit)
	if err != nil {
		logger.Error("Failed to fetch addresses", err, map[string]interface{}{
			"offset": offset,
			"limit":  limit,
		})
		return nil, err
	}

	logger.Info("Addresses fetched successfully", map[string]interface{}{
		"count": len(addresses),
	})
	return addresses, nil
}

func (s *addressService) UpdateAddress(id uint, update *AddressUpdate) (*model.Address, error) {
	logger.Info("Updating address", map[string]interface{}{
		"address_id": id,
	})

	address, err := s.addressRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Address not found for update", map[string]interface{}{
				"address_id": id,
			})
			return nil, ErrAddressNotFound
		}
		logger.Error("Failed to fetch address for update", err, map[string]interface{}{
			"address_id": id,
		})
		return nil, err
	}

	// Only provided fields are updated
	if update.Street != nil {
		address.Street = *update.Street
	}
	if update.City != nil {
		address.City = *update.City
	}
	if update.State != nil {
		address.State = *update.State
	}
	if update.ZipCode != nil {
		address.ZipCode = *update.ZipCode
	}
	if update.Latitude != nil {
		address.Latitude = *update.Latitude
	}
	if update.Longitude != nil {
		address.Longitude = *update.Longitude
	}

	if err := s.addressRepo.Update(address); err != nil {
		logger.Error("Failed to update address", err, map[string]interface{}{
			"address_id": id,
		})
		return nil, err
	}

	logger.Info("Address updated successfully", map[string]interface{}{
		"address_id": id,
	})
	return address, nil
}

func (s *addressService) DeleteAddress(id uint) error {
	logger.Info("Deleting address", map[string]interface{}{
		"address_id": id,
	})

	if _, err := s.addressRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Address not found for deletion", map[string]interface{}{
				"address_id": id,
			})
			return ErrAddressNotFound
		}
		logger.Error("Failed to fetch address for deletion", err, map[string]interface{}{
			"address_id": id,
		})
		return err
	}

	if err := s.addressRepo.Delete(id); err != nil {
		logger.Error("Failed to delete address", err, map[string]interface{}{
			"address_id": id,
		})
		return err
	}

	logger.Info("Address deleted successfully", map[string]interface{}{
		"address_id": id,
	})
	return nil
}

// SearchByDistance returns every address within radiusKm of the reference
// point, boundary inclusive, in storage iteration order (by ID). Full linear
// scan, one haversine evaluation per stored address.
func (s *addressService) SearchByDistance(reference geo.Point, radiusKm float64) ([]model.Address, error) {
	logger.Info("Searching addresses by distance", map[string]interface{}{
		"latitude":  reference.Latitude,
		"longitude": reference.Longitude,
		"radius_km": radiusKm,
	})

	all, err := s.addressRepo.All()
	if err != nil {
		logger.Error("Failed to load addresses for distance search", err, nil)
		return nil, err
	}

	nearby := make([]model.Address, 0)
	for _, address := range all {
		if geo.WithinRadius(reference, address.Coordinates(), radiusKm) {
			nearby = append(nearby, address)
		}
	}

	logger.Info("Distance search completed", map[string]interface{}{
		"radius_km": radiusKm,
		"scanned":   len(all),
		"matched":   len(nearby),
	})
	return nearby, nil
}
