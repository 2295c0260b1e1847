package repository

import (
	"github.com/jpark/addressbook-backend/internal/app/model"
	"github.com/jpark/addressbook-backend/pkg/logger"
	"gorm.io/gorm"
)

type AddressRepository interface {
	Create(address *model.Address) error
	FindAll(offset, limit int) ([]model.Address, error)
	FindByID(id uint) (*model.Address, error)
	Update(address *model.Address) error
	Delete(id uint) error
	// All returns every stored address ordered by ID. The proximity search
	// consumes this snapshot, so iteration order here defines result order.
	All() ([]model.Address, error)
	Count() (int64, error)
	BulkCreate(addresses []model.Address, batchSize int) error
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(address *model.Address) error {
	logger.Debug("Creating address in database", map[string]interface{}{
		"street": address.Street,
		"city":   address.City,
	})

	if err := r.db.Create(address).Error; err != nil {
		logger.Error("Failed to create address in database", err, map[string]interface{}{
			"street": address.Street,
			"city":   address.City,
		})
		return err
	}

	logger.Debug("Address created in database", map[string]interface{}{
		"address_id": address.ID,
	})
	return nil
}

func (r *addressRepository) FindAll(offset, limit int) ([]model.Address, error) {
	logger.Debug("Finding addresses in database", map[string]interface{}{
		"offset": offset,
		"limit":  limit,
	})

	var addresses []model.Address
	err := r.db.Order("id").
		Offset(offset).
		Limit(limit).
		Find(&addresses).Error
	if err != nil {
		logger.Error("Failed to find addresses in database", err, map[string]interface{}{
			"offset": offset,
			"limit":  limit,
		})
		return nil, err
	}

	logger.Debug("Addresses found in database", map[string]interface{}{
		"count": len(addresses),
	})
	return addresses, nil
}

func (r *addressRepository) FindByID(id uint) (*model.Address, error) {
	logger.Debug("Finding address by ID in database", map[string]interface{}{
		"address_id": id,
	})

	var address model.Address
	err := r.db.First(&address, id).Error
	if err != nil {
		logger.Error("Failed to find address by ID in database", err, map[string]interface{}{
			"address_id": id,
		})
		return nil, err
	}

	return &address, nil
}

func (r *addressRepository) Update(address *model.Address) error {
	logger.Debug("Updating address in database", map[string]interface{}{
		"address_id": address.ID,
	})

	if err := r.db.Save(address).Error; err != nil {
		logger.Error("Failed to update address in database", err, map[string]interface{}{
			"address_id": address.ID,
		})
		return err
	}

	logger.Debug("Address updated in database", map[string]interface{}{
		"address_id": address.ID,
	})
	return nil
}

func (r *addressRepository) Delete(id uint) error {
	logger.Debug("Deleting address from database", map[string]interface{}{
		"address_id": id,
	})

	if err := r.db.Delete(&model.Address{}, id).Error; err != nil {
		logger.Error("Failed to delete address from database", err, map[string]interface{}{
			"address_id": id,
		})
		return err
	}

	logger.Debug("Address deleted from database", map[string]interface{}{
		"address_id": id,
	})
	return nil
}

func (r *addressRepository) All() ([]model.Address, error) {
	var addresses []model.Address
	err := r.db.Order("id").Find(&addresses).Error
	if err != nil {
		logger.Error("Failed to load full address snapshot from database", err, nil)
		return nil, err
	}

	logger.Debug("Full address snapshot loaded from database", map[string]interface{}{
		"count": len(addresses),
	})
	return addresses, nil
}

func (r *addressRepository) BulkCreate(addresses []model.Address, batchSize int) error {
	if len(addresses) == 0 {
		return nil
	}

	if err := r.db.CreateInBatches(addresses, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create addresses in database", err, map[string]interface{}{
			"count": len(addresses),
		})
		return err
	}

	logger.Debug("Addresses bulk created in database", map[string]interface{}{
		"count": len(addresses),
	})
	return nil
}

func (r *addressRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Address{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count addresses in database", err, nil)
		return 0, err
	}
	return count, nil
}
