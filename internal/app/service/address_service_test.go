package service

import (
	"testing"

	"github.com/jpark/addressbook-backend/internal/app/model"
	"github.com/jpark/addressbook-backend/internal/app/repository"
	"github.com/jpark/addressbook-backend/internal/db"
	"github.com/jpark/addressbook-backend/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAddressServiceTest(t *testing.T) AddressService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	addressRepo := repository.NewAddressRepository(testDB)
	return NewAddressService(addressRepo)
}

func strPtr(s string) *string       { return &s }
func floatPtr(f float64) *float64   { return &f }

func TestAddressService_CreateAndGet(t *testing.T) {
	addressService := setupAddressServiceTest(t)

	address := &model.Address{
		Street:    "221B Baker Street",
		City:      "London",
		State:     "Greater London",
		ZipCode:   "NW1 6XE",
		Latitude:  51.5238,
		Longitude: -0.1586,
	}

	err := addressService.CreateAddress(address)
	require.NoError(t, err)
	assert.NotZero(t, address.ID)

	found, err := addressService.GetAddressByID(address.ID)
	require.NoError(t, err)
	assert.Equal(t, "221B Baker Street", found.Street)
	assert.Equal(t, 51.5238, found.Latitude)
}

func TestAddressService_GetAddressByID_NotFound(t *testing.T) {
	addressService := setupAddressServiceTest(t)

	found, err := addressService.GetAddressByID(9999)
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.Nil(t, found)
}

func TestAddressService_GetAllAddresses_Pagination(t *testing.T) {
	addressService := setupAddressServiceTest(t)

	for i := 0; i < 5; i++ {
		err := addressService.CreateAddress(&model.Address{
			Street:  "1 Main St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62701",
		})
		require.NoError(t, err)
	}

	page, err := addressService.GetAllAddresses(0, 3)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	page, err = addressService.GetAllAddresses(3, 3)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestAddressService_UpdateAddress_PartialFields(t *testing.T) {
	addressService := setupAddressServiceTest(t)

	address := &model.Address{
		Street:    "1 Old Street",
		City:      "Boston",
		State:     "MA",
		ZipCode:   "02101",
		Latitude:  42.3601,
		Longitude: -71.0589,
	}
	require.NoError(t, addressService.CreateAddress(address))

	updated, err := addressService.UpdateAddress(address.ID, &AddressUpdate{
		Street:   strPtr("2 New Street"),
		Latitude: floatPtr(42.3656),
	})
	require.NoError(t, err)

	// Provided fields change, everything else stays
	assert.Equal(t, "2 New Street", updated.Street)
	assert.Equal(t, 42.3656, updated.Latitude)
	assert.Equal(t, "Boston", updated.City)
	assert.Equal(t, "02101", updated.ZipCode)
	assert.Equal(t, -71.0589, updated.Longitude)
}

func TestAddressService_UpdateAddress_NotFound(t *testing.T) {
	addressService := setupAddressServiceTest(t)

	updated, err := addressService.UpdateAddress(42, &AddressUpdate{Street: strPtr("x")})
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.Nil(t, updated)
}

func TestAddressService_DeleteAddress(t *testing.T) {
	addressService := setupAddressServiceTest(t)

	address := &model.Address{
		Street:  "1 Main St",
		City:    "Springfield",
		State:   "IL",
		ZipCode: "62701",
	}
	require.NoError(t, addressService.CreateAddress(address))

	require.NoError(t, addressService.DeleteAddress(address.ID))

	_, err := addressService.GetAddressByID(address.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)

	assert.ErrorIs(t, addressService.DeleteAddress(address.ID), ErrAddressNotFound)
}

func TestAddressService_SearchByDistance(t *testing.T) {
	addressService := setupAddressServiceTest(t)

	// A at the reference, B roughly 111 km east, C roughly 1568 km away
	candidates := []*model.Address{
		{Street: "A", City: "Origin", State: "NA", ZipCode: "00000", Latitude: 0, Longitude: 0},
		{Street: "B", City: "Nearby", State: "NA", ZipCode: "00001", Latitude: 0, Longitude: 1},
		{Street: "C", City: "Far", State: "NA", ZipCode: "00002", Latitude: 10, Longitude: 10},
	}
	for _, a := range candidates {
		require.NoError(t, addressService.CreateAddress(a))
	}

	results, err := addressService.SearchByDistance(geo.Point{Latitude: 0, Longitude: 0}, 150)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].Street)
	assert.Equal(t, "B", results[1].Street)
}

func TestAddressService_SearchByDistance_InclusiveBoundary(t *testing.T) {
	addressService := setupAddressServiceTest(t)

	address := &model.Address{
		Street: "B", City: "Nearby", State: "NA", ZipCode: "00001",
		Latitude: 0, Longitude: 1,
	}
	require.NoError(t, addressService.CreateAddress(address))

	ref := geo.Point{Latitude: 0, Longitude: 0}
	exact := geo.Distance(ref, address.Coordinates())

	results, err := addressService.SearchByDistance(ref, exact)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = addressService.SearchByDistance(ref, exact-0.001)
	require.NoError(t, err)
	assert.Len(t, results, 0)
}

func TestAddressService_SearchByDistance_EmptyStore(t *testing.T) {
	addressService := setupAddressServiceTest(t)

	results, err := addressService.SearchByDistance(geo.Point{Latitude: 0, Longitude: 0}, 100)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Len(t, results, 0)
}

func TestAddressService_SearchByDistance_PreservesStorageOrder(t *testing.T) {
	addressService := setupAddressServiceTest(t)

	// Insert in an order where the nearest record is stored last; results
	// must follow storage order, not distance order.
	candidates := []*model.Address{
		{Street: "Farther", City: "X", State: "NA", ZipCode: "1", Latitude: 0, Longitude: 1},
		{Street: "Nearest", City: "X", State: "NA", ZipCode: "2", Latitude: 0, Longitude: 0.1},
	}
	for _, a := range candidates {
		require.NoError(t, addressService.CreateAddress(a))
	}

	results, err := addressService.SearchByDistance(geo.Point{Latitude: 0, Longitude: 0}, 200)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Farther", results[0].Street)
	assert.Equal(t, "Nearest", results[1].Street)
}

func TestAddressService_SearchByDistance_NonPositiveRadius(t *testing.T) {
	addressService := setupAddressServiceTest(t)

	onRef := &model.Address{
		Street: "A", City: "Origin", State: "NA", ZipCode: "0",
		Latitude: 12.5, Longitude: 45.5,
	}
	offRef := &model.Address{
		Street: "B", City: "Elsewhere", State: "NA", ZipCode: "1",
		Latitude: 13.5, Longitude: 45.5,
	}
	require.NoError(t, addressService.CreateAddress(onRef))
	require.NoError(t, addressService.CreateAddress(offRef))

	// Radius 0 keeps only records exactly at the reference point
	results, err := addressService.SearchByDistance(geo.Point{Latitude: 12.5, Longitude: 45.5}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Street)

	// Negative radius matches nothing and must not fail
	results, err = addressService.SearchByDistance(geo.Point{Latitude: 12.5, Longitude: 45.5}, -5)
	require.NoError(t, err)
	assert.Len(t, results, 0)
}
