package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/jpark/addressbook-backend/internal/app/model"
	"github.com/jpark/addressbook-backend/internal/app/repository"
	"github.com/jpark/addressbook-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeUploader struct {
	key  string
	data []byte
}

func (u *fakeUploader) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	u.key = key
	u.data = data
	return "https://example.com/" + key, nil
}

func setupExportServiceTest(t *testing.T) (ExportService, repository.AddressRepository, *fakeUploader) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	addressRepo := repository.NewAddressRepository(testDB)
	uploader := &fakeUploader{}
	return NewExportService(addressRepo, uploader), addressRepo, uploader
}

func TestExportService_ExportToExcel(t *testing.T) {
	exportService, addressRepo, _ := setupExportServiceTest(t)

	addresses := []model.Address{
		{Street: "221B Baker Street", City: "London", State: "Greater London", ZipCode: "NW1 6XE", Latitude: 51.5238, Longitude: -0.1586},
		{Street: "5 Avenue Anatole", City: "Paris", State: "Ile-de-France", ZipCode: "75007", Latitude: 48.8584, Longitude: 2.2945},
	}
	for i := range addresses {
		require.NoError(t, addressRepo.Create(&addresses[i]))
	}

	data, err := exportService.ExportToExcel()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Addresses")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + two addresses
	assert.Equal(t, "Street", rows[0][1])
	assert.Equal(t, "221B Baker Street", rows[1][1])
	assert.Equal(t, "Paris", rows[2][2])
}

func TestExportService_BackupToS3(t *testing.T) {
	exportService, addressRepo, uploader := setupExportServiceTest(t)

	require.NoError(t, addressRepo.Create(&model.Address{
		Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701",
	}))

	url, err := exportService.BackupToS3(context.Background())
	require.NoError(t, err)
	assert.Contains(t, url, "backups/addresses-")
	assert.NotEmpty(t, uploader.data)
}

func TestExportService_BackupToS3_NoUploader(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	exportService := NewExportService(repository.NewAddressRepository(testDB), nil)

	_, err = exportService.BackupToS3(context.Background())
	assert.Error(t, err)
}
