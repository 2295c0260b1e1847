package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jpark/addressbook-backend/internal/app/repository"
	"github.com/jpark/addressbook-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Addresses"

// Uploader stores an exported workbook remotely and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type ExportService interface {
	// ExportToExcel renders the full address book into an .xlsx workbook.
	ExportToExcel() ([]byte, error)
	// BackupToS3 exports the address book and uploads it, returning the
	// object URL.
	BackupToS3(ctx context.Context) (string, error)
}

type exportService struct {
	addressRepo repository.AddressRepository
	uploader    Uploader
}

func NewExportService(addressRepo repository.AddressRepository, uploader Uploader) ExportService {
	return &exportService{
		addressRepo: addressRepo,
		uploader:    uploader,
	}
}

func (s *exportService) ExportToExcel() ([]byte, error) {
	addresses, err := s.addressRepo.All()
	if err != nil {
		logger.Error("Failed to load addresses for export", err, nil)
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headers := []string{"ID", "Street", "City", "State", "Zip Code", "Latitude", "Longitude", "Created At"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, address := range addresses {
		values := []interface{}{
			address.ID,
			address.Street,
			address.City,
			address.State,
			address.ZipCode,
			address.Latitude,
			address.Longitude,
			address.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to write export workbook", err, nil)
		return nil, err
	}

	logger.Info("Address book exported", map[string]interface{}{
		"addresses": len(addresses),
		"bytes":     buf.Len(),
	})
	return buf.Bytes(), nil
}

func (s *exportService) BackupToS3(ctx context.Context) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("no uploader configured")
	}

	data, err := s.ExportToExcel()
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("backups/addresses-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	url, err := s.uploader.Upload(ctx, key, data,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err != nil {
		logger.Error("Failed to upload address book backup", err, map[string]interface{}{
			"key": key,
		})
		return "", err
	}

	logger.Info("Address book backup uploaded", map[string]interface{}{
		"key": key,
		"url": url,
	})
	return url, nil
}
