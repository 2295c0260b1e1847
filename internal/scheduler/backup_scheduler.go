package scheduler

import (
	"context"
	"time"

	"github.com/jpark/addressbook-backend/internal/app/service"
	"github.com/jpark/addressbook-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const backupTimeout = 5 * time.Minute

// BackupScheduler periodically exports the address book to S3
type BackupScheduler struct {
	cron          *cron.Cron
	exportService service.ExportService
	schedule      string
}

func NewBackupScheduler(exportService service.ExportService, schedule string) *BackupScheduler {
	return &BackupScheduler{
		cron:          cron.New(),
		exportService: exportService,
		schedule:      schedule,
	}
}

func (s *BackupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		logger.Info("Starting scheduled address book backup", nil)

		ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
		defer cancel()

		url, err := s.exportService.BackupToS3(ctx)
		if err != nil {
			logger.Error("Scheduled address book backup failed", err, nil)
			return
		}

		logger.Info("Scheduled address book backup completed", map[string]interface{}{
			"url": url,
		})
	})

	if err != nil {
		logger.Error("Failed to register backup cron job", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Backup scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})

	return nil
}

func (s *BackupScheduler) Stop() {
	logger.Info("Stopping backup scheduler...", nil)
	s.cron.Stop()
	logger.Info("Backup scheduler stopped", nil)
}
