package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/songhub/backend/internal/models"
	"github.com/songhub/backend/internal/pkg/browse"
	"gorm.io/gorm"
)

// CatalogExport is the document written by a backup.
type CatalogExport struct {
	ExportedAt time.Time `json:"exported_at"`
	browse.Catalog
}

// BackupStats summarises the backup history.
type BackupStats struct {
	TotalBackups     int64      `json:"total_backups"`
	CompletedBackups int64      `json:"completed_backups"`
	FailedBackups    int64      `json:"failed_backups"`
	TotalSizeBytes   int64      `json:"total_size_bytes"`
	LatestBackup     *time.Time `json:"latest_backup"`
}

// BackupStore keeps catalog exports. Exports include private songs, so a
// BackupStore must never be publicly readable; they leave it only through Download.
type BackupStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, location string) ([]byte, error)
}

// BackupService exports the full catalog (private songs included) as gzipped JSON
// into the backup store and keeps a record of every run.
type BackupService struct {
	db      *gorm.DB
	catalog *CatalogService
	store   BackupStore
	log     *log.Logger
}

func NewBackupService(db *gorm.DB, catalog *CatalogService, store BackupStore, l *log.Logger) *BackupService {
	return &BackupService{db: db, catalog: catalog, store: store, log: l}
}

// CreateBackup runs one export. The record is returned even when the export fails;
// its Status and ErrorMessage describe the outcome.
func (s *BackupService) CreateBackup(ctx context.Context, kind, createdBy string) (*models.Backup, error) {
	started := time.Now().UTC()
	backup := &models.Backup{
		Filename:  fmt.Sprintf("catalog_%s_%s.json.gz", started.Format("2006-01-02T15-04-05Z"), uuid.New().String()),
		Status:    models.BackupStatusInProgress,
		Type:      kind,
		StartedAt: started,
		CreatedBy: createdBy,
	}
	if err := s.db.WithContext(ctx).Create(backup).Error; err != nil {
		return nil, &PersistenceError{Entity: "backup", Op: "create", Err: err}
	}

	location, size, snap, err := s.export(ctx, backup.Filename, started)
	if err != nil {
		s.log.Error("catalog backup failed", "backup_id", backup.ID, "err", err)
		if uerr := s.finish(ctx, backup, models.BackupStatusFailed, func(b *models.Backup) {
			b.ErrorMessage = err.Error()
		}); uerr != nil {
			return nil, uerr
		}
		return backup, err
	}

	if err := s.finish(ctx, backup, models.BackupStatusCompleted, func(b *models.Backup) {
		b.Location = location
		b.SizeBytes = size
		b.Songs = len(snap.Songs)
		b.Categories = len(snap.Categories)
	}); err != nil {
		return nil, err
	}
	s.log.Info("catalog backup completed", "backup_id", backup.ID, "songs", backup.Songs, "size_bytes", size)
	return backup, nil
}

func (s *BackupService) export(ctx context.Context, filename string, at time.Time) (string, int64, browse.Catalog, error) {
	snap, err := s.catalog.Snapshot(ctx, false)
	if err != nil {
		return "", 0, snap, err
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(CatalogExport{ExportedAt: at, Catalog: snap}); err != nil {
		return "", 0, snap, fmt.Errorf("encode export: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", 0, snap, fmt.Errorf("compress export: %w", err)
	}

	location, err := s.store.Put(ctx, "backups/"+filename, buf.Bytes(), "application/gzip")
	if err != nil {
		return "", 0, snap, &PersistenceError{Entity: "backup", Op: "store", Err: err}
	}
	return location, int64(buf.Len()), snap, nil
}

func (s *BackupService) finish(ctx context.Context, backup *models.Backup, status string, apply func(*models.Backup)) error {
	now := time.Now().UTC()
	backup.Status = status
	backup.CompletedAt = &now
	apply(backup)
	if err := s.db.WithContext(ctx).Save(backup).Error; err != nil {
		return &PersistenceError{Entity: "backup", Op: "update", Err: err}
	}
	return nil
}

// ListBackups retrieves backups with pagination, most recent first
func (s *BackupService) ListBackups(ctx context.Context, offset, limit int) ([]models.Backup, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Backup{}).Count(&total).Error; err != nil {
		return nil, 0, &PersistenceError{Entity: "backup", Op: "count", Err: err}
	}

	var backups []models.Backup
	if err := s.db.WithContext(ctx).Offset(offset).Limit(limit).Order("started_at DESC, id DESC").Find(&backups).Error; err != nil {
		return nil, 0, &PersistenceError{Entity: "backup", Op: "list", Err: err}
	}
	return backups, total, nil
}

// GetBackup returns one backup record by ID
func (s *BackupService) GetBackup(ctx context.Context, id uint) (*models.Backup, error) {
	var backup models.Backup
	if err := s.db.WithContext(ctx).First(&backup, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("backup", id)
		}
		return nil, &PersistenceError{Entity: "backup", Op: "get", Err: err}
	}
	return &backup, nil
}

// Download returns a completed backup together with its gzipped export.
func (s *BackupService) Download(ctx context.Context, id uint) (*models.Backup, []byte, error) {
	backup, err := s.GetBackup(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if backup.Status != models.BackupStatusCompleted || backup.Location == "" {
		return nil, nil, fmt.Errorf("%w: backup %d has no export", ErrNotFound, id)
	}
	data, err := s.store.Get(ctx, backup.Location)
	if err != nil {
		return nil, nil, &PersistenceError{Entity: "backup", Op: "download", Err: err}
	}
	return backup, data, nil
}

// GetLatestBackup returns the most recent completed backup
func (s *BackupService) GetLatestBackup(ctx context.Context) (*models.Backup, error) {
	var backup models.Backup
	err := s.db.WithContext(ctx).
		Where("status = ?", models.BackupStatusCompleted).
		Order("completed_at DESC, id DESC").
		First(&backup).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no completed backups", ErrNotFound)
		}
		return nil, &PersistenceError{Entity: "backup", Op: "get", Err: err}
	}
	return &backup, nil
}

// GetBackupStats returns statistics about backups
func (s *BackupService) GetBackupStats(ctx context.Context) (*BackupStats, error) {
	db := s.db.WithContext(ctx)
	stats := &BackupStats{}

	if err := db.Model(&models.Backup{}).Count(&stats.TotalBackups).Error; err != nil {
		return nil, &PersistenceError{Entity: "backup", Op: "stats", Err: err}
	}
	if err := db.Model(&models.Backup{}).Where("status = ?", models.BackupStatusCompleted).Count(&stats.CompletedBackups).Error; err != nil {
		return nil, &PersistenceError{Entity: "backup", Op: "stats", Err: err}
	}
	if err := db.Model(&models.Backup{}).Where("status = ?", models.BackupStatusFailed).Count(&stats.FailedBackups).Error; err != nil {
		return nil, &PersistenceError{Entity: "backup", Op: "stats", Err: err}
	}
	if err := db.Model(&models.Backup{}).
		Where("status = ?", models.BackupStatusCompleted).
		Select("COALESCE(SUM(size_bytes), 0)").
		Scan(&stats.TotalSizeBytes).Error; err != nil {
		return nil, &PersistenceError{Entity: "backup", Op: "stats", Err: err}
	}

	latest, err := s.GetLatestBackup(ctx)
	switch {
	case err == nil:
		stats.LatestBackup = latest.CompletedAt
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	return stats, nil
}

// Schedule runs an automatic backup every interval until ctx is cancelled.
func (s *BackupService) Schedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("catalog backups scheduled", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// failures are logged and recorded on the backup row
			_, _ = s.CreateBackup(ctx, models.BackupTypeAutomatic, "")
		}
	}
}
