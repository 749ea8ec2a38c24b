package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BackupStatusInProgress = "in_progress"
	BackupStatusCompleted  = "completed"
	BackupStatusFailed     = "failed"

	BackupTypeAutomatic = "automatic"
	BackupTypeManual    = "manual"
)

// Backup records one gzipped JSON export of the catalog.
type Backup struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Filename     string     `gorm:"size:255;not null" json:"filename"` // e.g. catalog_2025-01-15T12-00-00Z.json.gz
	Location     string     `gorm:"size:1024" json:"location"`         // URL returned by the blob store
	SizeBytes    int64      `json:"size_bytes"`
	Songs        int        `json:"songs"`
	Categories   int        `json:"categories"`
	Status       string     `gorm:"size:16;not null;default:'completed';index" json:"status"`
	Type         string     `gorm:"size:16;not null;default:'automatic'" json:"type"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedBy    string     `gorm:"size:255" json:"created_by,omitempty"` // admin username when manual
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (b *Backup) BeforeCreate(tx *gorm.DB) error {
	if b.StartedAt.IsZero() {
		b.StartedAt = time.Now()
	}
	return nil
}
