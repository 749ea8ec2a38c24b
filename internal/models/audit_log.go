package models

import "time"

// AuditLog represents an admin action log entry
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Admin      string    `gorm:"size:255;not null;index" json:"admin"`
	Action     string    `gorm:"size:100;not null;index" json:"action"` // e.g., "create_song", "delete_category"
	TargetType string    `gorm:"size:50;not null" json:"target_type"`   // "song" or "category"
	TargetID   uint      `gorm:"not null" json:"target_id"`
	Details    string    `gorm:"type:text" json:"details,omitempty"` // JSON string with additional info
	IPAddress  string    `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent  string    `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
