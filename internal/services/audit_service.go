package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/songhub/backend/internal/models"
	"gorm.io/gorm"
)

// Audit actions recorded for admin mutations.
const (
	ActionCreateSong     = "create_song"
	ActionUpdateSong     = "update_song"
	ActionDeleteSong     = "delete_song"
	ActionCreateCategory = "create_category"
	ActionUpdateCategory = "update_category"
	ActionDeleteCategory = "delete_category"
)

// Actor identifies who performed an admin action and from where.
type Actor struct {
	Admin     string
	IPAddress string
	UserAgent string
}

type AuditService struct {
	db  *gorm.DB
	log *log.Logger
}

func NewAuditService(db *gorm.DB, l *log.Logger) *AuditService {
	return &AuditService{db: db, log: l}
}

// LogAction logs an admin action to the audit log
func (s *AuditService) LogAction(ctx context.Context, actor Actor, action, targetType string, targetID uint, details map[string]interface{}) error {
	detailsJSON := ""
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			detailsJSON = string(b)
		}
	}

	entry := &models.AuditLog{
		Admin:      actor.Admin,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    detailsJSON,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		s.log.Error("audit write failed", "action", action, "target", targetType, "target_id", targetID, "err", err)
		return &PersistenceError{Entity: "audit_log", Op: "create", Err: err}
	}
	return nil
}

// GetRecentActions retrieves recent admin actions with pagination. Empty filters match everything.
func (s *AuditService) GetRecentActions(ctx context.Context, page, limit int, admin, action string) ([]models.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if admin != "" {
		query = query.Where("admin = ?", admin)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, &PersistenceError{Entity: "audit_log", Op: "count", Err: err}
	}

	var logs []models.AuditLog
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, &PersistenceError{Entity: "audit_log", Op: "list", Err: err}
	}
	return logs, total, nil
}

// GetActionCount returns the count of actions in a time window
func (s *AuditService) GetActionCount(ctx context.Context, admin, action string, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("admin = ? AND action = ? AND created_at > ?", admin, action, since).
		Count(&count).Error
	if err != nil {
		return 0, &PersistenceError{Entity: "audit_log", Op: "count", Err: err}
	}
	return count, nil
}

// ActionCount is one row of AuditStats.ActionsByType.
type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// AuditStats summarises the audit log.
type AuditStats struct {
	TotalActions  int64         `json:"total_actions"`
	ActionsByType []ActionCount `json:"actions_by_type"`
	Last24h       int64         `json:"actions_last_24h"`
}

// GetStats returns audit log statistics
func (s *AuditService) GetStats(ctx context.Context) (*AuditStats, error) {
	db := s.db.WithContext(ctx)
	stats := &AuditStats{ActionsByType: []ActionCount{}}

	if err := db.Model(&models.AuditLog{}).Count(&stats.TotalActions).Error; err != nil {
		return nil, &PersistenceError{Entity: "audit_log", Op: "stats", Err: err}
	}

	if err := db.Model(&models.AuditLog{}).
		Select("action, COUNT(*) as count").
		Group("action").
		Order("count DESC, action ASC").
		Scan(&stats.ActionsByType).Error; err != nil {
		return nil, &PersistenceError{Entity: "audit_log", Op: "stats", Err: err}
	}

	since := time.Now().Add(-24 * time.Hour)
	if err := db.Model(&models.AuditLog{}).
		Where("created_at > ?", since).
		Count(&stats.Last24h).Error; err != nil {
		return nil, &PersistenceError{Entity: "audit_log", Op: "stats", Err: err}
	}

	return stats, nil
}
