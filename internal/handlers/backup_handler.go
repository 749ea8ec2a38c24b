package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/songhub/backend/internal/middleware"
	"github.com/songhub/backend/internal/models"
	"github.com/songhub/backend/internal/services"
)

const msgBackupNotFound = "Backup not found."

type BackupHandler struct {
	backups *services.BackupService
}

func NewBackupHandler(backups *services.BackupService) *BackupHandler {
	return &BackupHandler{backups: backups}
}

// ListBackups returns catalog backups, most recent first
// GET /admin/backups?offset=0&limit=20
func (h *BackupHandler) ListBackups(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	backups, total, err := h.backups.ListBackups(c.Request.Context(), offset, limit)
	if err != nil {
		respondServiceError(c, err, "", "Failed to load backups.")
		return
	}
	respondSuccess(c, http.StatusOK, "", gin.H{
		"backups": backups,
		"total":   total,
		"offset":  offset,
		"limit":   limit,
	})
}

// CreateBackup exports the catalog now
// POST /admin/backups
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	backup, err := h.backups.CreateBackup(c.Request.Context(), models.BackupTypeManual, c.GetString(middleware.AdminUsernameKey))
	if err != nil {
		respondServiceError(c, err, "", "Backup failed.")
		return
	}
	respondSuccess(c, http.StatusCreated, "Backup created successfully.", gin.H{"backup": backup})
}

// BackupStats returns backup statistics
// GET /admin/backups/stats
func (h *BackupHandler) BackupStats(c *gin.Context) {
	stats, err := h.backups.GetBackupStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "", "Failed to load backup statistics.")
		return
	}
	respondSuccess(c, http.StatusOK, "", stats)
}

// DownloadBackup streams a completed export. Exports contain private songs and
// are only ever served through this admin route.
// GET /admin/backups/:id/download
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	id, ok := paramID(c, msgBackupNotFound)
	if !ok {
		return
	}
	backup, data, err := h.backups.Download(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, msgBackupNotFound, "Failed to download backup.")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/gzip", data)
}
