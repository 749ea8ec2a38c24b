package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/songhub/backend/internal/middleware"
	"github.com/songhub/backend/internal/services"
)

type AuditHandler struct {
	audit *services.AuditService
}

func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ListAuditLogs returns recorded admin actions, newest first
// GET /admin/audit-logs?page=1&limit=20&admin=&action=
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	logs, total, err := h.audit.GetRecentActions(c.Request.Context(), page, limit, c.Query("admin"), c.Query("action"))
	if err != nil {
		respondServiceError(c, err, "", "Failed to load audit log.")
		return
	}
	respondSuccess(c, http.StatusOK, "", gin.H{
		"logs":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// AuditStats returns audit log statistics
// GET /admin/audit-logs/stats
func (h *AuditHandler) AuditStats(c *gin.Context) {
	stats, err := h.audit.GetStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "", "Failed to load audit statistics.")
		return
	}
	respondSuccess(c, http.StatusOK, "", stats)
}

// recordAudit logs a successful admin mutation. A failed write never fails the request.
func recordAudit(c *gin.Context, audit *services.AuditService, action, targetType string, targetID uint, details map[string]interface{}) {
	if audit == nil {
		return
	}
	actor := services.Actor{
		Admin:     c.GetString(middleware.AdminUsernameKey),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	_ = audit.LogAction(c.Request.Context(), actor, action, targetType, targetID, details)
}
