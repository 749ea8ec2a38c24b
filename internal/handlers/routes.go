package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Routes bundles the handlers mounted under /api/v1.
type Routes struct {
	Catalog    *CatalogHandler
	Songs      *SongHandler
	Categories *CategoryHandler
	Auth       *AuthHandler
	Audit      *AuditHandler
	Backups    *BackupHandler
}

// Register mounts the public API and the admin API. admin runs in order before every
// admin route (authentication first).
func (rt *Routes) Register(r gin.IRouter, admin ...gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.GET("/catalog", rt.Catalog.Catalog)
		api.GET("/browse", rt.Catalog.Browse)
		api.GET("/categories/:id/songs", rt.Catalog.SongsByCategory)
		api.GET("/songs/:id", rt.Catalog.GetSong)
		api.GET("/songs/:id/lyrics.pdf", rt.Catalog.LyricsSheet)
		api.POST("/auth/login", rt.Auth.Login)
	}

	adm := api.Group("/admin")
	adm.Use(admin...)
	{
		adm.GET("/songs", rt.Catalog.AdminSongs)
		adm.GET("/songs/view", rt.Catalog.AdminView)
		adm.GET("/songs/:id", rt.Catalog.AdminGetSong)
		adm.POST("/songs", rt.Songs.CreateSong)
		adm.PUT("/songs/:id", rt.Songs.UpdateSong)
		adm.PATCH("/songs/:id", rt.Songs.UpdateSong)
		adm.DELETE("/songs/:id", rt.Songs.DeleteSong)

		adm.GET("/categories", rt.Catalog.ListCategories)
		adm.POST("/categories", rt.Categories.CreateCategory)
		adm.PUT("/categories/:id", rt.Categories.UpdateCategory)
		adm.PATCH("/categories/:id", rt.Categories.UpdateCategory)
		adm.DELETE("/categories/:id", rt.Categories.DeleteCategory)

		adm.GET("/audit-logs", rt.Audit.ListAuditLogs)
		adm.GET("/audit-logs/stats", rt.Audit.AuditStats)

		adm.GET("/backups", rt.Backups.ListBackups)
		adm.POST("/backups", rt.Backups.CreateBackup)
		adm.GET("/backups/stats", rt.Backups.BackupStats)
		adm.GET("/backups/:id/download", rt.Backups.DownloadBackup)
	}
}
