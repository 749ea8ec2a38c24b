package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/songhub/backend/internal/config"
	"github.com/songhub/backend/internal/handlers"
	"github.com/songhub/backend/internal/middleware"
	"github.com/songhub/backend/internal/models"
	"github.com/songhub/backend/internal/services"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, l := bootstrap()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := models.InitDB(cfg, l)
	if err != nil {
		return err
	}
	if err := models.Migrate(db); err != nil {
		return err
	}

	redisClient := models.InitRedis(cfg, l)
	defer redisClient.Close()

	store, err := newBlobStore(cfg, l)
	if err != nil {
		return err
	}
	backupStore, err := newBackupStore(cfg, l)
	if err != nil {
		return err
	}

	coverService := services.NewCoverService(cfg, store, l.With("component", "covers"))
	catalogService := services.NewCatalogService(db, l.With("component", "catalog"))
	songService := services.NewSongService(db, coverService, l.With("component", "songs"))
	categoryService := services.NewCategoryService(db, coverService, l.With("component", "categories"))
	auditService := services.NewAuditService(db, l.With("component", "audit"))
	backupService := services.NewBackupService(db, catalogService, backupStore, l.With("component", "backups"))
	authService, err := services.NewAuthService(cfg, l.With("component", "auth"))
	if err != nil {
		return err
	}

	routes := &handlers.Routes{
		Catalog:    handlers.NewCatalogHandler(catalogService, services.NewLyricsSheetService()),
		Songs:      handlers.NewSongHandler(songService, auditService, cfg.CoverMaxBytes),
		Categories: handlers.NewCategoryHandler(categoryService, auditService),
		Auth:       handlers.NewAuthHandler(authService),
		Audit:      handlers.NewAuditHandler(auditService),
		Backups:    handlers.NewBackupHandler(backupService),
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg, l))
	router.MaxMultipartMemory = cfg.CoverMaxBytes + 1<<20

	if cfg.StorageDriver == "local" {
		router.Static("/storage", cfg.LocalAssetsPath)
	}

	routes.Register(router,
		middleware.Auth(authService),
		middleware.UploadRateLimit(redisClient, cfg, l),
		middleware.AdminActionRateLimit(redisClient, cfg.AdminRateLimitActions, cfg.AdminRateLimitWindow, l),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.MethodOverride(router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go backupService.Schedule(bgCtx, cfg.BackupInterval)

	go func() {
		l.Info("starting server", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("failed to start server", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	l.Info("server exited")
	return nil
}

func newBlobStore(cfg *config.Config, l *log.Logger) (services.BlobStore, error) {
	switch cfg.StorageDriver {
	case "local":
		return services.NewStorageService(cfg), nil
	case "s3":
		return services.NewS3Service(context.Background(), cfg, l.With("component", "s3"))
	default:
		return nil, errors.New("unsupported STORAGE_DRIVER " + cfg.StorageDriver)
	}
}

// newBackupStore picks the private home of catalog exports; it is never the
// directory served under /storage.
func newBackupStore(cfg *config.Config, l *log.Logger) (services.BackupStore, error) {
	switch cfg.StorageDriver {
	case "local":
		if insideDir(cfg.BackupPath, cfg.LocalAssetsPath) {
			return nil, errors.New("BACKUP_PATH must not be inside LOCAL_ASSETS_PATH")
		}
		return services.NewPrivateStorageService(cfg), nil
	case "s3":
		return services.NewS3BackupService(context.Background(), cfg, l.With("component", "s3-backups"))
	default:
		return nil, errors.New("unsupported STORAGE_DRIVER " + cfg.StorageDriver)
	}
}

// insideDir reports whether dir is public or lies below it.
func insideDir(dir, public string) bool {
	d, err1 := filepath.Abs(dir)
	p, err2 := filepath.Abs(public)
	if err1 != nil || err2 != nil {
		return dir == public
	}
	rel, err := filepath.Rel(p, d)
	return err == nil && (rel == "." || !strings.HasPrefix(rel, ".."))
}
