package services

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/songhub/backend/internal/models"
	"github.com/songhub/backend/internal/pkg/browse"
	"gorm.io/gorm"
)

// SongQuery selects what ListSongs returns. The zero value lists every song without joins.
type SongQuery struct {
	WithCategory bool
	PublicOnly   bool
}

// CatalogService is the read side of the catalog. It never paginates.
type CatalogService struct {
	db  *gorm.DB
	log *log.Logger
}

func NewCatalogService(db *gorm.DB, l *log.Logger) *CatalogService {
	return &CatalogService{db: db, log: l}
}

// ListCategories returns all categories in insertion order.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, s.fail("category", "list", err)
	}
	return categories, nil
}

// ListSongs returns the full song set in insertion order.
func (s *CatalogService) ListSongs(ctx context.Context, q SongQuery) ([]models.Song, error) {
	var songs []models.Song
	if err := s.songs(ctx, q).Find(&songs).Error; err != nil {
		return nil, s.fail("song", "list", err)
	}
	return songs, nil
}

// ListSongsByCategory returns the songs of one category, or ErrNotFound for an unknown id.
func (s *CatalogService) ListSongsByCategory(ctx context.Context, categoryID uint, q SongQuery) ([]models.Song, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	var songs []models.Song
	if err := s.songs(ctx, q).Where("category_id = ?", categoryID).Find(&songs).Error; err != nil {
		return nil, s.fail("song", "list", err)
	}
	return songs, nil
}

// GetCategory loads one category.
func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("category", id)
		}
		return nil, s.fail("category", "get", err)
	}
	return &category, nil
}

// GetSong loads one song with its category. With PublicOnly a private song is reported
// as not found.
func (s *CatalogService) GetSong(ctx context.Context, id uint, q SongQuery) (*models.Song, error) {
	var song models.Song
	if err := s.songs(ctx, q).First(&song, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("song", id)
		}
		return nil, s.fail("song", "get", err)
	}
	return &song, nil
}

// Snapshot loads songs and categories together as the input of the browse engine.
func (s *CatalogService) Snapshot(ctx context.Context, publicOnly bool) (browse.Catalog, error) {
	songs, err := s.ListSongs(ctx, SongQuery{WithCategory: true, PublicOnly: publicOnly})
	if err != nil {
		return browse.Catalog{}, err
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return browse.Catalog{}, err
	}
	return browse.Catalog{Songs: songs, Categories: categories}, nil
}

func (s *CatalogService) songs(ctx context.Context, q SongQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.Song{}).Order("songs.id ASC")
	if q.WithCategory {
		tx = tx.Preload("Category")
	}
	if q.PublicOnly {
		tx = tx.Where("songs.status = ?", models.SongStatusPublic)
	}
	return tx
}

func (s *CatalogService) fail(entity, op string, err error) error {
	s.log.Error("catalog query failed", "entity", entity, "op", op, "err", err)
	return &PersistenceError{Entity: entity, Op: op, Err: err}
}
