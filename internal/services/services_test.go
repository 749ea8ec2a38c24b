package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/songhub/backend/internal/config"
	"github.com/songhub/backend/internal/models"
	"github.com/songhub/backend/internal/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "services.db")
	db, err := gorm.Open(sqlite.Open(models.SQLiteDSN(path)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func closeDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func testConfig() *config.Config {
	return &config.Config{
		APIUrl:                 "http://localhost:8080",
		CoverMaxBytes:          2 * 1024 * 1024,
		CoverMaxDimension:      1600,
		JWTSecret:              "test-secret",
		JWTAccessTokenDuration: time.Hour,
		AdminUsername:          "admin",
		BcryptCost:             4,
	}
}

// memStore is an in-memory BlobStore and BackupStore.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	putErr  error
	delErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return "", m.putErr
	}
	loc := "mem://" + key
	m.objects[loc] = data
	return loc, nil
}

func (m *memStore) Delete(ctx context.Context, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, location)
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.objects, location)
	return nil
}

func (m *memStore) Get(ctx context.Context, location string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[location]
	if !ok {
		return nil, fmt.Errorf("no object at %s", location)
	}
	return data, nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fixture struct {
	db         *gorm.DB
	store      *memStore
	covers     *CoverService
	catalog    *CatalogService
	songs      *SongService
	categories *CategoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	store := newMemStore()
	l := logger.Discard()
	covers := NewCoverService(testConfig(), store, l)
	return &fixture{
		db:         db,
		store:      store,
		covers:     covers,
		catalog:    NewCatalogService(db, l),
		songs:      NewSongService(db, covers, l),
		categories: NewCategoryService(db, covers, l),
	}
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), CategoryInput{CategoryName: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) song(t *testing.T, name string, categoryID *uint, status models.SongStatus) *models.Song {
	t.Helper()
	s, err := f.songs.Create(context.Background(), SongInput{
		SongName:   name,
		URL:        fmt.Sprintf("https://youtu.be/%x", len(name)),
		Status:     string(status),
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return s
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve.Fields
}
