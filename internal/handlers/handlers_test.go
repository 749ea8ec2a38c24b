package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/songhub/backend/internal/config"
	"github.com/songhub/backend/internal/middleware"
	"github.com/songhub/backend/internal/models"
	"github.com/songhub/backend/internal/pkg/logger"
	"github.com/songhub/backend/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	db      *gorm.DB
	token   string
	cfg     *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(models.SQLiteDSN(filepath.Join(t.TempDir(), "api.db"))), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		APIUrl:                 "http://api.test",
		LocalAssetsPath:        t.TempDir(),
		BackupPath:             t.TempDir(),
		CoverMaxBytes:          64 * 1024,
		CoverMaxDimension:      200,
		JWTSecret:              "handler-secret",
		JWTAccessTokenDuration: time.Hour,
		AdminUsername:          "admin",
		AdminPassword:          "hunter2",
		BcryptCost:             4,
	}
	l := logger.Discard()

	auth, err := services.NewAuthService(cfg, l)
	require.NoError(t, err)
	store := services.NewStorageService(cfg)
	covers := services.NewCoverService(cfg, store, l)
	catalog := services.NewCatalogService(db, l)
	audit := services.NewAuditService(db, l)

	routes := &Routes{
		Catalog:    NewCatalogHandler(catalog, services.NewLyricsSheetService()),
		Songs:      NewSongHandler(services.NewSongService(db, covers, l), audit, cfg.CoverMaxBytes),
		Categories: NewCategoryHandler(services.NewCategoryService(db, covers, l), audit),
		Auth:       NewAuthHandler(auth),
		Audit:      NewAuditHandler(audit),
		Backups:    NewBackupHandler(services.NewBackupService(db, catalog, services.NewPrivateStorageService(cfg), l)),
	}
	r := gin.New()
	r.Static("/storage", cfg.LocalAssetsPath)
	routes.Register(r, middleware.Auth(auth))

	token, _, err := auth.Login("admin", "hunter2")
	require.NoError(t, err)

	return &testServer{t: t, handler: middleware.MethodOverride(r), db: db, token: token, cfg: cfg}
}

func (s *testServer) do(req *http.Request, admin bool) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) get(path string, admin bool) (*httptest.ResponseRecorder, envelope) {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil), admin)
}

func (s *testServer) form(method, path string, values url.Values) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req, true)
}

func (s *testServer) multipart(method, path string, values url.Values, cover []byte) (*httptest.ResponseRecorder, envelope) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(s.t, mw.WriteField(k, v))
		}
	}
	if cover != nil {
		fw, err := mw.CreateFormFile("cover_photo", "cover.png")
		require.NoError(s.t, err)
		_, err = fw.Write(cover)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req, true)
}

func (s *testServer) createCategory(name string) uint {
	s.t.Helper()
	w, env := s.form(http.MethodPost, "/api/v1/admin/categories", url.Values{"category_name": {name}})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		Category models.Category `json:"category"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.Category.ID
}

func (s *testServer) createSong(values url.Values) models.Song {
	s.t.Helper()
	w, env := s.form(http.MethodPost, "/api/v1/admin/songs", values)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		Song models.Song `json:"song"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.Song
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func songValues(name, status string, categoryID uint) url.Values {
	v := url.Values{
		"song_name": {name},
		"lyric":     {"la la la"},
		"url":       {"https://www.youtube.com/watch?v=ABC123"},
		"status":    {status},
	}
	if categoryID != 0 {
		v.Set("category_id", strconv.FormatUint(uint64(categoryID), 10))
	}
	return v
}
