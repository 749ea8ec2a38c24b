package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/songhub/backend/internal/config"
)

// BlobStore persists cover images and hands back a resolvable URL.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, location string) error
}

// BuildObjectKey creates a namespaced, collision-free storage key
func BuildObjectKey(kind string, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s/%s%s", kind, uuid.New().String(), ext)
}

// StorageService stores covers on the local filesystem; they are served under /storage.
type StorageService struct {
	root    string
	baseURL string
}

func NewStorageService(cfg *config.Config) *StorageService {
	// ensure local path exists
	_ = os.MkdirAll(cfg.LocalAssetsPath, 0o755)
	return &StorageService{root: cfg.LocalAssetsPath, baseURL: cfg.APIUrl + "/storage/"}
}

// NewPrivateStorageService stores objects under BACKUP_PATH, which is never served.
// Locations are the bare object keys.
func NewPrivateStorageService(cfg *config.Config) *StorageService {
	_ = os.MkdirAll(cfg.BackupPath, 0o700)
	return &StorageService{root: cfg.BackupPath}
}

// Put writes via a temp file and rename so readers never see a partial cover.
func (s *StorageService) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	absPath, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", err
	}

	tmp := absPath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return s.baseURL + key, nil
}

// Delete removes a cover previously returned by Put. Locations outside this store are ignored.
func (s *StorageService) Delete(ctx context.Context, location string) error {
	key, ok := strings.CutPrefix(location, s.baseURL)
	if !ok || key == "" {
		return nil
	}
	absPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Get reads back an object previously returned by Put.
func (s *StorageService) Get(ctx context.Context, location string) ([]byte, error) {
	key, ok := strings.CutPrefix(location, s.baseURL)
	if !ok || key == "" {
		return nil, fmt.Errorf("location %q is outside this store", location)
	}
	absPath, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(absPath)
}

func (s *StorageService) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
