package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/songhub/backend/internal/config"
)

const coverField = "cover_photo"

// Upload is a file received from a form.
type Upload struct {
	Filename string
	Data     []byte
}

// CoverService validates, normalises and stores song cover images.
type CoverService struct {
	store        BlobStore
	maxBytes     int64
	maxDimension int
	log          *log.Logger
}

func NewCoverService(cfg *config.Config, store BlobStore, l *log.Logger) *CoverService {
	return &CoverService{
		store:        store,
		maxBytes:     cfg.CoverMaxBytes,
		maxDimension: cfg.CoverMaxDimension,
		log:          l,
	}
}

// Store accepts an image payload and returns the URL the blob store assigned to it.
// Bad payloads produce a *ValidationError on cover_photo.
func (s *CoverService) Store(ctx context.Context, up *Upload) (string, error) {
	if len(up.Data) == 0 {
		return "", newValidationError(coverField, "The cover photo is empty.")
	}
	if int64(len(up.Data)) > s.maxBytes {
		return "", newValidationError(coverField, fmt.Sprintf("The cover photo may not be greater than %d kilobytes.", s.maxBytes/1024))
	}

	mt := mimetype.Detect(up.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", newValidationError(coverField, "The cover photo must be an image.")
	}
	format, err := imaging.FormatFromExtension(mt.Extension())
	if err != nil {
		return "", newValidationError(coverField, "The cover photo must be a jpeg, png, gif, bmp or tiff image.")
	}

	data, err := s.normalize(up.Data, format)
	if err != nil {
		return "", newValidationError(coverField, "The cover photo could not be decoded.")
	}

	key := BuildObjectKey("covers", "cover"+mt.Extension())
	location, err := s.store.Put(ctx, key, data, mt.String())
	if err != nil {
		s.log.Error("cover upload failed", "entity", "cover", "op", "store", "key", key, "err", err)
		return "", &PersistenceError{Entity: "cover", Op: "store", Err: err}
	}
	s.log.Debug("cover stored", "key", key, "bytes", len(data), "source", up.Filename)
	return location, nil
}

// Remove deletes a previously stored cover. Failures are logged and swallowed.
func (s *CoverService) Remove(ctx context.Context, location string) {
	if location == "" {
		return
	}
	if err := s.store.Delete(ctx, location); err != nil {
		s.log.Warn("failed to remove old cover", "entity", "cover", "op", "delete", "location", location, "err", err)
	}
}

// normalize decodes the image and downscales it when either side exceeds maxDimension.
// Images already within bounds are stored byte for byte.
func (s *CoverService) normalize(data []byte, format imaging.Format) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if s.maxDimension <= 0 || (b.Dx() <= s.maxDimension && b.Dy() <= s.maxDimension) {
		return data, nil
	}

	resized := imaging.Fit(img, s.maxDimension, s.maxDimension, imaging.Lanczos)
	var out bytes.Buffer
	if err := imaging.Encode(&out, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
