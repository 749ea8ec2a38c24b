package services

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/songhub/backend/internal/models"
	"github.com/songhub/backend/pkg/validation"
	"gorm.io/gorm"
)

// SongInput is the admin form for creating or editing a song.
// A nil Cover on update keeps the stored cover_photo.
type SongInput struct {
	SongName   string  `json:"song_name" validate:"required,max=255"`
	Lyric      string  `json:"lyric"`
	URL        string  `json:"url" validate:"required,url,max=2048"`
	Status     string  `json:"status" validate:"required,oneof=public private"`
	CategoryID *uint   `json:"category_id"`
	Cover      *Upload `json:"-"`
}

func (in *SongInput) sanitize() {
	in.SongName = validation.SanitizeString(in.SongName)
	in.URL = validation.SanitizeString(in.URL)
	in.Status = strings.ToLower(validation.SanitizeString(in.Status))
	in.Lyric = strings.ReplaceAll(in.Lyric, "\x00", "")
}

type SongService struct {
	db     *gorm.DB
	covers *CoverService
	log    *log.Logger
}

func NewSongService(db *gorm.DB, covers *CoverService, l *log.Logger) *SongService {
	return &SongService{db: db, covers: covers, log: l}
}

// Create validates the input, stores the cover if any, then inserts the song.
func (s *SongService) Create(ctx context.Context, in SongInput) (*models.Song, error) {
	in.sanitize()
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}

	cover, err := s.storeCover(ctx, in.Cover)
	if err != nil {
		return nil, err
	}

	song := &models.Song{
		SongName:   in.SongName,
		Lyric:      in.Lyric,
		URL:        in.URL,
		CoverPhoto: cover,
		Status:     models.SongStatus(in.Status),
		CategoryID: in.CategoryID,
	}
	if err := s.db.WithContext(ctx).Create(song).Error; err != nil {
		s.covers.Remove(ctx, cover)
		return nil, s.fail("create", err)
	}

	s.log.Info("song created", "id", song.ID, "status", song.Status)
	return song, nil
}

// Update replaces the song's fields. Last write wins.
func (s *SongService) Update(ctx context.Context, id uint, in SongInput) (*models.Song, error) {
	var song models.Song
	if err := s.db.WithContext(ctx).First(&song, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("song", id)
		}
		return nil, s.fail("update", err)
	}

	in.sanitize()
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}

	cover, err := s.storeCover(ctx, in.Cover)
	if err != nil {
		return nil, err
	}

	previousCover := song.CoverPhoto
	song.SongName = in.SongName
	song.Lyric = in.Lyric
	song.URL = in.URL
	song.Status = models.SongStatus(in.Status)
	song.CategoryID = in.CategoryID
	if cover != "" {
		song.CoverPhoto = cover
	}

	err = s.db.WithContext(ctx).Model(&song).
		Select("SongName", "Lyric", "URL", "CoverPhoto", "Status", "CategoryID", "UpdatedAt").
		Updates(&song).Error
	if err != nil {
		s.covers.Remove(ctx, cover)
		return nil, s.fail("update", err)
	}

	if cover != "" && previousCover != cover {
		s.covers.Remove(ctx, previousCover)
	}

	s.log.Info("song updated", "id", song.ID)
	return &song, nil
}

// Delete removes the song and, best effort, its cover.
func (s *SongService) Delete(ctx context.Context, id uint) error {
	var song models.Song
	if err := s.db.WithContext(ctx).First(&song, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("song", id)
		}
		return s.fail("delete", err)
	}

	if err := s.db.WithContext(ctx).Delete(&song).Error; err != nil {
		return s.fail("delete", err)
	}
	s.covers.Remove(ctx, song.CoverPhoto)

	s.log.Info("song deleted", "id", id)
	return nil
}

// validate runs the field rules and the category existence check before any write.
func (s *SongService) validate(ctx context.Context, in *SongInput) error {
	fields := validation.Struct(in)
	if in.CategoryID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", *in.CategoryID).Count(&count).Error; err != nil {
			return s.fail("validate", err)
		}
		if count == 0 {
			if fields == nil {
				fields = map[string]string{}
			}
			fields["category_id"] = "The selected category is invalid."
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *SongService) storeCover(ctx context.Context, up *Upload) (string, error) {
	if up == nil {
		return "", nil
	}
	return s.covers.Store(ctx, up)
}

func (s *SongService) fail(op string, err error) error {
	s.log.Error("song mutation failed", "entity", "song", "op", op, "err", err)
	return &PersistenceError{Entity: "song", Op: op, Err: err}
}
