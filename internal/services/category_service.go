package services

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/songhub/backend/internal/models"
	"github.com/songhub/backend/pkg/validation"
	"gorm.io/gorm"
)

// CategoryInput is the admin form for a category. Names may repeat.
type CategoryInput struct {
	CategoryName string `json:"category_name" validate:"required,max=255"`
}

type CategoryService struct {
	db     *gorm.DB
	covers *CoverService
	log    *log.Logger
}

func NewCategoryService(db *gorm.DB, covers *CoverService, l *log.Logger) *CategoryService {
	return &CategoryService{db: db, covers: covers, log: l}
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.CategoryName = validation.SanitizeString(in.CategoryName)
	if fields := validation.Struct(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	category := &models.Category{CategoryName: in.CategoryName}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, s.fail("create", err)
	}
	s.log.Info("category created", "id", category.ID)
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("category", id)
		}
		return nil, s.fail("update", err)
	}

	in.CategoryName = validation.SanitizeString(in.CategoryName)
	if fields := validation.Struct(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.db.WithContext(ctx).Model(&category).Update("category_name", in.CategoryName).Error; err != nil {
		return nil, s.fail("update", err)
	}
	category.CategoryName = in.CategoryName
	s.log.Info("category updated", "id", category.ID)
	return &category, nil
}

// Delete removes the category and every song in it within one transaction, then
// removes the orphaned covers best effort. The FK cascade covers the same ground; the
// explicit delete also holds on stores that ignore foreign keys.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	var covers []string
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Song{}).
			Where("category_id = ? AND cover_photo <> ''", id).
			Pluck("cover_photo", &covers).Error; err != nil {
			return err
		}
		res := tx.Where("category_id = ?", id).Delete(&models.Song{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Delete(&category).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("category", id)
		}
		return s.fail("delete", err)
	}

	for _, c := range covers {
		s.covers.Remove(ctx, c)
	}
	s.log.Info("category deleted", "id", id, "songs_removed", removed)
	return nil
}

func (s *CategoryService) fail(op string, err error) error {
	s.log.Error("category mutation failed", "entity", "category", "op", op, "err", err)
	return &PersistenceError{Entity: "category", Op: op, Err: err}
}
