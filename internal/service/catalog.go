package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// DefaultTags are seeded by import-tags when no file is given.
var DefaultTags = []types.TagInput{
	{Name: "Breakfast", Color: "#808000", Slug: "breakfast"},
	{Name: "Lunch", Color: "#008080", Slug: "lunch"},
	{Name: "Dinner", Color: "#FFEBCD", Slug: "dinner"},
}

// CatalogService serves the read-only tag and ingredient catalogs and the
// bulk maintenance operations behind foodgramctl.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.db.WithContext(ctx).Order("name").Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("tag")
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

// SearchIngredients returns ingredients whose name starts with prefix,
// ignoring case. An empty prefix returns the whole catalog.
func (s *CatalogService) SearchIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name").Order("id")
	if prefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePrefix(strings.ToLower(prefix)))
	}
	ingredients := []models.Ingredient{}
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	return ingredients, nil
}

func likePrefix(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s) + "%"
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("ingredient")
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return &ingredient, nil
}

// ImportIngredients bulk-inserts the given ingredients, skipping any
// (name, unit) pair already in the catalog. It returns the number inserted.
func (s *CatalogService) ImportIngredients(ctx context.Context, in []types.IngredientInput) (int64, error) {
	rows := make([]models.Ingredient, 0, len(in))
	for i := range in {
		if err := validateStruct(&in[i]); err != nil {
			return 0, fmt.Errorf("ingredient %d: %w", i, err)
		}
		rows = append(rows, models.Ingredient{
			Name:            strings.TrimSpace(in[i].Name),
			MeasurementUnit: strings.TrimSpace(in[i].MeasurementUnit),
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, 500)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to import ingredients: %w", res.Error)
	}
	logging.Info().Int("submitted", len(rows)).Int64("inserted", res.RowsAffected).Msg("ingredients imported")
	return res.RowsAffected, nil
}

// ImportTags inserts tags whose name is not yet present.
func (s *CatalogService) ImportTags(ctx context.Context, in []types.TagInput) (int64, error) {
	var inserted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range in {
			if err := validateStruct(&in[i]); err != nil {
				return fmt.Errorf("tag %d: %w", i, err)
			}
			var n int64
			if err := tx.Model(&models.Tag{}).Where("name = ?", in[i].Name).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to look up tag: %w", err)
			}
			if n > 0 {
				continue
			}
			tag := models.Tag{Name: in[i].Name, Color: in[i].Color, Slug: in[i].Slug}
			if err := tx.Create(&tag).Error; err != nil {
				return fmt.Errorf("failed to create tag %q: %w", in[i].Name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logging.Info().Int64("inserted", inserted).Msg("tags imported")
	return inserted, nil
}

// RemoveDuplicateIngredients keeps the lowest-id ingredient for every name
// and deletes the others. It returns the number of rows deleted.
func (s *CatalogService) RemoveDuplicateIngredients(ctx context.Context) (int64, error) {
	keep := s.db.Model(&models.Ingredient{}).Select("MIN(id)").Group("name")
	res := s.db.WithContext(ctx).Where("id NOT IN (?)", keep).Delete(&models.Ingredient{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to remove duplicate ingredients: %w", res.Error)
	}
	logging.Info().Int64("deleted", res.RowsAffected).Msg("duplicate ingredients removed")
	return res.RowsAffected, nil
}
