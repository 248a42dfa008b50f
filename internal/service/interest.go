package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

// InterestKind names one of the per-user recipe sets.
type InterestKind string

const (
	FavoritesSet    InterestKind = "favorites"
	ShoppingCartSet InterestKind = "shopping_cart"
)

// InterestSetService manages one kind of (user, recipe) membership set.
// Favorites and the shopping cart share the same rules and differ only in
// the table they live in.
type InterestSetService struct {
	db   *gorm.DB
	kind InterestKind
}

func NewFavoriteService(db *gorm.DB) *InterestSetService {
	return &InterestSetService{db: db, kind: FavoritesSet}
}

func NewShoppingCartService(db *gorm.DB) *InterestSetService {
	return &InterestSetService{db: db, kind: ShoppingCartSet}
}

func (s *InterestSetService) Kind() InterestKind {
	return s.kind
}

func (s *InterestSetService) model() interface{} {
	if s.kind == ShoppingCartSet {
		return &models.ShoppingCart{}
	}
	return &models.Favorite{}
}

func (s *InterestSetService) newLink(userID, recipeID uuid.UUID) models.RecipeLink {
	if s.kind == ShoppingCartSet {
		return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
	}
	return &models.Favorite{UserID: userID, RecipeID: recipeID}
}

func (s *InterestSetService) label() string {
	if s.kind == ShoppingCartSet {
		return "shopping cart entry"
	}
	return "favorite"
}

// Add puts recipeID into the user's set. Adding a recipe twice is a
// conflict; a concurrent duplicate insert is reported the same way.
func (s *InterestSetService) Add(ctx context.Context, userID, recipeID uuid.UUID) (models.RecipeLink, error) {
	link, err := s.add(ctx, userID, recipeID)
	s.record("add", err)
	return link, err
}

func (s *InterestSetService) add(ctx context.Context, userID, recipeID uuid.UUID) (models.RecipeLink, error) {
	db := s.db.WithContext(ctx)

	exists, err := s.exists(db, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflict(s.label())
	}

	var recipes int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to look up recipe: %w", err)
	}
	if recipes == 0 {
		return nil, notFound("recipe")
	}

	link := s.newLink(userID, recipeID)
	if err := db.Create(link).Error; err != nil {
		switch {
		case database.IsDuplicateKey(err):
			return nil, conflict(s.label())
		case database.IsForeignKeyViolation(err):
			return nil, notFound("recipe")
		}
		return nil, fmt.Errorf("failed to add %s: %w", s.label(), err)
	}

	logging.Debug().
		Str("set", string(s.kind)).
		Str("user_id", userID.String()).
		Str("recipe_id", recipeID.String()).
		Msg("recipe added to set")
	return link, nil
}

// Remove takes recipeID out of the user's set.
func (s *InterestSetService) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	err := s.remove(ctx, userID, recipeID)
	s.record("remove", err)
	return err
}

func (s *InterestSetService) remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	var recipes int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&recipes).Error; err != nil {
		return fmt.Errorf("failed to look up recipe: %w", err)
	}
	if recipes == 0 {
		return notFound("recipe")
	}

	res := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(s.model())
	if res.Error != nil {
		return fmt.Errorf("failed to remove %s: %w", s.label(), res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(s.label())
	}
	return nil
}

// Contains reports which of recipeIDs are in the user's set.
func (s *InterestSetService) Contains(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	found := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return found, nil
	}

	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(s.model()).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.label(), err)
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

func (s *InterestSetService) exists(db *gorm.DB, userID, recipeID uuid.UUID) (bool, error) {
	var n int64
	err := db.Model(s.model()).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", s.label(), err)
	}
	return n > 0, nil
}

func (s *InterestSetService) record(op string, err error) {
	metrics.InterestSetChanges.WithLabelValues(string(s.kind), op, outcome(err)).Inc()
}
