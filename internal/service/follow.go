package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// FollowedAuthor is one entry of a subscription listing.
type FollowedAuthor struct {
	Author       models.User
	RecipesCount int64
	Recipes      []models.Recipe
}

// FollowService manages the follow graph between users.
type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow makes userID a follower of authorID.
func (s *FollowService) Follow(ctx context.Context, userID, authorID uuid.UUID) (*models.Follow, error) {
	edge, err := s.follow(ctx, userID, authorID)
	metrics.FollowChanges.WithLabelValues("follow", outcome(err)).Inc()
	return edge, err
}

func (s *FollowService) follow(ctx context.Context, userID, authorID uuid.UUID) (*models.Follow, error) {
	if userID == authorID {
		return nil, ErrSelfFollow
	}
	db := s.db.WithContext(ctx)

	var edges int64
	if err := db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&edges).Error; err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	if edges > 0 {
		return nil, conflict("subscription")
	}

	if err := s.requireUser(db, authorID); err != nil {
		return nil, err
	}

	edge := &models.Follow{UserID: userID, AuthorID: authorID}
	if err := db.Create(edge).Error; err != nil {
		switch {
		case database.IsDuplicateKey(err):
			return nil, conflict("subscription")
		case database.IsForeignKeyViolation(err):
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	logging.Debug().Str("user_id", userID.String()).Str("author_id", authorID.String()).Msg("subscribed")
	return edge, nil
}

// Unfollow removes the edge userID -> authorID.
func (s *FollowService) Unfollow(ctx context.Context, userID, authorID uuid.UUID) error {
	err := s.unfollow(ctx, userID, authorID)
	metrics.FollowChanges.WithLabelValues("unfollow", outcome(err)).Inc()
	return err
}

func (s *FollowService) unfollow(ctx context.Context, userID, authorID uuid.UUID) error {
	db := s.db.WithContext(ctx)
	if err := s.requireUser(db, authorID); err != nil {
		return err
	}

	res := db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("subscription")
	}
	return nil
}

// ListFollowed returns the authors userID follows, most recent follow first,
// with each author's recipe count and up to recipesLimit newest recipes.
// A nil recipesLimit includes every recipe.
func (s *FollowService) ListFollowed(ctx context.Context, userID uuid.UUID, page types.Page, recipesLimit *int) ([]FollowedAuthor, int64, error) {
	if recipesLimit != nil && *recipesLimit < 0 {
		return nil, 0, invalid("recipes_limit", "must be a non-negative integer")
	}
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	err := db.Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("follows.created_at DESC").
		Order("users.username").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&authors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	out := make([]FollowedAuthor, len(authors))
	if len(authors) == 0 {
		return out, total, nil
	}

	ids := make([]uuid.UUID, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := s.recipeCounts(db, ids)
	if err != nil {
		return nil, 0, err
	}

	for i, a := range authors {
		recipes, err := s.recentRecipes(db, a.ID, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out[i] = FollowedAuthor{Author: a, RecipesCount: counts[a.ID], Recipes: recipes}
	}
	return out, total, nil
}

// Summary loads a single author in the shape used by subscription listings.
func (s *FollowService) Summary(ctx context.Context, authorID uuid.UUID, recipesLimit *int) (*FollowedAuthor, error) {
	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	counts, err := s.recipeCounts(db, []uuid.UUID{authorID})
	if err != nil {
		return nil, err
	}
	recipes, err := s.recentRecipes(db, authorID, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &FollowedAuthor{Author: author, RecipesCount: counts[authorID], Recipes: recipes}, nil
}

// FollowingSet reports which of authorIDs userID follows.
func (s *FollowService) FollowingSet(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	found := make(map[uuid.UUID]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return found, nil
	}
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

func (s *FollowService) requireUser(db *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if n == 0 {
		return notFound("user")
	}
	return nil
}

func (s *FollowService) recipeCounts(db *gorm.DB, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		AuthorID uuid.UUID
		Count    int64
	}
	err := db.Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS count").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.AuthorID] = r.Count
	}
	return counts, nil
}

func (s *FollowService) recentRecipes(db *gorm.DB, authorID uuid.UUID, limit *int) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	if limit != nil && *limit == 0 {
		return recipes, nil
	}
	q := db.Where("author_id = ?", authorID).Order("created_at DESC").Order("id")
	if limit != nil {
		q = q.Limit(*limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list author recipes: %w", err)
	}
	return recipes, nil
}
