package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeService owns the recipe aggregate: header, tag set and ingredient
// amounts are always written together in one transaction.
type RecipeService struct {
	db     *gorm.DB
	images *ImageService
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images *ImageService) *RecipeService {
	return &RecipeService{db: db, images: images}
}

// CreateRecipe validates in and persists a new recipe owned by authorID.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, in *types.RecipeWrite) (*models.Recipe, error) {
	if err := s.checkWrite(ctx, in); err != nil {
		recordRecipeWrite("create", err)
		return nil, err
	}

	imageKey, err := s.storeImage(ctx, in.Image)
	if err != nil {
		recordRecipeWrite("create", err)
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		Image:       imageKey,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return replaceRecipeSets(tx, recipe.ID, in)
	})
	if err != nil {
		s.removeImage(ctx, imageKey)
		err = translateWriteError(err)
		recordRecipeWrite("create", err)
		return nil, err
	}

	recordRecipeWrite("create", nil)
	logging.Info().Str("recipe_id", recipe.ID.String()).Str("author_id", authorID.String()).Msg("recipe created")
	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe overwrites the header fields and replaces the tag and
// ingredient sets of an existing recipe. Only the author or a superuser may
// update. An empty image keeps the stored one.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actorID, recipeID uuid.UUID, in *types.RecipeWrite) (*models.Recipe, error) {
	recipe, err := s.loadForWrite(ctx, actorID, recipeID)
	if err != nil {
		recordRecipeWrite("update", err)
		return nil, err
	}

	if err := s.checkWrite(ctx, in); err != nil {
		recordRecipeWrite("update", err)
		return nil, err
	}

	newImage, err := s.storeImage(ctx, in.Image)
	if err != nil {
		recordRecipeWrite("update", err)
		return nil, err
	}
	image := recipe.Image
	if newImage != "" {
		image = newImage
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Recipe{ID: recipe.ID}).Updates(map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
			"image":        image,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		return replaceRecipeSets(tx, recipe.ID, in)
	})
	if err != nil {
		s.removeImage(ctx, newImage)
		err = translateWriteError(err)
		recordRecipeWrite("update", err)
		return nil, err
	}

	if newImage != "" {
		s.removeImage(ctx, recipe.Image)
	}

	recordRecipeWrite("update", nil)
	logging.Info().Str("recipe_id", recipe.ID.String()).Msg("recipe updated")
	return s.GetRecipe(ctx, recipe.ID)
}

// DeleteRecipe removes a recipe together with every row that references it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actorID, recipeID uuid.UUID) error {
	recipe, err := s.loadForWrite(ctx, actorID, recipeID)
	if err != nil {
		recordRecipeWrite("delete", err)
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.Favorite{},
			&models.ShoppingCart{},
			&models.IngredientAmount{},
			&models.RecipeTag{},
		} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete recipe children: %w", err)
			}
		}
		if err := tx.Delete(&models.Recipe{}, "id = ?", recipe.ID).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		recordRecipeWrite("delete", err)
		return err
	}

	s.removeImage(ctx, recipe.Image)
	recordRecipeWrite("delete", nil)
	logging.Info().Str("recipe_id", recipe.ID.String()).Msg("recipe deleted")
	return nil
}

// GetRecipe returns a recipe with author, tags and ingredients loaded.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withRecipeDetails(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

// ListRecipes returns one page of recipes, newest first, and the total
// number of recipes matching filter.
func (s *RecipeService) ListRecipes(ctx context.Context, filter types.RecipeFilter, page types.Page) ([]models.Recipe, int64, error) {
	base := func() *gorm.DB {
		return applyRecipeFilter(s.db.WithContext(ctx).Model(&models.Recipe{}), s.db, filter)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := withRecipeDetails(base()).
		Order("recipes.created_at DESC").
		Order("recipes.id").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

func applyRecipeFilter(q, db *gorm.DB, f types.RecipeFilter) *gorm.DB {
	if len(f.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)", db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs))
	}
	if f.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if f.IsFavorited || f.IsInShoppingCart {
		if f.ViewerID == nil {
			return q.Where("1 = 0")
		}
	}
	if f.IsFavorited {
		q = q.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).
			Select("recipe_id").Where("user_id = ?", *f.ViewerID))
	}
	if f.IsInShoppingCart {
		q = q.Where("recipes.id IN (?)", db.Model(&models.ShoppingCart{}).
			Select("recipe_id").Where("user_id = ?", *f.ViewerID))
	}
	return q
}

func withRecipeDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_amounts.position") }).
		Preload("Ingredients.Ingredient")
}

// replaceRecipeSets deletes the current tag links and ingredient amounts of
// recipeID and inserts the ones from in. Must run inside a transaction.
func replaceRecipeSets(tx *gorm.DB, recipeID uuid.UUID, in *types.RecipeWrite) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return fmt.Errorf("failed to clear recipe tags: %w", err)
	}
	if len(in.Tags) > 0 {
		tags := make([]models.RecipeTag, len(in.Tags))
		for i, id := range in.Tags {
			tags[i] = models.RecipeTag{RecipeID: recipeID, TagID: id}
		}
		if err := tx.Create(&tags).Error; err != nil {
			return fmt.Errorf("failed to insert recipe tags: %w", err)
		}
	}

	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.IngredientAmount{}).Error; err != nil {
		return fmt.Errorf("failed to clear ingredient amounts: %w", err)
	}
	amounts := make([]models.IngredientAmount, len(in.Ingredients))
	for i, item := range in.Ingredients {
		amounts[i] = models.IngredientAmount{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.AmountOrDefault(),
			Position:     i,
		}
	}
	if err := tx.Omit(clause.Associations).CreateInBatches(&amounts, 100).Error; err != nil {
		return fmt.Errorf("failed to insert ingredient amounts: %w", err)
	}
	return nil
}

// checkWrite validates in and confirms every referenced ingredient and tag
// exists in the catalog.
func (s *RecipeService) checkWrite(ctx context.Context, in *types.RecipeWrite) error {
	if err := ValidateRecipe(in); err != nil {
		return err
	}

	ingredientIDs := make([]uint, len(in.Ingredients))
	for i, item := range in.Ingredients {
		ingredientIDs[i] = item.ID
	}
	missing, err := s.firstMissing(ctx, &models.Ingredient{}, ingredientIDs)
	if err != nil {
		return err
	}
	if missing != 0 {
		return invalid("ingredients", "ingredient %d does not exist", missing)
	}

	if len(in.Tags) > 0 {
		missing, err := s.firstMissing(ctx, &models.Tag{}, in.Tags)
		if err != nil {
			return err
		}
		if missing != 0 {
			return invalid("tags", "tag %d does not exist", missing)
		}
	}
	return nil
}

// firstMissing returns the first id in ids with no row in model's table, or 0.
func (s *RecipeService) firstMissing(ctx context.Context, model interface{}, ids []uint) (uint, error) {
	var found []uint
	if err := s.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return 0, fmt.Errorf("failed to look up catalog entries: %w", err)
	}
	present := make(map[uint]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	for _, id := range ids {
		if !present[id] {
			return id, nil
		}
	}
	return 0, nil
}

// loadForWrite fetches the recipe and checks actorID may modify it.
func (s *RecipeService) loadForWrite(ctx context.Context, actorID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe.AuthorID == actorID {
		return &recipe, nil
	}

	var actor models.User
	if err := s.db.WithContext(ctx).Select("id", "is_superuser").First(&actor, "id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !actor.IsSuperuser {
		return nil, ErrPermissionDenied
	}
	return &recipe, nil
}

func (s *RecipeService) storeImage(ctx context.Context, dataURI string) (string, error) {
	if dataURI == "" || s.images == nil {
		return "", nil
	}
	return s.images.StoreDataURI(ctx, dataURI)
}

func (s *RecipeService) removeImage(ctx context.Context, key string) {
	if s.images != nil {
		s.images.Remove(ctx, key)
	}
}

// translateWriteError maps storage constraint failures that slipped past
// validation (a catalog row deleted mid-request) to validation errors.
func translateWriteError(err error) error {
	switch {
	case database.IsForeignKeyViolation(err):
		return invalid("ingredients", "referenced ingredient, tag or author no longer exists")
	case database.IsDuplicateKey(err):
		return invalid("ingredients", "ingredients must be unique")
	default:
		return err
	}
}

func recordRecipeWrite(op string, err error) {
	metrics.RecipeWrites.WithLabelValues(op, outcome(err)).Inc()
}

// outcome converts a service error into a metrics label.
func outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &verr):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrPermissionDenied):
		return metrics.OutcomeForbidden
	default:
		return metrics.OutcomeError
	}
}
