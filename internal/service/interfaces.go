package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
}

// IUserService defines the interface for user account operations
type IUserService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, page types.Page) ([]models.User, int64, error)
	SetPassword(ctx context.Context, userID uuid.UUID, req *types.SetPasswordRequest) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, in *types.RecipeWrite) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, actorID, recipeID uuid.UUID, in *types.RecipeWrite) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, actorID, recipeID uuid.UUID) error
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context, filter types.RecipeFilter, page types.Page) ([]models.Recipe, int64, error)
}

// IInterestSetService defines the interface shared by favorites and the shopping cart
type IInterestSetService interface {
	Add(ctx context.Context, userID, recipeID uuid.UUID) (models.RecipeLink, error)
	Remove(ctx context.Context, userID, recipeID uuid.UUID) error
	Contains(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// IFollowService defines the interface for subscription operations
type IFollowService interface {
	Follow(ctx context.Context, userID, authorID uuid.UUID) (*models.Follow, error)
	Unfollow(ctx context.Context, userID, authorID uuid.UUID) error
	ListFollowed(ctx context.Context, userID uuid.UUID, page types.Page, recipesLimit *int) ([]FollowedAuthor, int64, error)
	Summary(ctx context.Context, authorID uuid.UUID, recipesLimit *int) (*FollowedAuthor, error)
	FollowingSet(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// ICatalogService defines the interface for tag and ingredient reads
type ICatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	SearchIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
}

// IShoppingListService defines the interface for shopping list generation
type IShoppingListService interface {
	Build(ctx context.Context, userID uuid.UUID) (*ShoppingList, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IInterestSetService  = (*InterestSetService)(nil)
	_ IFollowService       = (*FollowService)(nil)
	_ ICatalogService      = (*CatalogService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ TokenDenylist        = (*RedisTokenDenylist)(nil)
)
