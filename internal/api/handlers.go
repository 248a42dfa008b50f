package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// ImageURLResolver turns a stored image key into a public URL.
type ImageURLResolver interface {
	URL(ctx context.Context, key string) string
}

// Dependencies are the services the HTTP layer is built from.
type Dependencies struct {
	DB           *gorm.DB
	Auth         service.IAuthService
	Users        service.IUserService
	Recipes      service.IRecipeService
	Favorites    service.IInterestSetService
	Cart         service.IInterestSetService
	Follows      service.IFollowService
	Catalog      service.ICatalogService
	ShoppingList service.IShoppingListService
	Images       ImageURLResolver

	// RecipeLimiter is nil when Redis is not configured.
	RecipeLimiter *middleware.RateLimiter
	PageSize      int
	MaxPageSize   int
}

// HealthCheck returns the health status of the API
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", HealthCheck(deps.DB))

	p := &presenter{
		favorites: deps.Favorites,
		cart:      deps.Cart,
		follows:   deps.Follows,
		images:    deps.Images,
	}
	pg := pager{defaultSize: deps.PageSize, maxSize: deps.MaxPageSize}
	required := middleware.AuthMiddleware(deps.Auth)
	optional := middleware.OptionalAuth(deps.Auth)

	api := router.Group("/api")

	NewAuthHandler(deps.Auth).RegisterRoutes(api, required)
	NewUserHandler(deps.Users, deps.Follows, p, pg).RegisterRoutes(api, required, optional)
	NewCatalogHandler(deps.Catalog).RegisterRoutes(api)
	NewRecipeHandler(deps.Recipes, deps.Favorites, deps.Cart, deps.ShoppingList, p, pg).
		RegisterRoutes(api, required, optional, deps.RecipeLimiter)
	NewRateLimitHandler(deps.RecipeLimiter).RegisterRoutes(api, required)
}
