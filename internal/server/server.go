package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

const serviceName = "foodgram-api"

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	cfg    *config.Config
}

// New wires services onto a gin engine. rdb may be nil, which disables token
// revocation and the recipe creation rate limit.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, store service.ImageStore) *Server {
	images := service.NewImageService(store)

	var (
		denylist service.TokenDenylist
		limiter  *middleware.RateLimiter
	)
	if rdb != nil {
		denylist = service.NewRedisTokenDenylist(rdb)
		limiter = middleware.NewRecipeCreationRateLimiter(rdb, cfg.RecipeCreationLimit, cfg.RecipeCreationWindow)
	}

	router := gin.New()
	router.Use(
		middleware.ErrorHandler(),
		otelgin.Middleware(serviceName),
		middleware.Metrics(),
		middleware.RequestLogger(),
		middleware.CORS(cfg.CORSOrigins),
	)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if store.Backend() == "local" {
		router.Static(strings.TrimSuffix(cfg.MediaURL, "/"), cfg.MediaRoot)
	}

	api.RegisterRoutes(router, api.Dependencies{
		DB:            db,
		Auth:          service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, denylist),
		Users:         service.NewUserService(db),
		Recipes:       service.NewRecipeService(db, images),
		Favorites:     service.NewFavoriteService(db),
		Cart:          service.NewShoppingCartService(db),
		Follows:       service.NewFollowService(db),
		Catalog:       service.NewCatalogService(db),
		ShoppingList:  service.NewShoppingListService(db),
		Images:        images,
		RecipeLimiter: limiter,
		PageSize:      cfg.PageSize,
		MaxPageSize:   cfg.MaxPageSize,
	})

	return &Server{
		router: router,
		cfg:    cfg,
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// NewImageStore picks the image backend named by cfg.StorageBackend.
func NewImageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, error) {
	if cfg.StorageBackend != "s3" {
		return service.NewLocalImageStore(cfg.MediaRoot, cfg.MediaURL), nil
	}
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure s3: %w", err)
	}
	return service.NewS3ImageStore(s3Config, cfg.S3PresignExpiry), nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	logging.Info().
		Str("addr", s.http.Addr).
		Str("image_backend", s.cfg.StorageBackend).
		Bool("rate_limit", s.cfg.RedisEnabled()).
		Msg("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
