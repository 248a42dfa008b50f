package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
)

// RateLimitHandler reports the caller's remaining recipe-creation quota.
type RateLimitHandler struct {
	limiter *middleware.RateLimiter
}

func NewRateLimitHandler(limiter *middleware.RateLimiter) *RateLimitHandler {
	return &RateLimitHandler{limiter: limiter}
}

func (h *RateLimitHandler) RegisterRoutes(router *gin.RouterGroup, required gin.HandlerFunc) {
	router.GET("/rate-limits/recipe-creation", required, h.RecipeCreation)
}

func (h *RateLimitHandler) RecipeCreation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.limiter == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	remaining, reset, err := h.limiter.GetRemainingRequests(c.Request.Context(), userID.String())
	if err != nil {
		respondError(c, err)
		return
	}
	cfg := h.limiter.Config()
	c.JSON(http.StatusOK, gin.H{
		"enabled":        true,
		"limit":          cfg.Limit,
		"remaining":      remaining,
		"window_seconds": int(cfg.Window.Seconds()),
		"reset_at":       reset.UTC(),
	})
}
