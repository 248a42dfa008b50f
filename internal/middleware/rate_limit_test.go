package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestRateLimiterCountsPerUser(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	ctx := context.Background()
	rl := middleware.NewRecipeCreationRateLimiter(client, 2, time.Hour)

	remaining, reset, err := rl.GetRemainingRequests(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
	assert.True(t, reset.After(time.Now()))

	allowed, remaining, _, err := rl.IsAllowed(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	allowed, _, _, err = rl.IsAllowed(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, remaining, _, err = rl.IsAllowed(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	remaining, _, err = rl.GetRemainingRequests(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestRateLimitMiddleware(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	rl := middleware.NewRecipeCreationRateLimiter(client, 1, time.Hour)
	userID := uuid.New()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/recipes", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}, rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func() *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/recipes", nil))
		return rr
	}

	first := send()
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := send()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}
