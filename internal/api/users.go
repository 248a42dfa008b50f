package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	users   service.IUserService
	follows service.IFollowService
	p       *presenter
	pager   pager
}

func NewUserHandler(users service.IUserService, follows service.IFollowService, p *presenter, pg pager) *UserHandler {
	return &UserHandler{users: users, follows: follows, p: p, pager: pg}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, required, optional gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optional, h.ListUsers)
		users.GET("/me", required, h.Me)
		users.POST("/set_password", required, h.SetPassword)
		users.GET("/subscriptions", required, h.Subscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse(user, false))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := h.pager.page(c)
	if err != nil {
		respondError(c, err)
		return
	}
	users, total, err := h.users.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	views, err := h.p.users(c.Request.Context(), viewer(c), users)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, views))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := uuidParam(c, "id", "user")
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.p.user(c.Request.Context(), viewer(c), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) Me(c *gin.Context) {
	id, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user, false))
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	id, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.users.SetPassword(c.Request.Context(), id, &req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the current user follows.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	id, ok := currentUser(c)
	if !ok {
		return
	}
	page, err := h.pager.page(c)
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := optionalIntQuery(c, "recipes_limit")
	if err != nil {
		respondError(c, err)
		return
	}

	entries, total, err := h.follows.ListFollowed(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]types.SubscriptionResponse, len(entries))
	for i := range entries {
		views[i] = h.p.subscription(c.Request.Context(), &entries[i])
	}
	c.JSON(http.StatusOK, paginate(c, page, total, views))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	authorID, ok := uuidParam(c, "id", "user")
	if !ok {
		return
	}
	limit, err := optionalIntQuery(c, "recipes_limit")
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.follows.Follow(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	entry, err := h.follows.Summary(c.Request.Context(), authorID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.p.subscription(c.Request.Context(), entry))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	authorID, ok := uuidParam(c, "id", "user")
	if !ok {
		return
	}
	if err := h.follows.Unfollow(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
