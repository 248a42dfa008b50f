package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_list.txt"

type RecipeHandler struct {
	recipes      service.IRecipeService
	favorites    service.IInterestSetService
	cart         service.IInterestSetService
	shoppingList service.IShoppingListService
	p            *presenter
	pager        pager
}

func NewRecipeHandler(
	recipes service.IRecipeService,
	favorites, cart service.IInterestSetService,
	shoppingList service.IShoppingListService,
	p *presenter,
	pg pager,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		favorites:    favorites,
		cart:         cart,
		shoppingList: shoppingList,
		p:            p,
		pager:        pg,
	}
}

// RegisterRoutes mounts the recipe routes. limiter may be nil.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, required, optional gin.HandlerFunc, limiter *middleware.RateLimiter) {
	create := []gin.HandlerFunc{required}
	if limiter != nil {
		create = append(create, limiter.RateLimitMiddleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", create...)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PUT("/:id", required, h.UpdateRecipe)
		recipes.PATCH("/:id", required, h.UpdateRecipe)
		recipes.DELETE("/:id", required, h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, h.addLink(h.favorites))
		recipes.DELETE("/:id/favorite", required, h.removeLink(h.favorites))
		recipes.POST("/:id/shopping_cart", required, h.addLink(h.cart))
		recipes.DELETE("/:id/shopping_cart", required, h.removeLink(h.cart))
	}
}

// ListRecipes supports ?tags=<slug> (repeatable), ?author=<id>,
// ?is_favorited=1 and ?is_in_shopping_cart=1.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, err := h.pager.page(c)
	if err != nil {
		respondError(c, err)
		return
	}

	filter := types.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		ViewerID:         viewer(c),
		IsFavorited:      truthy(c.Query("is_favorited")),
		IsInShoppingCart: truthy(c.Query("is_in_shopping_cart")),
	}
	if raw := c.Query("author"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid author id")
			return
		}
		filter.AuthorID = &id
	}

	recipes, total, err := h.recipes.ListRecipes(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	views, err := h.p.recipes(c.Request.Context(), filter.ViewerID, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, views))
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id", "recipe")
	if !ok {
		return
	}
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var in types.RecipeWrite
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), userID, &in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderRecipe(c, http.StatusCreated, recipe)
}

// UpdateRecipe serves both PUT and PATCH; the body always carries the full
// write model.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "recipe")
	if !ok {
		return
	}
	var in types.RecipeWrite
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), userID, id, &in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "recipe")
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) renderRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	view, err := h.p.recipe(c.Request.Context(), viewer(c), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, view)
}

// addLink puts the recipe into set and answers with its short form.
func (h *RecipeHandler) addLink(set service.IInterestSetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		recipeID, ok := uuidParam(c, "id", "recipe")
		if !ok {
			return
		}
		if _, err := set.Add(c.Request.Context(), userID, recipeID); err != nil {
			respondError(c, err)
			return
		}
		recipe, err := h.recipes.GetRecipe(c.Request.Context(), recipeID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, h.p.short(c.Request.Context(), recipe))
	}
}

func (h *RecipeHandler) removeLink(set service.IInterestSetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		recipeID, ok := uuidParam(c, "id", "recipe")
		if !ok {
			return
		}
		if err := set.Remove(c.Request.Context(), userID, recipeID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart returns the aggregated shopping list as a text file.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.shoppingList.Build(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(list.String()))
}
