package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// presenter builds read models, resolving the per-viewer flags in one
// query per flag rather than one per row.
type presenter struct {
	favorites service.IInterestSetService
	cart      service.IInterestSetService
	follows   service.IFollowService
	images    ImageURLResolver
}

func userResponse(u *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func (p *presenter) users(ctx context.Context, viewer *uuid.UUID, users []models.User) ([]types.UserResponse, error) {
	subscribed := map[uuid.UUID]bool{}
	if viewer != nil && len(users) > 0 {
		ids := make([]uuid.UUID, len(users))
		for i := range users {
			ids[i] = users[i].ID
		}
		var err error
		if subscribed, err = p.follows.FollowingSet(ctx, *viewer, ids); err != nil {
			return nil, err
		}
	}
	out := make([]types.UserResponse, len(users))
	for i := range users {
		out[i] = userResponse(&users[i], subscribed[users[i].ID])
	}
	return out, nil
}

func (p *presenter) user(ctx context.Context, viewer *uuid.UUID, u *models.User) (types.UserResponse, error) {
	out, err := p.users(ctx, viewer, []models.User{*u})
	if err != nil {
		return types.UserResponse{}, err
	}
	return out[0], nil
}

func (p *presenter) recipes(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	out := make([]types.RecipeResponse, len(recipes))
	if len(recipes) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(recipes))
	authors := make([]models.User, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		if recipes[i].Author != nil {
			authors[i] = *recipes[i].Author
		} else {
			authors[i] = models.User{ID: recipes[i].AuthorID}
		}
	}

	favorited, inCart := map[uuid.UUID]bool{}, map[uuid.UUID]bool{}
	if viewer != nil {
		var err error
		if favorited, err = p.favorites.Contains(ctx, *viewer, ids); err != nil {
			return nil, err
		}
		if inCart, err = p.cart.Contains(ctx, *viewer, ids); err != nil {
			return nil, err
		}
	}
	authorViews, err := p.users(ctx, viewer, authors)
	if err != nil {
		return nil, err
	}

	for i := range recipes {
		r := &recipes[i]
		tags := r.Tags
		if tags == nil {
			tags = []models.Tag{}
		}
		ingredients := make([]types.RecipeIngredientResponse, len(r.Ingredients))
		for j, ia := range r.Ingredients {
			ingredients[j] = types.RecipeIngredientResponse{
				ID:              ia.IngredientID,
				Name:            ia.Ingredient.Name,
				MeasurementUnit: ia.Ingredient.MeasurementUnit,
				Amount:          ia.Amount,
			}
		}
		out[i] = types.RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           authorViews[i],
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            p.images.URL(ctx, r.Image),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			PubDate:          r.CreatedAt,
		}
	}
	return out, nil
}

func (p *presenter) recipe(ctx context.Context, viewer *uuid.UUID, r *models.Recipe) (types.RecipeResponse, error) {
	out, err := p.recipes(ctx, viewer, []models.Recipe{*r})
	if err != nil {
		return types.RecipeResponse{}, err
	}
	return out[0], nil
}

func (p *presenter) short(ctx context.Context, r *models.Recipe) types.ShortRecipe {
	return types.ShortRecipe{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.images.URL(ctx, r.Image),
		CookingTime: r.CookingTime,
	}
}

// subscription renders a followed author; the viewer follows it by definition.
func (p *presenter) subscription(ctx context.Context, entry *service.FollowedAuthor) types.SubscriptionResponse {
	recipes := make([]types.ShortRecipe, len(entry.Recipes))
	for i := range entry.Recipes {
		recipes[i] = p.short(ctx, &entry.Recipes[i])
	}
	return types.SubscriptionResponse{
		UserResponse: userResponse(&entry.Author, true),
		Recipes:      recipes,
		RecipesCount: entry.RecipesCount,
	}
}
