// Package integration runs the services against a real PostgreSQL instance.
// Every test starts its own container and is skipped without docker.
package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

const workers = 8

// race runs fn concurrently and returns how many calls succeeded and how
// many failed with a conflict.
func race(t *testing.T, fn func() error) (ok, conflicts int) {
	t.Helper()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := fn()
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, service.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	return ok, conflicts
}

func TestConcurrentFavoriteAdd(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	reader := testhelpers.CreateUser(t, db, "reader")
	recipe := testhelpers.CreateRecipe(t, db, author, "Soup", time.Now(), nil)
	favorites := service.NewFavoriteService(db)

	ok, conflicts := race(t, func() error {
		_, err := favorites.Add(context.Background(), reader.ID, recipe.ID)
		return err
	})
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)

	var rows int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestConcurrentFollow(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	reader := testhelpers.CreateUser(t, db, "reader")
	follows := service.NewFollowService(db)

	ok, conflicts := race(t, func() error {
		_, err := follows.Follow(context.Background(), reader.ID, author.ID)
		return err
	})
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)
}

func TestSelfFollowRejectedByConstraint(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	user := testhelpers.CreateUser(t, db, "narcissus")

	err := db.Create(&models.Follow{UserID: user.ID, AuthorID: user.ID}).Error
	assert.Error(t, err)
}

func TestRecipeLifecycleOnPostgres(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	ctx := context.Background()
	author := testhelpers.CreateUser(t, db, "author")
	reader := testhelpers.CreateUser(t, db, "reader")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	eggs := testhelpers.CreateIngredient(t, db, "eggs", "pcs")
	lunch := testhelpers.CreateTag(t, db, "lunch")

	recipes := service.NewRecipeService(db, nil)
	favorites := service.NewFavoriteService(db)
	cart := service.NewShoppingCartService(db)
	two, three := 2, 3

	recipe, err := recipes.CreateRecipe(ctx, author.ID, &types.RecipeWrite{
		Name:        "Omelette",
		Text:        "Whisk and fry.",
		CookingTime: 5,
		Tags:        []uint{lunch.ID},
		Ingredients: []types.IngredientAmountInput{
			{ID: eggs.ID, Amount: &three},
			{ID: flour.ID, Amount: &two},
		},
	})
	require.NoError(t, err)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "eggs", recipe.Ingredients[0].Ingredient.Name)

	_, err = favorites.Add(ctx, reader.ID, recipe.ID)
	require.NoError(t, err)
	_, err = cart.Add(ctx, reader.ID, recipe.ID)
	require.NoError(t, err)

	list, err := service.NewShoppingListService(db).Build(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "1. eggs (pcs) - 3\n2. flour (g) - 2", list.String())

	found, total, err := recipes.ListRecipes(ctx, types.RecipeFilter{
		TagSlugs:    []string{"lunch"},
		ViewerID:    &reader.ID,
		IsFavorited: true,
	}, types.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)

	require.NoError(t, recipes.DeleteRecipe(ctx, author.ID, recipe.ID))
	for _, model := range []interface{}{&models.Favorite{}, &models.ShoppingCart{}, &models.IngredientAmount{}, &models.RecipeTag{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T rows left behind", model)
	}
}

func TestCatalogMaintenanceOnPostgres(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	ctx := context.Background()
	catalog := service.NewCatalogService(db)

	n, err := catalog.ImportIngredients(ctx, []types.IngredientInput{
		{Name: "Salt", MeasurementUnit: "g"},
		{Name: "Salt", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "pinch"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	found, err := catalog.SearchIngredients(ctx, "SA")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	testhelpers.CreateIngredient(t, db, "Salt", "kg")
	removed, err := catalog.RemoveDuplicateIngredients(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}
