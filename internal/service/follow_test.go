package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestFollowRules(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()
	svc := service.NewFollowService(db)

	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")

	_, err := svc.Follow(ctx, alice.ID, alice.ID)
	var verr *service.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, service.ErrSelfFollow, err)

	edge, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, edge.AuthorID)

	_, err = svc.Follow(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = svc.Follow(ctx, alice.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	following, err := svc.FollowingSet(ctx, alice.ID, []uuid.UUID{bob.ID, alice.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{bob.ID: true}, following)

	following, err = svc.FollowingSet(ctx, bob.ID, []uuid.UUID{alice.ID})
	require.NoError(t, err)
	assert.Empty(t, following, "follows are directed")

	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, svc.Unfollow(ctx, alice.ID, bob.ID), service.ErrNotFound)
	assert.ErrorIs(t, svc.Unfollow(ctx, alice.ID, uuid.New()), service.ErrNotFound)
}

func TestListFollowed(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()
	svc := service.NewFollowService(db)

	reader := testhelpers.CreateUser(t, db, "reader")
	chef := testhelpers.CreateUser(t, db, "chef")
	baker := testhelpers.CreateUser(t, db, "baker")
	salt := testhelpers.CreateIngredient(t, db, "salt", "g")
	line := []testhelpers.IngredientLine{{Ingredient: salt, Amount: 1}}

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	testhelpers.CreateRecipe(t, db, chef, "first", base, line)
	testhelpers.CreateRecipe(t, db, chef, "second", base.Add(time.Hour), line)
	testhelpers.CreateRecipe(t, db, chef, "third", base.Add(2*time.Hour), line)

	require.NoError(t, db.Create(&models.Follow{UserID: reader.ID, AuthorID: chef.ID, CreatedAt: base}).Error)
	require.NoError(t, db.Create(&models.Follow{UserID: reader.ID, AuthorID: baker.ID, CreatedAt: base.Add(time.Minute)}).Error)

	limit := 2
	authors, total, err := svc.ListFollowed(ctx, reader.ID, types.Page{Number: 1, Size: 10}, &limit)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, authors, 2)

	assert.Equal(t, "baker", authors[0].Author.Username)
	assert.Zero(t, authors[0].RecipesCount)
	assert.Empty(t, authors[0].Recipes)

	chefEntry := authors[1]
	assert.Equal(t, "chef", chefEntry.Author.Username)
	assert.Equal(t, int64(3), chefEntry.RecipesCount)
	require.Len(t, chefEntry.Recipes, 2)
	assert.Equal(t, "third", chefEntry.Recipes[0].Name)
	assert.Equal(t, "second", chefEntry.Recipes[1].Name)

	authors, _, err = svc.ListFollowed(ctx, reader.ID, types.Page{Number: 1, Size: 10}, nil)
	require.NoError(t, err)
	assert.Len(t, authors[1].Recipes, 3)

	negative := -1
	_, _, err = svc.ListFollowed(ctx, reader.ID, types.Page{Number: 1, Size: 10}, &negative)
	var verr *service.ValidationError
	assert.True(t, errors.As(err, &verr))

	summary, err := svc.Summary(ctx, chef.ID, &limit)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.RecipesCount)
	assert.Len(t, summary.Recipes, 2)
}
