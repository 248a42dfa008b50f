package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func validRecipe() *types.RecipeWrite {
	return &types.RecipeWrite{
		Name:        "Omelette",
		Text:        "Beat and cook.",
		CookingTime: 5,
		Tags:        []uint{1, 2},
		Ingredients: []types.IngredientAmountInput{{ID: 1, Amount: amount(3)}, {ID: 2}},
	}
}

func TestValidateRecipe(t *testing.T) {
	require.NoError(t, service.ValidateRecipe(validRecipe()))

	tests := []struct {
		name    string
		edit    func(*types.RecipeWrite)
		field   string
		message string
	}{
		{"empty ingredients", func(in *types.RecipeWrite) { in.Ingredients = []types.IngredientAmountInput{} },
			"ingredients", "at least one ingredient required"},
		{"duplicate ingredient", func(in *types.RecipeWrite) { in.Ingredients[1].ID = 1 },
			"ingredients", "ingredients must be unique"},
		{"amount below range", func(in *types.RecipeWrite) { in.Ingredients[0].Amount = amount(0) },
			"amount", "amount 0 is out of range [1, 32000]"},
		{"amount above range", func(in *types.RecipeWrite) { in.Ingredients[0].Amount = amount(32001) },
			"amount", "amount 32001 is out of range [1, 32000]"},
		{"cooking time above range", func(in *types.RecipeWrite) { in.CookingTime = 32001 },
			"cooking_time", "cooking time 32001 is out of range [1, 32000]"},
		{"duplicate tags", func(in *types.RecipeWrite) { in.Tags = []uint{2, 2} },
			"tags", "tags must be unique"},
		{"missing text", func(in *types.RecipeWrite) { in.Text = "" },
			"text", "this field is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRecipe()
			tt.edit(in)
			err := service.ValidateRecipe(in)
			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Message)
		})
	}
}

func TestValidateRecipeBoundaries(t *testing.T) {
	in := validRecipe()
	in.CookingTime = 1
	in.Ingredients[0].Amount = amount(32000)
	assert.NoError(t, service.ValidateRecipe(in))
}

func TestValidateRecipeChecksIngredientsFirst(t *testing.T) {
	in := validRecipe()
	in.CookingTime = 0
	in.Ingredients[1].ID = 1

	var verr *service.ValidationError
	require.True(t, errors.As(service.ValidateRecipe(in), &verr))
	assert.Equal(t, "ingredients", verr.Field)
}
