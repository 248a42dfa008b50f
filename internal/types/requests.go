package types

// IngredientAmountInput is one {id, amount} entry of a recipe write.
// A missing amount means 1.
type IngredientAmountInput struct {
	ID     uint `json:"id"`
	Amount *int `json:"amount"`
}

func (in IngredientAmountInput) AmountOrDefault() int {
	if in.Amount == nil {
		return 1
	}
	return *in.Amount
}

// RecipeWrite is the write model for creating and updating a recipe.
// Image is a data URI; an empty Image on update keeps the stored one.
type RecipeWrite struct {
	Name        string                  `json:"name" validate:"required,max=200"`
	Text        string                  `json:"text" validate:"required"`
	CookingTime int                     `json:"cooking_time"`
	Image       string                  `json:"image"`
	Tags        []uint                  `json:"tags"`
	Ingredients []IngredientAmountInput `json:"ingredients"`
}

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// TagInput describes a catalog tag to import.
type TagInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"required,hexcolor,max=7"`
	Slug  string `json:"slug" validate:"required,max=200"`
}

// IngredientInput describes a catalog ingredient to import.
type IngredientInput struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=200"`
}
