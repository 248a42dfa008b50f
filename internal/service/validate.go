package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// validate is shared; validator.Validate caches struct metadata and is
// safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// validateStruct runs the struct tags of in and converts the first failure
// into a *ValidationError.
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return "ensure this field has no more than " + fe.Param() + " characters"
	case "min":
		return "ensure this field has at least " + fe.Param() + " characters"
	case "email":
		return "enter a valid email address"
	case "hexcolor":
		return "enter a valid hex color"
	case "username":
		return "may contain only letters, digits and @/./+/-/_"
	default:
		return "invalid value"
	}
}

// ValidateRecipe checks a recipe write before anything is persisted.
// Ingredient rules are checked first, in list order, then cooking time,
// then the header fields.
func ValidateRecipe(in *types.RecipeWrite) error {
	if len(in.Ingredients) == 0 {
		return invalid("ingredients", "at least one ingredient required")
	}

	seen := make(map[uint]struct{}, len(in.Ingredients))
	for _, item := range in.Ingredients {
		if _, dup := seen[item.ID]; dup {
			return invalid("ingredients", "ingredients must be unique")
		}
		seen[item.ID] = struct{}{}
	}

	for _, item := range in.Ingredients {
		if amount := item.AmountOrDefault(); amount < models.MinAmount || amount > models.MaxAmount {
			return invalid("amount", "amount %d is out of range [%d, %d]", amount, models.MinAmount, models.MaxAmount)
		}
	}

	if in.CookingTime < models.MinAmount || in.CookingTime > models.MaxAmount {
		return invalid("cooking_time", "cooking time %d is out of range [%d, %d]", in.CookingTime, models.MinAmount, models.MaxAmount)
	}

	tags := make(map[uint]struct{}, len(in.Tags))
	for _, id := range in.Tags {
		if _, dup := tags[id]; dup {
			return invalid("tags", "tags must be unique")
		}
		tags[id] = struct{}{}
	}

	return validateStruct(in)
}
