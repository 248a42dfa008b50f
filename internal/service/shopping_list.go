package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
)

// ShoppingListLine is one aggregated ingredient of a shopping list.
type ShoppingListLine struct {
	Name   string
	Unit   string
	Amount int64
}

// ShoppingList folds ingredient amounts by ingredient name. Lines keep the
// order in which each name was first seen, and a line keeps the unit it was
// first seen with.
type ShoppingList struct {
	lines []ShoppingListLine
	index map[string]int
}

func NewShoppingList() *ShoppingList {
	return &ShoppingList{index: make(map[string]int)}
}

// Add folds amount into the line for name. It reports false when name was
// already present with a different unit; the amount is summed regardless.
func (l *ShoppingList) Add(name, unit string, amount int) bool {
	if i, ok := l.index[name]; ok {
		l.lines[i].Amount += int64(amount)
		return l.lines[i].Unit == unit
	}
	l.index[name] = len(l.lines)
	l.lines = append(l.lines, ShoppingListLine{Name: name, Unit: unit, Amount: int64(amount)})
	return true
}

func (l *ShoppingList) Lines() []ShoppingListLine {
	out := make([]ShoppingListLine, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *ShoppingList) Len() int {
	return len(l.lines)
}

// String renders the list as numbered "N. name (unit) - amount" lines
// without a trailing newline.
func (l *ShoppingList) String() string {
	var b strings.Builder
	for i, line := range l.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s (%s) - %d", i+1, line.Name, line.Unit, line.Amount)
	}
	return b.String()
}

// ShoppingListService builds the shopping list of a user's cart.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

type cartIngredientRow struct {
	Name   string
	Unit   string
	Amount int
}

// Build scans the user's cart in the order recipes were added and each
// recipe's ingredients in submission order.
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID) (*ShoppingList, error) {
	var rows []cartIngredientRow
	err := s.db.WithContext(ctx).
		Table("shopping_carts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, ingredient_amounts.amount AS amount").
		Joins("JOIN ingredient_amounts ON ingredient_amounts.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Order("shopping_carts.added_at").
		Order("shopping_carts.recipe_id").
		Order("ingredient_amounts.position").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping cart: %w", err)
	}

	list := NewShoppingList()
	for _, r := range rows {
		if !list.Add(r.Name, r.Unit, r.Amount) {
			logging.Warn().
				Str("user_id", userID.String()).
				Str("ingredient", r.Name).
				Str("unit", r.Unit).
				Msg("ingredient appears with different units; summing under the first")
		}
	}

	metrics.ShoppingListLines.Observe(float64(list.Len()))
	return list, nil
}
