package models

import (
	"time"

	"github.com/google/uuid"
)

// RecipeLink is a (user, recipe) membership row of an interest set.
type RecipeLink interface {
	LinkedUserID() uuid.UUID
	LinkedRecipeID() uuid.UUID
}

type Favorite struct {
	UserID    uuid.UUID `gorm:"type:varchar(36);primarykey" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);primarykey;index" json:"recipe_id"`
	WhenAdded time.Time `gorm:"autoCreateTime;not null" json:"when_added"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe    *Recipe   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Favorite) TableName() string {
	return "favorites"
}

func (f *Favorite) LinkedUserID() uuid.UUID   { return f.UserID }
func (f *Favorite) LinkedRecipeID() uuid.UUID { return f.RecipeID }

// ShoppingCart rows are scanned in AddedAt order when building the
// shopping list.
type ShoppingCart struct {
	UserID   uuid.UUID `gorm:"type:varchar(36);primarykey" json:"user_id"`
	RecipeID uuid.UUID `gorm:"type:varchar(36);primarykey;index" json:"recipe_id"`
	AddedAt  time.Time `gorm:"autoCreateTime;not null" json:"added_at"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe   *Recipe   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ShoppingCart) TableName() string {
	return "shopping_carts"
}

func (s *ShoppingCart) LinkedUserID() uuid.UUID   { return s.UserID }
func (s *ShoppingCart) LinkedRecipeID() uuid.UUID { return s.RecipeID }

// Follow is a directed edge: UserID follows AuthorID.
type Follow struct {
	UserID    uuid.UUID `gorm:"type:varchar(36);primarykey" json:"user_id"`
	AuthorID  uuid.UUID `gorm:"type:varchar(36);primarykey;index;check:user_id <> author_id" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author    *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Follow) TableName() string {
	return "follows"
}

// All lists every model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&RecipeTag{},
		&IngredientAmount{},
		&Favorite{},
		&ShoppingCart{},
		&Follow{},
	}
}
