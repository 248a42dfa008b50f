package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bounds for cooking time and ingredient amounts.
const (
	MinAmount     = 1
	MaxAmount     = 32000
	DefaultAmount = 1
)

// Recipe is the aggregate root. AuthorID and CreatedAt never change after
// insert; tags and ingredient amounts are replaced as whole sets.
type Recipe struct {
	ID          uuid.UUID          `gorm:"type:varchar(36);primarykey" json:"id"`
	AuthorID    uuid.UUID          `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author      *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Name        string             `gorm:"size:200;not null" json:"name"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	CookingTime int                `gorm:"not null;check:cooking_time >= 1 AND cooking_time <= 32000" json:"cooking_time"`
	Image       string             `gorm:"size:255" json:"image"`
	CreatedAt   time.Time          `gorm:"index" json:"pub_date"`
	UpdatedAt   time.Time          `json:"-"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []IngredientAmount `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
}

func (r *Recipe) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Recipe) TableName() string {
	return "recipes"
}

// IngredientAmount joins a recipe to a catalog ingredient. Position keeps
// the order the ingredients were submitted in.
type IngredientAmount struct {
	RecipeID     uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"-"`
	IngredientID uint       `gorm:"primarykey;autoIncrement:false;index" json:"id"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"-"`
	Amount       int        `gorm:"not null;default:1;check:amount >= 1 AND amount <= 32000" json:"amount"`
	Position     int        `gorm:"not null;default:0" json:"-"`
}

func (IngredientAmount) TableName() string {
	return "ingredient_amounts"
}

// RecipeTag is the explicit join row behind Recipe.Tags.
type RecipeTag struct {
	RecipeID uuid.UUID `gorm:"type:varchar(36);primarykey"`
	TagID    uint      `gorm:"primarykey;autoIncrement:false;index"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}
