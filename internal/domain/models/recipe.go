package models

import (
	"fmt"
	"strings"
)

// IngredientType classifies a recipe ingredient
type IngredientType string

const (
	IngredientTypeGrain IngredientType = "grain"
	IngredientTypeHop   IngredientType = "hop"
	IngredientTypeYeast IngredientType = "yeast"
	IngredientTypeOther IngredientType = "other"
)

// Valid reports whether t is one of the known ingredient types
func (t IngredientType) Valid() bool {
	switch t {
	case IngredientTypeGrain, IngredientTypeHop, IngredientTypeYeast, IngredientTypeOther:
		return true
	}
	return false
}

// HopUse describes when a hop addition is made
type HopUse string

const (
	HopUseBoil      HopUse = "boil"
	HopUseWhirlpool HopUse = "whirlpool"
	HopUseDryHop    HopUse = "dry-hop"
)

// Grain types referenced by the optimizer
const (
	GrainTypeBaseMalt       = "base_malt"
	GrainTypeCaramelCrystal = "caramel_crystal"
	GrainTypeRoasted        = "roasted"
	GrainTypeSpecialty      = "specialty_malt"
	GrainTypeAdjunct        = "adjunct_grain"
	GrainTypeExtract        = "extract"
	GrainTypeSugar          = "sugar"
)

// Ingredient is a single ingredient entry inside a recipe.
// Fields not applicable to the ingredient type are left nil/empty.
type Ingredient struct {
	ID           string         `bson:"id,omitempty" json:"id,omitempty"`                       // Slot handle, stable for one analysis run
	IngredientID string         `bson:"ingredient_id,omitempty" json:"ingredient_id,omitempty"` // Catalog reference
	Name         string         `bson:"name" json:"name"`
	Type         IngredientType `bson:"type" json:"type"`
	Amount       float64        `bson:"amount" json:"amount"`
	Unit         string         `bson:"unit" json:"unit"`

	// Grain
	GrainType string   `bson:"grain_type,omitempty" json:"grain_type,omitempty"`
	Potential *float64 `bson:"potential,omitempty" json:"potential,omitempty"` // SG (1.037) or PPG (37)
	Color     *float64 `bson:"color,omitempty" json:"color,omitempty"`         // Lovibond

	// Hop
	AlphaAcid *float64 `bson:"alpha_acid,omitempty" json:"alpha_acid,omitempty"`
	Use       HopUse   `bson:"use,omitempty" json:"use,omitempty"`
	Time      *float64 `bson:"time,omitempty" json:"time,omitempty"` // minutes

	// Yeast
	Attenuation    *float64 `bson:"attenuation,omitempty" json:"attenuation,omitempty"`
	YeastType      string   `bson:"yeast_type,omitempty" json:"yeast_type,omitempty"`
	Manufacturer   string   `bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	MinTemperature *float64 `bson:"min_temperature,omitempty" json:"min_temperature,omitempty"`
	MaxTemperature *float64 `bson:"max_temperature,omitempty" json:"max_temperature,omitempty"`
}

// Clone returns a deep copy of the ingredient
func (i Ingredient) Clone() Ingredient {
	c := i
	c.Potential = cloneFloat(i.Potential)
	c.Color = cloneFloat(i.Color)
	c.AlphaAcid = cloneFloat(i.AlphaAcid)
	c.Time = cloneFloat(i.Time)
	c.Attenuation = cloneFloat(i.Attenuation)
	c.MinTemperature = cloneFloat(i.MinTemperature)
	c.MaxTemperature = cloneFloat(i.MaxTemperature)
	return c
}

// IsBaseMalt reports whether the ingredient is a base malt grain
func (i *Ingredient) IsBaseMalt() bool {
	return i.Type == IngredientTypeGrain && i.GrainType == GrainTypeBaseMalt
}

// Recipe is the mutable recipe data a workflow operates on
type Recipe struct {
	Name            string       `bson:"name,omitempty" json:"name,omitempty"`
	Style           string       `bson:"style,omitempty" json:"style,omitempty"`
	BatchSize       float64      `bson:"batch_size" json:"batch_size"`
	BatchSizeUnit   string       `bson:"batch_size_unit" json:"batch_size_unit"` // gal, l
	Efficiency      float64      `bson:"efficiency" json:"efficiency"`           // percent
	BoilTime        float64      `bson:"boil_time" json:"boil_time"`             // minutes
	MashTemperature *float64     `bson:"mash_temperature,omitempty" json:"mash_temperature,omitempty"`
	MashTempUnit    string       `bson:"mash_temp_unit,omitempty" json:"mash_temp_unit,omitempty"` // F, C
	Ingredients     []Ingredient `bson:"ingredients" json:"ingredients"`
}

// Clone returns a deep copy of the recipe
func (r Recipe) Clone() Recipe {
	c := r
	c.MashTemperature = cloneFloat(r.MashTemperature)
	c.Ingredients = make([]Ingredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		c.Ingredients[i] = ing.Clone()
	}
	return c
}

// IndexByID returns the slice index of the ingredient with the given slot handle, or -1
func (r *Recipe) IndexByID(id string) int {
	if id == "" {
		return -1
	}
	for i := range r.Ingredients {
		if r.Ingredients[i].ID == id {
			return i
		}
	}
	return -1
}

// IndexByName returns the slice index of the first ingredient with the exact name, or -1
func (r *Recipe) IndexByName(name string) int {
	for i := range r.Ingredients {
		if r.Ingredients[i].Name == name {
			return i
		}
	}
	return -1
}

// ValidateRecipe checks the structural invariants of recipe data
func ValidateRecipe(r *Recipe) error {
	var problems []string
	if r.BatchSize <= 0 {
		problems = append(problems, "batch_size must be positive")
	}
	if r.BatchSizeUnit == "" {
		problems = append(problems, "batch_size_unit is required")
	}
	for i, ing := range r.Ingredients {
		if ing.Name == "" {
			problems = append(problems, fmt.Sprintf("ingredient %d: name is required", i))
		}
		if !ing.Type.Valid() {
			problems = append(problems, fmt.Sprintf("ingredient %d: unknown type %q", i, ing.Type))
		}
		if ing.Amount < 0 {
			problems = append(problems, fmt.Sprintf("ingredient %d: amount must not be negative", i))
		}
	}
	if len(problems) > 0 {
		return &RecipeValidationError{Problems: problems}
	}
	return nil
}

// RecipeValidationError lists every problem found in recipe data
type RecipeValidationError struct {
	Problems []string
}

func (e *RecipeValidationError) Error() string {
	return "invalid recipe: " + strings.Join(e.Problems, "; ")
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
