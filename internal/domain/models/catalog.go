package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogIngredient is an ingredient stored in the ingredient database
type CatalogIngredient struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Type           IngredientType     `bson:"type" json:"type"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	GrainType      string             `bson:"grain_type,omitempty" json:"grain_type,omitempty"`
	Potential      *float64           `bson:"potential,omitempty" json:"potential,omitempty"`
	Color          *float64           `bson:"color,omitempty" json:"color,omitempty"`
	AlphaAcid      *float64           `bson:"alpha_acid,omitempty" json:"alpha_acid,omitempty"`
	Attenuation    *float64           `bson:"attenuation,omitempty" json:"attenuation,omitempty"`
	YeastType      string             `bson:"yeast_type,omitempty" json:"yeast_type,omitempty"`
	Manufacturer   string             `bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	MinTemperature *float64           `bson:"min_temperature,omitempty" json:"min_temperature,omitempty"`
	MaxTemperature *float64           `bson:"max_temperature,omitempty" json:"max_temperature,omitempty"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// ToRecipeIngredient builds a recipe entry for this catalog ingredient
func (c *CatalogIngredient) ToRecipeIngredient(amount float64, unit string) Ingredient {
	ing := Ingredient{
		Name:           c.Name,
		Type:           c.Type,
		Amount:         amount,
		Unit:           unit,
		GrainType:      c.GrainType,
		Potential:      cloneFloat(c.Potential),
		Color:          cloneFloat(c.Color),
		AlphaAcid:      cloneFloat(c.AlphaAcid),
		Attenuation:    cloneFloat(c.Attenuation),
		YeastType:      c.YeastType,
		Manufacturer:   c.Manufacturer,
		MinTemperature: cloneFloat(c.MinTemperature),
		MaxTemperature: cloneFloat(c.MaxTemperature),
	}
	if !c.ID.IsZero() {
		ing.IngredientID = c.ID.Hex()
	}
	return ing
}

// SimilarityCriteria narrows a substitution candidate search
type SimilarityCriteria struct {
	Type         IngredientType
	GrainType    string
	YeastType    string
	NameContains []string // case-insensitive, any part matches
	ExcludeNames []string
	Limit        int
}

// ScoredIngredient is a substitution candidate with the repository's similarity score in [0,1]
type ScoredIngredient struct {
	Ingredient *CatalogIngredient `json:"ingredient"`
	Score      float64            `json:"score"`
}

// Metric names used by style ranges and conditions
const (
	MetricOG  = "OG"
	MetricFG  = "FG"
	MetricABV = "ABV"
	MetricIBU = "IBU"
	MetricSRM = "SRM"
)

// AllMetrics lists the metrics in reporting order
var AllMetrics = []string{MetricOG, MetricFG, MetricABV, MetricIBU, MetricSRM}

// Range is an inclusive [Min, Max] interval
type Range struct {
	Min float64 `bson:"min" json:"min"`
	Max float64 `bson:"max" json:"max"`
}

// Contains reports whether v lies within the range, bounds included
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Midpoint returns the center of the range
func (r Range) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// StyleGuidelines maps metric names to their allowed range.
// A metric without an entry is always considered in range.
type StyleGuidelines struct {
	Ranges map[string]Range `bson:"ranges" json:"ranges"`
}

// Range returns the guideline range for a metric
func (g *StyleGuidelines) Range(metric string) (Range, bool) {
	if g == nil || g.Ranges == nil {
		return Range{}, false
	}
	r, ok := g.Ranges[metric]
	return r, ok
}

// BeerStyle is a stored style definition
type BeerStyle struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code       string             `bson:"code" json:"code"` // e.g. 21A
	Name       string             `bson:"name" json:"name"`
	Category   string             `bson:"category,omitempty" json:"category,omitempty"`
	Guidelines StyleGuidelines    `bson:"guidelines" json:"guidelines"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
