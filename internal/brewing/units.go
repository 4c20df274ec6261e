// Package brewing provides the concrete recipe metrics calculator and unit
// converter the optimizer consumes.
package brewing

import (
	"fmt"
	"math"
	"strings"

	"github.com/ak/brewlab/internal/domain/models"
)

// UnitSystem is the measurement system a recipe is expressed in
type UnitSystem string

const (
	UnitSystemMetric   UnitSystem = "metric"
	UnitSystemImperial UnitSystem = "imperial"
	UnitSystemMixed    UnitSystem = "mixed"
)

// ParseUnitSystem parses "metric" or "imperial"; anything else returns false
func ParseUnitSystem(s string) (UnitSystem, bool) {
	switch UnitSystem(strings.ToLower(strings.TrimSpace(s))) {
	case UnitSystemMetric:
		return UnitSystemMetric, true
	case UnitSystemImperial:
		return UnitSystemImperial, true
	}
	return "", false
}

// Canonical unit names
const (
	UnitGram       = "g"
	UnitKilogram   = "kg"
	UnitOunce      = "oz"
	UnitPound      = "lb"
	UnitLiter      = "l"
	UnitMilliliter = "ml"
	UnitGallon     = "gal"
	UnitQuart      = "qt"
	UnitFahrenheit = "F"
	UnitCelsius    = "C"
	UnitPackage    = "pkg"
	UnitTeaspoon   = "tsp"
	UnitTablespoon = "tbsp"
)

var unitAliases = map[string]string{
	"g": UnitGram, "gram": UnitGram, "grams": UnitGram,
	"kg": UnitKilogram, "kilogram": UnitKilogram, "kilograms": UnitKilogram, "kgs": UnitKilogram,
	"oz": UnitOunce, "ounce": UnitOunce, "ounces": UnitOunce,
	"lb": UnitPound, "lbs": UnitPound, "pound": UnitPound, "pounds": UnitPound,
	"l": UnitLiter, "liter": UnitLiter, "liters": UnitLiter, "litre": UnitLiter, "litres": UnitLiter,
	"ml": UnitMilliliter, "milliliter": UnitMilliliter, "milliliters": UnitMilliliter,
	"gal": UnitGallon, "gallon": UnitGallon, "gallons": UnitGallon,
	"qt": UnitQuart, "quart": UnitQuart, "quarts": UnitQuart,
	"f": UnitFahrenheit, "°f": UnitFahrenheit, "fahrenheit": UnitFahrenheit,
	"c": UnitCelsius, "°c": UnitCelsius, "celsius": UnitCelsius,
	"pkg": UnitPackage, "package": UnitPackage, "packages": UnitPackage, "packet": UnitPackage, "vial": UnitPackage, "each": UnitPackage,
	"tsp": UnitTeaspoon, "teaspoon": UnitTeaspoon, "teaspoons": UnitTeaspoon,
	"tbsp": UnitTablespoon, "tablespoon": UnitTablespoon, "tablespoons": UnitTablespoon,
}

// NormalizeUnit maps unit aliases to their canonical name. Unknown units are returned lower-cased.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if canonical, ok := unitAliases[u]; ok {
		return canonical
	}
	return u
}

var gramsPer = map[string]float64{
	UnitGram:     1,
	UnitKilogram: 1000,
	UnitOunce:    28.349523125,
	UnitPound:    453.59237,
}

var litersPer = map[string]float64{
	UnitLiter:      1,
	UnitMilliliter: 0.001,
	UnitGallon:     3.785411784,
	UnitQuart:      0.946352946,
}

// SystemOf returns the unit system a unit belongs to, or "" for system-neutral units
func SystemOf(unit string) UnitSystem {
	switch NormalizeUnit(unit) {
	case UnitGram, UnitKilogram, UnitLiter, UnitMilliliter, UnitCelsius:
		return UnitSystemMetric
	case UnitOunce, UnitPound, UnitGallon, UnitQuart, UnitFahrenheit:
		return UnitSystemImperial
	}
	return ""
}

// IsWeight reports whether unit is a known weight unit
func IsWeight(unit string) bool {
	_, ok := gramsPer[NormalizeUnit(unit)]
	return ok
}

// IsVolume reports whether unit is a known volume unit
func IsVolume(unit string) bool {
	_, ok := litersPer[NormalizeUnit(unit)]
	return ok
}

// Converter converts amounts between units and rounds them to brewing precision
type Converter struct{}

// NewConverter creates a unit converter
func NewConverter() *Converter {
	return &Converter{}
}

// Convert converts an amount between two weight, volume or temperature units
func (c *Converter) Convert(amount float64, from, to string) (float64, error) {
	f, t := NormalizeUnit(from), NormalizeUnit(to)
	if f == t {
		return amount, nil
	}
	if fg, ok := gramsPer[f]; ok {
		if tg, ok := gramsPer[t]; ok {
			return amount * fg / tg, nil
		}
	}
	if fl, ok := litersPer[f]; ok {
		if tl, ok := litersPer[t]; ok {
			return amount * fl / tl, nil
		}
	}
	switch {
	case f == UnitFahrenheit && t == UnitCelsius:
		return (amount - 32) * 5 / 9, nil
	case f == UnitCelsius && t == UnitFahrenheit:
		return amount*9/5 + 32, nil
	}
	return 0, fmt.Errorf("cannot convert %q to %q", from, to)
}

// Counterpart returns the unit in the target system that pairs with unit
// (lb<->kg, oz<->g, gal<->l, F<->C). ok is false when no conversion applies.
func Counterpart(unit string, target UnitSystem) (string, bool) {
	u := NormalizeUnit(unit)
	if SystemOf(u) == target || SystemOf(u) == "" {
		return "", false
	}
	pairs := map[string]string{
		UnitPound: UnitKilogram, UnitKilogram: UnitPound,
		UnitOunce: UnitGram, UnitGram: UnitOunce,
		UnitGallon: UnitLiter, UnitLiter: UnitGallon,
		UnitQuart: UnitLiter, UnitMilliliter: UnitGallon,
		UnitFahrenheit: UnitCelsius, UnitCelsius: UnitFahrenheit,
	}
	p, ok := pairs[u]
	return p, ok
}

type precisionTier struct {
	below     float64 // tier applies to amounts < below; 0 means no upper bound
	increment float64
}

var precisionTable = map[models.IngredientType]map[string][]precisionTier{
	models.IngredientTypeGrain: {
		UnitPound:    {{0, 0.125}},
		UnitOunce:    {{0, 0.5}},
		UnitGram:     {{100, 5}, {0, 25}},
		UnitKilogram: {{0.1, 0.005}, {0, 0.025}},
	},
	models.IngredientTypeHop: {
		UnitOunce:    {{0, 0.25}},
		UnitPound:    {{0, 0.015625}},
		UnitGram:     {{20, 1}, {0, 5}},
		UnitKilogram: {{0, 0.001}},
	},
	models.IngredientTypeYeast: {
		UnitPackage:    {{0, 1}},
		UnitGram:       {{50, 1}, {0, 5}},
		UnitTeaspoon:   {{0, 0.25}},
		UnitTablespoon: {{0, 0.25}},
	},
	models.IngredientTypeOther: {
		UnitGram:       {{50, 1}, {0, 5}},
		UnitTeaspoon:   {{0, 0.25}},
		UnitTablespoon: {{0, 0.25}},
		UnitPackage:    {{0, 1}},
	},
}

const defaultIncrement = 0.01

// Increment returns the brewing-precision rounding granularity for an amount
func Increment(amount float64, ingredientType models.IngredientType, unit string) float64 {
	tiers := precisionTable[ingredientType][NormalizeUnit(unit)]
	for _, tier := range tiers {
		if tier.below == 0 || amount < tier.below {
			return tier.increment
		}
	}
	return defaultIncrement
}

// RoundToBrewingPrecision rounds an amount to a brewing-friendly increment.
// The result is a fixed point: rounding it again returns the same value.
// A positive amount never rounds to zero. The increment is chosen by unit
// alone, so the unit system argument is not consulted.
func (c *Converter) RoundToBrewingPrecision(amount float64, ingredientType models.IngredientType, _ UnitSystem, unit string) float64 {
	return RoundToBrewingPrecision(amount, ingredientType, unit)
}

// RoundToBrewingPrecision is the package-level form of Converter.RoundToBrewingPrecision
func RoundToBrewingPrecision(amount float64, ingredientType models.IngredientType, unit string) float64 {
	if amount <= 0 {
		return 0
	}
	inc := Increment(amount, ingredientType, unit)
	rounded := math.Round(amount/inc) * inc
	if rounded <= 0 {
		rounded = inc
	}
	// Tier boundaries are multiples of both neighbouring increments, so a value
	// rounded up into the next tier is already a multiple of that tier's increment.
	if next := Increment(rounded, ingredientType, unit); next != inc {
		rounded = math.Round(rounded/next) * next
	}
	return roundTo(rounded, 6)
}

// AmountsEqual reports whether two amounts are equal within rounding noise
func AmountsEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// DetectSystem reports which unit system a recipe is expressed in. Recipes
// mixing metric and imperial units, or carrying no system-specific unit at
// all, are reported as mixed.
func DetectSystem(recipe *models.Recipe) UnitSystem {
	var metric, imperial int
	count := func(unit string) {
		switch SystemOf(unit) {
		case UnitSystemMetric:
			metric++
		case UnitSystemImperial:
			imperial++
		}
	}
	count(recipe.BatchSizeUnit)
	for i := range recipe.Ingredients {
		count(recipe.Ingredients[i].Unit)
	}
	if recipe.MashTemperature != nil {
		count(recipe.MashTempUnit)
	}
	switch {
	case metric > 0 && imperial == 0:
		return UnitSystemMetric
	case imperial > 0 && metric == 0:
		return UnitSystemImperial
	}
	return UnitSystemMixed
}
