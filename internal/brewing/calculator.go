package brewing

import (
	"math"

	"github.com/ak/brewlab/internal/domain/models"
)

const (
	defaultEfficiency  = 75.0
	defaultAttenuation = 75.0
	whirlpoolMinutes   = 15.0
	whirlpoolFactor    = 0.5
	abvFactor          = 131.25
)

// Calculator computes OG, FG, ABV, IBU and SRM from a recipe's ingredient list.
// It is deterministic and side-effect free.
type Calculator struct {
	units *Converter
}

// NewCalculator creates a metrics calculator
func NewCalculator() *Calculator {
	return &Calculator{units: NewConverter()}
}

// Calculate returns the metrics for the recipe in its current state
func (c *Calculator) Calculate(recipe *models.Recipe) models.Metrics {
	gallons, err := c.units.Convert(recipe.BatchSize, recipe.BatchSizeUnit, UnitGallon)
	if err != nil || gallons <= 0 {
		return models.Metrics{OG: 1, FG: 1}
	}

	efficiency := recipe.Efficiency
	if efficiency <= 0 {
		efficiency = defaultEfficiency
	}

	var points, mcu float64
	attenuation := 0.0
	for i := range recipe.Ingredients {
		ing := &recipe.Ingredients[i]
		switch ing.Type {
		case models.IngredientTypeGrain:
			lb, err := c.units.Convert(ing.Amount, ing.Unit, UnitPound)
			if err != nil {
				continue
			}
			if ing.Potential != nil {
				eff := efficiency / 100
				if ing.GrainType == models.GrainTypeExtract || ing.GrainType == models.GrainTypeSugar {
					eff = 1
				}
				points += lb * PPG(*ing.Potential) * eff
			}
			if ing.Color != nil {
				mcu += lb * *ing.Color / gallons
			}
		case models.IngredientTypeYeast:
			if ing.Attenuation != nil && *ing.Attenuation > attenuation {
				attenuation = *ing.Attenuation
			}
		}
	}
	if attenuation <= 0 {
		attenuation = defaultAttenuation
	}

	ogPoints := points / gallons
	fgPoints := ogPoints * (1 - attenuation/100)
	og := 1 + ogPoints/1000
	fg := 1 + fgPoints/1000

	return models.Metrics{
		OG:  roundTo(og, 3),
		FG:  roundTo(fg, 3),
		ABV: roundTo((og-fg)*abvFactor, 1),
		IBU: roundTo(c.ibu(recipe, og, gallons), 1),
		SRM: roundTo(srm(mcu), 1),
	}
}

// ibu uses the Tinseth utilization model
func (c *Calculator) ibu(recipe *models.Recipe, og, gallons float64) float64 {
	bigness := 1.65 * math.Pow(0.000125, og-1)
	total := 0.0
	for i := range recipe.Ingredients {
		ing := &recipe.Ingredients[i]
		if ing.Type != models.IngredientTypeHop || ing.AlphaAcid == nil {
			continue
		}
		oz, err := c.units.Convert(ing.Amount, ing.Unit, UnitOunce)
		if err != nil {
			continue
		}
		minutes, factor := 0.0, 1.0
		switch ing.Use {
		case models.HopUseDryHop:
			continue
		case models.HopUseWhirlpool:
			minutes, factor = whirlpoolMinutes, whirlpoolFactor
			if ing.Time != nil && *ing.Time < whirlpoolMinutes {
				minutes = *ing.Time
			}
		default:
			minutes = recipe.BoilTime
			if ing.Time != nil {
				minutes = *ing.Time
			}
		}
		utilization := bigness * (1 - math.Exp(-0.04*minutes)) / 4.15 * factor
		total += utilization * (*ing.AlphaAcid / 100) * oz * 7490 / gallons
	}
	return total
}

// srm uses the Morey equation
func srm(mcu float64) float64 {
	if mcu <= 0 {
		return 0
	}
	return 1.4922 * math.Pow(mcu, 0.6859)
}

// PPG converts a potential expressed either as specific gravity (1.037) or
// points per pound per gallon (37) to points per pound per gallon.
func PPG(potential float64) float64 {
	if potential < 2 {
		return (potential - 1) * 1000
	}
	return potential
}
