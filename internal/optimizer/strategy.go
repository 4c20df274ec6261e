package optimizer

import (
	"context"
	"sort"
	"strings"

	"github.com/ak/brewlab/internal/domain/models"
)

// StrategyName identifies a registered optimization strategy
type StrategyName string

const (
	StrategyBaseMaltOGOnly         StrategyName = "base_malt_og_only"
	StrategyBaseMaltOGAndSRM       StrategyName = "base_malt_og_and_srm"
	StrategyBaseMaltReduction      StrategyName = "base_malt_reduction"
	StrategyNormalizeAmounts       StrategyName = "normalize_amounts"
	StrategyABVTargeted            StrategyName = "abv_targeted"
	StrategyHopIBUAdjustment       StrategyName = "hop_ibu_adjustment"
	StrategyCaramelMaltLighter     StrategyName = "caramel_malt_lighter"
	StrategyCaramelMaltDarker      StrategyName = "caramel_malt_darker"
	StrategyYeastSubstitution      StrategyName = "yeast_substitution"
	StrategyConvertBatchSize       StrategyName = "convert_batch_size"
	StrategyConvertIngredientUnits StrategyName = "convert_ingredient_units"
	StrategyConvertTemperature     StrategyName = "convert_temperature"
	StrategyConvertRecipeUnits     StrategyName = "convert_recipe_units"
)

// Strategy computes the changes that move a recipe toward a goal.
// Strategies never mutate the recipe; the context applies what they return.
type Strategy interface {
	Execute(ctx context.Context, params Parameters) []models.ChangeRecord
}

type strategyFactory func(b baseStrategy) Strategy

var strategies = map[StrategyName]strategyFactory{
	StrategyBaseMaltOGOnly:         func(b baseStrategy) Strategy { return &baseMaltOGOnly{b} },
	StrategyBaseMaltOGAndSRM:       func(b baseStrategy) Strategy { return &baseMaltOGAndSRM{b} },
	StrategyBaseMaltReduction:      func(b baseStrategy) Strategy { return &baseMaltReduction{b} },
	StrategyNormalizeAmounts:       func(b baseStrategy) Strategy { return &normalizeAmounts{b} },
	StrategyABVTargeted:            func(b baseStrategy) Strategy { return &abvTargeted{b} },
	StrategyHopIBUAdjustment:       func(b baseStrategy) Strategy { return &hopIBUAdjustment{b} },
	StrategyCaramelMaltLighter:     func(b baseStrategy) Strategy { return &caramelSwap{baseStrategy: b, darker: false} },
	StrategyCaramelMaltDarker:      func(b baseStrategy) Strategy { return &caramelSwap{baseStrategy: b, darker: true} },
	StrategyYeastSubstitution:      func(b baseStrategy) Strategy { return &yeastSubstitution{b} },
	StrategyConvertBatchSize:       func(b baseStrategy) Strategy { return &convertBatchSize{b} },
	StrategyConvertIngredientUnits: func(b baseStrategy) Strategy { return &convertIngredientUnits{b} },
	StrategyConvertTemperature:     func(b baseStrategy) Strategy { return &convertTemperature{b} },
	StrategyConvertRecipeUnits:     func(b baseStrategy) Strategy { return &convertRecipeUnits{b} },
}

// IsKnownStrategy reports whether name is a registered strategy
func IsKnownStrategy(name string) bool {
	_, ok := strategies[StrategyName(name)]
	return ok
}

// Strategies lists every registered strategy name, sorted
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for s := range strategies {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// baseStrategy carries the helpers every strategy shares
type baseStrategy struct {
	rc *RecipeContext
}

func (b baseStrategy) findIngredientsByType(t models.IngredientType) []*models.Ingredient {
	var out []*models.Ingredient
	for i := range b.rc.Recipe.Ingredients {
		if b.rc.Recipe.Ingredients[i].Type == t {
			out = append(out, &b.rc.Recipe.Ingredients[i])
		}
	}
	return out
}

// findIngredientsByNameContains matches case-insensitively against any part
func (b baseStrategy) findIngredientsByNameContains(parts ...string) []*models.Ingredient {
	var out []*models.Ingredient
	for i := range b.rc.Recipe.Ingredients {
		name := strings.ToLower(b.rc.Recipe.Ingredients[i].Name)
		for _, p := range parts {
			if p != "" && strings.Contains(name, strings.ToLower(p)) {
				out = append(out, &b.rc.Recipe.Ingredients[i])
				break
			}
		}
	}
	return out
}

func (b baseStrategy) baseMalts() []*models.Ingredient {
	var out []*models.Ingredient
	for i := range b.rc.Recipe.Ingredients {
		if b.rc.Recipe.Ingredients[i].IsBaseMalt() {
			out = append(out, &b.rc.Recipe.Ingredients[i])
		}
	}
	return out
}

func (b baseStrategy) styleRange(metric string) (models.Range, bool) {
	return b.rc.Style.Range(metric)
}

func (b baseStrategy) isMetricInRange(metric string) bool {
	return b.rc.metricInRange(metric)
}

// targetFromStyle returns the range midpoint, or with a non-zero offset
// max + width*offset/100. Without a guideline the current value is the target.
func (b baseStrategy) targetFromStyle(metric string, offsetPercent float64) float64 {
	r, ok := b.styleRange(metric)
	if !ok {
		v, _ := b.rc.Metrics.Value(metric)
		return v
	}
	if offsetPercent == 0 {
		return r.Midpoint()
	}
	return r.Max + (r.Max-r.Min)*offsetPercent/100
}

func (b baseStrategy) round(ing *models.Ingredient, amount float64) float64 {
	return b.rc.deps.Units.RoundToBrewingPrecision(amount, ing.Type, b.rc.UnitSystem(), ing.Unit)
}

// calculateWith computes metrics over a scratch copy of the recipe holding
// only the ingredients keep accepts
func (b baseStrategy) calculateWith(keep func(ing *models.Ingredient) bool) models.Metrics {
	scratch := b.rc.Recipe.Clone()
	scratch.Ingredients = scratch.Ingredients[:0]
	for i := range b.rc.Recipe.Ingredients {
		if keep(&b.rc.Recipe.Ingredients[i]) {
			scratch.Ingredients = append(scratch.Ingredients, b.rc.Recipe.Ingredients[i].Clone())
		}
	}
	return b.rc.deps.Calculator.Calculate(&scratch)
}

func amountChange(ing *models.Ingredient, newAmount float64, reason string) models.ChangeRecord {
	return models.ChangeRecord{
		Type:           models.ChangeIngredientModified,
		IngredientID:   ing.ID,
		IngredientName: ing.Name,
		Field:          models.FieldAmount,
		CurrentValue:   ing.Amount,
		NewValue:       newAmount,
		CurrentUnit:    ing.Unit,
		NewUnit:        ing.Unit,
		ChangeReason:   reason,
	}
}
