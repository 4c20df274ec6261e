package optimizer

import (
	"context"
	"fmt"

	"github.com/ak/brewlab/internal/brewing"
	"github.com/ak/brewlab/internal/domain/models"
)

// minHopScale bounds how far hop_ibu_adjustment may cut boil hops in one pass
const minHopScale = 0.25

// normalizeAmounts rounds every amount to brewing precision. It shares its
// rounding check with the amounts_normalized condition.
type normalizeAmounts struct {
	baseStrategy
}

func (s *normalizeAmounts) Execute(_ context.Context, _ Parameters) []models.ChangeRecord {
	var changes []models.ChangeRecord
	for i := range s.rc.Recipe.Ingredients {
		ing := &s.rc.Recipe.Ingredients[i]
		needs, rounded := s.rc.needsNormalization(ing)
		if !needs {
			continue
		}
		changes = append(changes, amountChange(ing, rounded,
			fmt.Sprintf("Amount normalized to brewing precision (%g %s)", rounded, ing.Unit)))
	}
	return changes
}

// hopIBUAdjustment scales boil hop additions toward the IBU target. Tinseth
// IBUs are linear in hop weight so the boil share scales exactly.
type hopIBUAdjustment struct {
	baseStrategy
}

func isBoilHop(ing *models.Ingredient) bool {
	return ing.Type == models.IngredientTypeHop &&
		(ing.Use == "" || ing.Use == models.HopUseBoil) &&
		ing.AlphaAcid != nil && ing.Amount > 0
}

func (s *hopIBUAdjustment) Execute(_ context.Context, params Parameters) []models.ChangeRecord {
	if s.isMetricInRange(models.MetricIBU) {
		return nil
	}
	target := s.targetFromStyle(models.MetricIBU, params.Float("offset_percent", 0))

	var hops []*models.Ingredient
	for _, ing := range s.findIngredientsByType(models.IngredientTypeHop) {
		if isBoilHop(ing) {
			hops = append(hops, ing)
		}
	}
	if len(hops) == 0 {
		return nil
	}

	boilIBU := s.calculateWith(func(ing *models.Ingredient) bool {
		return ing.Type != models.IngredientTypeHop || isBoilHop(ing)
	}).IBU
	if boilIBU <= 0 {
		return nil
	}
	otherIBU := s.rc.Metrics.IBU - boilIBU

	ratio := (target - otherIBU) / boilIBU
	if ratio < minHopScale {
		ratio = minHopScale
	}

	reason := fmt.Sprintf("Adjust boil hops to move IBU to target %.1f", target)
	var changes []models.ChangeRecord
	for _, ing := range hops {
		newAmount := s.round(ing, ing.Amount*ratio)
		if brewing.AmountsEqual(newAmount, ing.Amount) {
			continue
		}
		changes = append(changes, amountChange(ing, newAmount, reason))
	}
	return changes
}
