package optimizer

import (
	"context"
	"fmt"
	"math"

	"github.com/ak/brewlab/internal/brewing"
	"github.com/ak/brewlab/internal/domain/models"
)

// targetSystem resolves the system to convert to: the target_system parameter
// wins over the context's target
func (b baseStrategy) targetSystem(params Parameters) (brewing.UnitSystem, bool) {
	if s, ok := brewing.ParseUnitSystem(params.String("target_system", "")); ok {
		return s, true
	}
	if b.rc.TargetUnitSystem == brewing.UnitSystemMetric || b.rc.TargetUnitSystem == brewing.UnitSystemImperial {
		return b.rc.TargetUnitSystem, true
	}
	return "", false
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Batch size and mash temperature have no brewing-precision tier, so their
// conversions round in place (volume 2 dp, temperature 1 dp) and always
// yield a single converted record.
type convertBatchSize struct {
	baseStrategy
}

func (s *convertBatchSize) Execute(_ context.Context, params Parameters) []models.ChangeRecord {
	target, ok := s.targetSystem(params)
	if !ok {
		return nil
	}
	r := s.rc.Recipe
	to, ok := brewing.Counterpart(r.BatchSizeUnit, target)
	if !ok {
		return nil
	}
	v, err := s.rc.deps.Units.Convert(r.BatchSize, r.BatchSizeUnit, to)
	if err != nil {
		return nil
	}
	v = round(v, 2)
	return []models.ChangeRecord{{
		Type:         models.ChangeBatchSizeConverted,
		CurrentValue: r.BatchSize,
		NewValue:     v,
		CurrentUnit:  r.BatchSizeUnit,
		NewUnit:      to,
		ChangeReason: fmt.Sprintf("Batch size converted to %s", target),
	}}
}

type convertTemperature struct {
	baseStrategy
}

func (s *convertTemperature) Execute(_ context.Context, params Parameters) []models.ChangeRecord {
	target, ok := s.targetSystem(params)
	if !ok {
		return nil
	}
	r := s.rc.Recipe
	if r.MashTemperature == nil {
		return nil
	}
	to, ok := brewing.Counterpart(r.MashTempUnit, target)
	if !ok {
		return nil
	}
	v, err := s.rc.deps.Units.Convert(*r.MashTemperature, r.MashTempUnit, to)
	if err != nil {
		return nil
	}
	return []models.ChangeRecord{{
		Type:         models.ChangeTemperatureConverted,
		CurrentValue: *r.MashTemperature,
		NewValue:     round(v, 1),
		CurrentUnit:  r.MashTempUnit,
		NewUnit:      to,
		ChangeReason: fmt.Sprintf("Mash temperature converted to %s", to),
	}}
}

// convertIngredientUnits converts each ingredient and re-normalizes it. A
// conversion whose value the rounding changes yields a converted record
// followed by a normalized record.
type convertIngredientUnits struct {
	baseStrategy
}

func (s *convertIngredientUnits) Execute(_ context.Context, params Parameters) []models.ChangeRecord {
	target, ok := s.targetSystem(params)
	if !ok {
		return nil
	}
	conv := s.rc.deps.Units

	var changes []models.ChangeRecord
	for i := range s.rc.Recipe.Ingredients {
		ing := &s.rc.Recipe.Ingredients[i]
		to, ok := brewing.Counterpart(ing.Unit, target)
		if !ok || ing.Amount <= 0 {
			continue
		}
		converted, err := conv.Convert(ing.Amount, ing.Unit, to)
		if err != nil {
			continue
		}
		converted = round(converted, 6)
		changes = append(changes, models.ChangeRecord{
			Type:           models.ChangeIngredientConverted,
			IngredientID:   ing.ID,
			IngredientName: ing.Name,
			Field:          models.FieldAmount,
			CurrentValue:   ing.Amount,
			NewValue:       converted,
			CurrentUnit:    ing.Unit,
			NewUnit:        to,
			ChangeReason:   fmt.Sprintf("Converted %s to %s", ing.Unit, to),
		})

		normalized := conv.RoundToBrewingPrecision(converted, ing.Type, target, to)
		if brewing.AmountsEqual(normalized, converted) {
			continue
		}
		changes = append(changes, models.ChangeRecord{
			Type:           models.ChangeIngredientNormalized,
			IngredientID:   ing.ID,
			IngredientName: ing.Name,
			Field:          models.FieldAmount,
			CurrentValue:   converted,
			NewValue:       normalized,
			CurrentUnit:    to,
			NewUnit:        to,
			ChangeReason:   fmt.Sprintf("Amount normalized to brewing precision (%g %s)", normalized, to),
		})
	}
	return changes
}

// convertRecipeUnits converts batch size, ingredients and mash temperature in one action
type convertRecipeUnits struct {
	baseStrategy
}

func (s *convertRecipeUnits) Execute(ctx context.Context, params Parameters) []models.ChangeRecord {
	var changes []models.ChangeRecord
	changes = append(changes, (&convertBatchSize{s.baseStrategy}).Execute(ctx, params)...)
	changes = append(changes, (&convertIngredientUnits{s.baseStrategy}).Execute(ctx, params)...)
	changes = append(changes, (&convertTemperature{s.baseStrategy}).Execute(ctx, params)...)
	return changes
}
