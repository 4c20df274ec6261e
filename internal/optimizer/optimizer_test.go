package optimizer_test

import (
	"context"
	"testing"

	"github.com/ak/brewlab/internal/brewing"
	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/infrastructure/repositories"
	"github.com/ak/brewlab/internal/optimizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grain(name, grainType string, lb, ppg, color float64) models.Ingredient {
	return models.Ingredient{Name: name, Type: models.IngredientTypeGrain, Amount: lb, Unit: "lb",
		GrainType: grainType, Potential: models.Float(ppg), Color: models.Float(color)}
}

// weakPale has an OG of 1.040
func weakPale() *models.Recipe {
	return &models.Recipe{
		Name:          "Weak Pale",
		BatchSize:     5,
		BatchSizeUnit: "gal",
		Efficiency:    75,
		BoilTime:      60,
		Ingredients: []models.Ingredient{
			grain("Pale Malt (2 Row) US", models.GrainTypeBaseMalt, 7, 37, 2),
			grain("Caramel/Crystal Malt 40L", models.GrainTypeCaramelCrystal, 0.25, 34, 40),
			{Name: "Cascade", Type: models.IngredientTypeHop, Amount: 1, Unit: "oz",
				AlphaAcid: models.Float(5.5), Use: models.HopUseBoil, Time: models.Float(60)},
			{Name: "Safale US-05", Type: models.IngredientTypeYeast, Amount: 1, Unit: "pkg", Attenuation: models.Float(81)},
		},
	}
}

func ogOnly(lo, hi float64) *models.StyleGuidelines {
	return &models.StyleGuidelines{Ranges: map[string]models.Range{models.MetricOG: {Min: lo, Max: hi}}}
}

func americanIPA() *models.StyleGuidelines {
	for _, s := range repositories.SeedStyles() {
		if s.Code == "21A" {
			return &s.Guidelines
		}
	}
	panic("21A missing from seed styles")
}

func seededDeps(t *testing.T) optimizer.Dependencies {
	t.Helper()
	p := repositories.NewMemoryProvider()
	_, err := repositories.Seed(context.Background(), p, nil)
	require.NoError(t, err)
	return optimizer.DefaultDependencies(p.Ingredient, nil)
}

func TestNewRecipeContextAssignsIDs(t *testing.T) {
	r := weakPale()
	rc := optimizer.NewRecipeContext(r, nil, optimizer.Dependencies{})

	seen := map[string]bool{}
	for _, ing := range rc.Recipe.Ingredients {
		require.NotEmpty(t, ing.ID)
		assert.False(t, seen[ing.ID])
		seen[ing.ID] = true
	}
	assert.InDelta(t, 1.040, rc.Metrics.OG, 1e-9)
}

func TestMetricStatus(t *testing.T) {
	rc := optimizer.NewRecipeContext(weakPale(), ogOnly(1.045, 1.065), optimizer.Dependencies{})

	assert.Equal(t, optimizer.StatusLow, rc.MetricStatus(models.MetricOG))
	assert.Equal(t, optimizer.StatusInRange, rc.MetricStatus(models.MetricIBU), "no guideline means in range")

	rc = optimizer.NewRecipeContext(weakPale(), ogOnly(1.030, 1.035), optimizer.Dependencies{})
	assert.Equal(t, optimizer.StatusHigh, rc.MetricStatus(models.MetricOG))

	rc = optimizer.NewRecipeContext(weakPale(), ogOnly(1.040, 1.050), optimizer.Dependencies{})
	assert.Equal(t, optimizer.StatusInRange, rc.MetricStatus(models.MetricOG), "bounds are inclusive")
}

func TestEvaluateCondition(t *testing.T) {
	rc := optimizer.NewRecipeContext(weakPale(), ogOnly(1.045, 1.065), optimizer.Dependencies{})

	tests := []struct {
		name string
		want bool
	}{
		{"og_too_low", true},
		{"og_too_high", false},
		{"og_in_range", false},
		{"ibu_in_range", true},
		{"all_metrics_in_style", false},
		{"has_base_malt", true},
		{"has_caramel_malt", true},
		{"has_yeast", true},
		{"recipe_is_imperial", true},
		{"recipe_is_metric", false},
		{"target_system_is_metric", false},
		{"amounts_normalized", true},
	}
	for _, tt := range tests {
		got, err := rc.EvaluateCondition(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestEvaluateConditionErrors(t *testing.T) {
	rc := optimizer.NewRecipeContext(weakPale(), nil, optimizer.Dependencies{})

	_, err := rc.EvaluateCondition("is_delicious")
	assert.ErrorIs(t, err, optimizer.ErrUnknownCondition)

	_, err = rc.EvaluateCondition("og_status")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, optimizer.ErrUnknownCondition)

	_, err = rc.ConditionValue("is_delicious")
	assert.ErrorIs(t, err, optimizer.ErrUnknownCondition)
}

func TestConditionValue(t *testing.T) {
	rc := optimizer.NewRecipeContext(weakPale(), ogOnly(1.045, 1.065), optimizer.Dependencies{},
		optimizer.WithTargetUnitSystem(brewing.UnitSystemMetric))

	v, err := rc.ConditionValue("og_status")
	require.NoError(t, err)
	assert.Equal(t, optimizer.StatusLow, v)

	v, err = rc.ConditionValue("unit_system")
	require.NoError(t, err)
	assert.Equal(t, "imperial", v)

	v, err = rc.ConditionValue("target_unit_system")
	require.NoError(t, err)
	assert.Equal(t, "metric", v)

	v, err = rc.ConditionValue("og_too_low")
	require.NoError(t, err)
	assert.Equal(t, "true", v)
}

func TestRegistries(t *testing.T) {
	assert.True(t, optimizer.IsKnownCondition("srm_status"))
	assert.False(t, optimizer.IsBooleanCondition("srm_status"))
	assert.True(t, optimizer.IsBooleanCondition("fg_too_high"))
	assert.Contains(t, optimizer.Conditions(), "amounts_normalized")
	assert.IsIncreasing(t, optimizer.Conditions())

	assert.True(t, optimizer.IsKnownStrategy("base_malt_og_only"))
	assert.False(t, optimizer.IsKnownStrategy("add_more_hops"))
	assert.Len(t, optimizer.Strategies(), 13)
}

func TestApplyChangesRefreshesMetrics(t *testing.T) {
	deps := optimizer.DefaultDependencies(nil, nil)
	rc := optimizer.NewRecipeContext(weakPale(), nil, deps)
	before := rc.Metrics

	base := rc.Recipe.Ingredients[0]
	rc.ApplyChanges([]models.ChangeRecord{{
		Type:         models.ChangeIngredientModified,
		IngredientID: base.ID,
		Field:        models.FieldAmount,
		CurrentValue: base.Amount,
		NewValue:     9.0,
		ChangeReason: "test",
	}})

	assert.Greater(t, rc.Metrics.OG, before.OG)
	assert.Equal(t, deps.Calculator.Calculate(rc.Recipe), rc.Metrics)
	assert.Len(t, rc.Changes(), 1)
}

func TestApplyChangesSkipsMissingIngredient(t *testing.T) {
	rc := optimizer.NewRecipeContext(weakPale(), nil, optimizer.Dependencies{})
	rc.ApplyChanges([]models.ChangeRecord{{
		Type:         models.ChangeIngredientModified,
		IngredientID: "gone",
		Field:        models.FieldAmount,
		NewValue:     1.0,
	}})
	assert.Empty(t, rc.Changes())
}

func TestUnknownStrategyIsNoop(t *testing.T) {
	rc := optimizer.NewRecipeContext(weakPale(), nil, optimizer.Dependencies{})
	assert.Empty(t, rc.ExecuteStrategy(context.Background(), "add_more_hops", nil))
	assert.Empty(t, rc.Changes())
}

func TestBaseMaltOGOnlyRaisesOGIntoRange(t *testing.T) {
	rc := optimizer.NewRecipeContext(weakPale(), ogOnly(1.045, 1.065), optimizer.Dependencies{})
	require.InDelta(t, 1.040, rc.Metrics.OG, 1e-9)

	changes := rc.ExecuteStrategy(context.Background(), "base_malt_og_only", nil)
	require.Len(t, changes, 1)
	assert.Equal(t, models.ChangeIngredientModified, changes[0].Type)
	assert.Equal(t, "Pale Malt (2 Row) US", changes[0].IngredientName)
	assert.Equal(t, "base_malt_og_only", changes[0].Strategy)
	assert.Equal(t, 9.75, changes[0].NewValue)

	assert.GreaterOrEqual(t, rc.Metrics.OG, 1.045)
	assert.LessOrEqual(t, rc.Metrics.OG, 1.065)
	ok, err := rc.EvaluateCondition("all_metrics_in_style")
	require.NoError(t, err)
	assert.True(t, ok, "metrics without a guideline do not block")

	assert.Empty(t, rc.ExecuteStrategy(context.Background(), "base_malt_og_only", nil), "already at target")
}

func TestBaseMaltReduction(t *testing.T) {
	rc := optimizer.NewRecipeContext(weakPale(), ogOnly(1.028, 1.034), optimizer.Dependencies{})
	changes := rc.ExecuteStrategy(context.Background(), "base_malt_reduction", nil)
	require.NotEmpty(t, changes)
	assert.Less(t, changes[0].NewValue.(float64), 7.0)
	assert.Equal(t, optimizer.StatusInRange, rc.MetricStatus(models.MetricOG))
}

func TestBaseMaltOGAndSRMAddsMunich(t *testing.T) {
	rc := optimizer.NewRecipeContext(weakPale(), ogOnly(1.045, 1.065), seededDeps(t))

	changes := rc.ExecuteStrategy(context.Background(), "base_malt_og_and_srm", nil)
	require.Len(t, changes, 1)
	assert.Equal(t, models.ChangeIngredientAdded, changes[0].Type)
	require.NotNil(t, changes[0].IngredientData)
	assert.Equal(t, "Munich Dark", changes[0].IngredientData.Name)
	assert.Equal(t, "lb", changes[0].Unit)
	assert.Equal(t, 3.0, changes[0].Amount)
	assert.NotEmpty(t, changes[0].IngredientID)

	idx := rc.Recipe.IndexByName("Munich Dark")
	require.GreaterOrEqual(t, idx, 0)
	assert.Greater(t, rc.Metrics.OG, 1.040)
}

func TestBaseMaltOGAndSRMWithoutCatalog(t *testing.T) {
	rc := optimizer.NewRecipeContext(weakPale(), ogOnly(1.045, 1.065), optimizer.Dependencies{})
	assert.Empty(t, rc.ExecuteStrategy(context.Background(), "base_malt_og_and_srm", nil))
}

func TestHopIBUAdjustment(t *testing.T) {
	r := weakPale()
	r.Ingredients[0].Amount = 10 // OG ~1.057
	rc := optimizer.NewRecipeContext(r, americanIPA(), optimizer.Dependencies{})
	require.Equal(t, optimizer.StatusLow, rc.MetricStatus(models.MetricIBU))

	changes := rc.ExecuteStrategy(context.Background(), "hop_ibu_adjustment", nil)
	require.Len(t, changes, 1)
	assert.Equal(t, "Cascade", changes[0].IngredientName)
	assert.Equal(t, optimizer.StatusInRange, rc.MetricStatus(models.MetricIBU))
}

func TestNormalizeAmountsReachesFixedPoint(t *testing.T) {
	r := weakPale()
	r.Ingredients[0].Amount = 7.33
	r.Ingredients[2].Amount = 1.1
	rc := optimizer.NewRecipeContext(r, nil, optimizer.Dependencies{})

	ok, err := rc.EvaluateCondition("amounts_normalized")
	require.NoError(t, err)
	require.False(t, ok)

	changes := rc.ExecuteStrategy(context.Background(), "normalize_amounts", nil)
	assert.Len(t, changes, 2)
	assert.Equal(t, 7.375, rc.Recipe.Ingredients[0].Amount)
	assert.Equal(t, 1.0, rc.Recipe.Ingredients[2].Amount)

	ok, err = rc.EvaluateCondition("amounts_normalized")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, rc.ExecuteStrategy(context.Background(), "normalize_amounts", nil))
}

func TestCaramelMaltLighter(t *testing.T) {
	r := weakPale()
	r.Ingredients[0].Amount = 10
	r.Ingredients[1] = grain("Caramel/Crystal Malt 120L", models.GrainTypeCaramelCrystal, 2, 33, 120)
	rc := optimizer.NewRecipeContext(r, americanIPA(), seededDeps(t))
	require.Equal(t, optimizer.StatusHigh, rc.MetricStatus(models.MetricSRM))
	srmBefore := rc.Metrics.SRM

	assert.Empty(t, rc.ExecuteStrategy(context.Background(), "caramel_malt_darker", nil), "darker only acts on low SRM")

	changes := rc.ExecuteStrategy(context.Background(), "caramel_malt_lighter", nil)
	require.Len(t, changes, 1)
	ch := changes[0]
	assert.Equal(t, models.ChangeIngredientSubstituted, ch.Type)
	assert.Equal(t, "Caramel/Crystal Malt 120L", ch.OldIngredientData.Name)
	assert.Equal(t, "Caramel/Crystal Malt 80L", ch.NewIngredientData.Name)
	assert.Equal(t, 2.0, ch.Amount)
	assert.GreaterOrEqual(t, ch.ConfidenceScore, optimizer.MinSubstitutionConfidence)
	assert.NotEmpty(t, ch.NewIngredientID)

	assert.Equal(t, -1, rc.Recipe.IndexByName("Caramel/Crystal Malt 120L"))
	assert.Less(t, rc.Metrics.SRM, srmBefore)
}

func TestYeastSubstitution(t *testing.T) {
	r := weakPale()
	r.Ingredients[3] = models.Ingredient{Name: "English Ale WLP002", Type: models.IngredientTypeYeast, Amount: 1, Unit: "pkg",
		Attenuation: models.Float(67.5), YeastType: "ale", Manufacturer: "White Labs",
		MinTemperature: models.Float(65), MaxTemperature: models.Float(68)}
	rc := optimizer.NewRecipeContext(r, nil, seededDeps(t))

	assert.Empty(t, rc.ExecuteStrategy(context.Background(), "yeast_substitution", nil), "FG has no guideline")

	changes := rc.ExecuteStrategy(context.Background(), "yeast_substitution", optimizer.Parameters{"target_attenuation": 80})
	require.Len(t, changes, 1)
	assert.Equal(t, "Nottingham Ale", changes[0].NewIngredientData.Name)
	assert.InDelta(t, 0.9, changes[0].ConfidenceScore, 1e-9)
	assert.GreaterOrEqual(t, rc.Recipe.IndexByName("Nottingham Ale"), 0)
}

func TestColorMatchScore(t *testing.T) {
	assert.Equal(t, 1.0, optimizer.ColorMatchScore(40, 40))
	assert.InDelta(t, 0.5, optimizer.ColorMatchScore(40, 60), 1e-9)
	assert.Equal(t, 0.0, optimizer.ColorMatchScore(40, 100))
	assert.Equal(t, 0.0, optimizer.ColorMatchScore(0, 10))
}

func TestYeastMatchScore(t *testing.T) {
	want := optimizer.YeastProfile{Attenuation: 75, MinTemperature: models.Float(60), MaxTemperature: models.Float(70),
		YeastType: "ale", Manufacturer: "Wyeast"}

	perfect := &models.CatalogIngredient{Attenuation: models.Float(75), MinTemperature: models.Float(55), MaxTemperature: models.Float(75),
		YeastType: "Ale", Manufacturer: "wyeast"}
	assert.InDelta(t, 1.0, optimizer.YeastMatchScore(want, perfect), 1e-9)

	lager := &models.CatalogIngredient{Attenuation: models.Float(95), MinTemperature: models.Float(45), MaxTemperature: models.Float(55),
		YeastType: "lager"}
	assert.Equal(t, 0.0, optimizer.YeastMatchScore(want, lager))
	assert.Equal(t, 0.0, optimizer.YeastMatchScore(want, nil))
}

func imperialRecipe() *models.Recipe {
	return &models.Recipe{
		BatchSize:       5,
		BatchSizeUnit:   "gal",
		Efficiency:      75,
		BoilTime:        60,
		MashTemperature: models.Float(152),
		MashTempUnit:    "F",
		Ingredients: []models.Ingredient{
			grain("Pale Malt (2 Row) US", models.GrainTypeBaseMalt, 10, 37, 2),
			{Name: "Cascade", Type: models.IngredientTypeHop, Amount: 1, Unit: "oz",
				AlphaAcid: models.Float(5.5), Use: models.HopUseBoil, Time: models.Float(60)},
			{Name: "Safale US-05", Type: models.IngredientTypeYeast, Amount: 1, Unit: "pkg"},
		},
	}
}

func TestConvertRecipeUnitsToMetric(t *testing.T) {
	rc := optimizer.NewRecipeContext(imperialRecipe(), nil, optimizer.Dependencies{},
		optimizer.WithTargetUnitSystem(brewing.UnitSystemMetric))

	changes := rc.ExecuteStrategy(context.Background(), "convert_recipe_units", nil)

	types := make([]models.ChangeType, 0, len(changes))
	for _, ch := range changes {
		types = append(types, ch.Type)
	}
	assert.Equal(t, []models.ChangeType{
		models.ChangeBatchSizeConverted,
		models.ChangeIngredientConverted, models.ChangeIngredientNormalized,
		models.ChangeIngredientConverted, models.ChangeIngredientNormalized,
		models.ChangeTemperatureConverted,
	}, types)

	r := rc.Recipe
	assert.Equal(t, 18.93, r.BatchSize)
	assert.Equal(t, "l", r.BatchSizeUnit)
	assert.Equal(t, "kg", r.Ingredients[0].Unit)
	assert.InDelta(t, 4.525, r.Ingredients[0].Amount, 1e-9)
	assert.Equal(t, "g", r.Ingredients[1].Unit)
	assert.InDelta(t, 30.0, r.Ingredients[1].Amount, 1e-9)
	assert.Equal(t, "pkg", r.Ingredients[2].Unit)
	assert.Equal(t, "C", r.MashTempUnit)
	assert.InDelta(t, 66.7, *r.MashTemperature, 1e-9)
	assert.Equal(t, brewing.UnitSystemMetric, rc.UnitSystem())

	ok, err := rc.EvaluateCondition("amounts_normalized")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConvertRecipeUnitsRoundTrip(t *testing.T) {
	rc := optimizer.NewRecipeContext(imperialRecipe(), nil, optimizer.Dependencies{})
	ctx := context.Background()

	assert.Empty(t, rc.ExecuteStrategy(ctx, "convert_recipe_units", nil), "no target system")

	rc.ExecuteStrategy(ctx, "convert_recipe_units", optimizer.Parameters{"target_system": "metric"})
	rc.ExecuteStrategy(ctx, "convert_recipe_units", optimizer.Parameters{"target_system": "imperial"})

	r := rc.Recipe
	assert.Equal(t, 5.0, r.BatchSize)
	assert.Equal(t, "gal", r.BatchSizeUnit)
	assert.Equal(t, 10.0, r.Ingredients[0].Amount)
	assert.Equal(t, "lb", r.Ingredients[0].Unit)
	assert.Equal(t, 1.0, r.Ingredients[1].Amount)
	assert.InDelta(t, 152, *r.MashTemperature, 0.2)

	assert.Empty(t, rc.ExecuteStrategy(ctx, "convert_recipe_units", optimizer.Parameters{"target_system": "imperial"}),
		"already imperial")
}

func TestParameters(t *testing.T) {
	p := optimizer.Parameters{"offset": 5, "ratio": 0.5, "name": "x", "list": []any{"a", 1, "b"}}
	assert.Equal(t, 5.0, p.Float("offset", 0))
	assert.Equal(t, 0.5, p.Float("ratio", 0))
	assert.Equal(t, 7.0, p.Float("name", 7))
	assert.Equal(t, "x", p.String("name", "d"))
	assert.Equal(t, "d", p.String("missing", "d"))
	assert.Equal(t, []string{"a", "b"}, p.Strings("list"))

	var nilParams optimizer.Parameters
	assert.Equal(t, 1.0, nilParams.Float("x", 1))
}

func abvOnly(lo, hi float64) *models.StyleGuidelines {
	return &models.StyleGuidelines{Ranges: map[string]models.Range{models.MetricABV: {Min: lo, Max: hi}}}
}

func TestABVTargeted(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi float64
		raise  bool
	}{
		{"below range", 5.5, 7.5, true},
		{"above range", 2.0, 3.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := optimizer.NewRecipeContext(weakPale(), abvOnly(tt.lo, tt.hi), optimizer.Dependencies{})
			before := rc.Metrics.ABV
			require.InDelta(t, 4.3, before, 0.1)

			changes := rc.ExecuteStrategy(context.Background(), "abv_targeted", nil)
			require.Len(t, changes, 1)
			assert.Equal(t, "Pale Malt (2 Row) US", changes[0].IngredientName)
			assert.Equal(t, "abv_targeted", changes[0].Strategy)
			if tt.raise {
				assert.Greater(t, changes[0].NewValue.(float64), 7.0)
			} else {
				assert.Less(t, changes[0].NewValue.(float64), 7.0)
			}

			assert.GreaterOrEqual(t, rc.Metrics.ABV, tt.lo)
			assert.LessOrEqual(t, rc.Metrics.ABV, tt.hi)
			assert.Equal(t, optimizer.StatusInRange, rc.MetricStatus(models.MetricABV))
			assert.Empty(t, rc.ExecuteStrategy(context.Background(), "abv_targeted", nil), "already in range")
		})
	}
}

// twoPaleMalts holds two base malt slots that share a name
func twoPaleMalts() *models.Recipe {
	r := weakPale()
	r.Ingredients = append(r.Ingredients, grain("Pale Malt (2 Row) US", models.GrainTypeBaseMalt, 3, 37, 2))
	return r
}

func TestScalingKeepsSameNamedSlotsApart(t *testing.T) {
	rc := optimizer.NewRecipeContext(twoPaleMalts(), ogOnly(1.065, 1.075), optimizer.Dependencies{})
	first, second := rc.Recipe.Ingredients[0], rc.Recipe.Ingredients[4]
	require.Equal(t, first.Name, second.Name)
	require.NotEqual(t, first.ID, second.ID)

	changes := rc.ExecuteStrategy(context.Background(), "base_malt_og_only", nil)
	require.Len(t, changes, 2)
	assert.Equal(t, first.ID, changes[0].IngredientID)
	assert.Equal(t, 7.0, changes[0].CurrentValue)
	assert.Equal(t, second.ID, changes[1].IngredientID)
	assert.Equal(t, 3.0, changes[1].CurrentValue)

	big, small := changes[0].NewValue.(float64), changes[1].NewValue.(float64)
	assert.Greater(t, big, 7.0)
	assert.Greater(t, small, 3.0)
	assert.Less(t, small, big)
	assert.Equal(t, big, rc.Recipe.Ingredients[0].Amount)
	assert.Equal(t, small, rc.Recipe.Ingredients[4].Amount)
	assert.InDelta(t, big/7, small/3, 0.05, "both slots scale by the same ratio up to rounding")
	assert.Equal(t, optimizer.StatusInRange, rc.MetricStatus(models.MetricOG))
}

func TestApplyChangesRemovesByID(t *testing.T) {
	rc := optimizer.NewRecipeContext(twoPaleMalts(), nil, optimizer.Dependencies{})
	before := rc.Metrics.OG
	second := rc.Recipe.Ingredients[4]

	rc.ApplyChanges([]models.ChangeRecord{{
		Type:           models.ChangeIngredientRemoved,
		IngredientID:   second.ID,
		IngredientName: second.Name,
		ChangeReason:   "test",
	}})

	require.Len(t, rc.Recipe.Ingredients, 4)
	assert.Equal(t, -1, rc.Recipe.IndexByID(second.ID))
	assert.Equal(t, 7.0, rc.Recipe.Ingredients[0].Amount, "the same-named slot stays")
	assert.Less(t, rc.Metrics.OG, before)
	assert.Len(t, rc.Changes(), 1)

	rc.ApplyChanges([]models.ChangeRecord{{
		Type:           models.ChangeIngredientRemoved,
		IngredientID:   second.ID,
		IngredientName: second.Name,
	}})
	assert.Len(t, rc.Recipe.Ingredients, 4, "a stale id does not fall back to the name")
	assert.Len(t, rc.Changes(), 1)
}
