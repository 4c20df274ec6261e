// Package optimizer holds the recipe evaluation context, the named condition
// predicates and the library of optimization strategies that workflows
// dispatch to.
package optimizer

import (
	"context"
	"fmt"

	"github.com/ak/brewlab/internal/brewing"
	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MetricsCalculator computes recipe metrics. Implementations must be deterministic.
type MetricsCalculator interface {
	Calculate(recipe *models.Recipe) models.Metrics
}

// UnitConverter converts amounts between units and rounds to brewing precision
type UnitConverter interface {
	Convert(amount float64, from, to string) (float64, error)
	RoundToBrewingPrecision(amount float64, ingredientType models.IngredientType, unitSystem brewing.UnitSystem, unit string) float64
}

// IngredientLookup is the part of the ingredient repository strategies use
type IngredientLookup interface {
	FindByName(ctx context.Context, name string, exact bool) (*models.CatalogIngredient, error)
	FindSimilar(ctx context.Context, criteria models.SimilarityCriteria) ([]models.ScoredIngredient, error)
}

// Dependencies are the collaborators a RecipeContext consumes
type Dependencies struct {
	Calculator  MetricsCalculator
	Units       UnitConverter
	Ingredients IngredientLookup // optional; substitution strategies are no-ops without it
	Logger      *logger.Logger
}

// DefaultDependencies wires the built-in calculator and converter
func DefaultDependencies(ingredients IngredientLookup, log *logger.Logger) Dependencies {
	return Dependencies{
		Calculator:  brewing.NewCalculator(),
		Units:       brewing.NewConverter(),
		Ingredients: ingredients,
		Logger:      log,
	}
}

// RecipeContext is the mutable evaluation environment for one workflow run
// over one recipe. It is not safe for concurrent use.
type RecipeContext struct {
	Recipe           *models.Recipe
	Metrics          models.Metrics
	Style            *models.StyleGuidelines
	TargetUnitSystem brewing.UnitSystem

	changes []models.ChangeRecord
	deps    Dependencies
	log     *logger.Logger
}

// ContextOption configures a RecipeContext
type ContextOption func(rc *RecipeContext)

// WithTargetUnitSystem sets the unit system conversion strategies convert to
func WithTargetUnitSystem(system brewing.UnitSystem) ContextOption {
	return func(rc *RecipeContext) {
		rc.TargetUnitSystem = system
	}
}

// NewRecipeContext wraps recipe (mutated in place by later strategy
// executions) and computes its initial metrics. Ingredients without a slot
// handle get one assigned.
func NewRecipeContext(recipe *models.Recipe, style *models.StyleGuidelines, deps Dependencies, opts ...ContextOption) *RecipeContext {
	if deps.Calculator == nil {
		deps.Calculator = brewing.NewCalculator()
	}
	if deps.Units == nil {
		deps.Units = brewing.NewConverter()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	rc := &RecipeContext{
		Recipe: recipe,
		Style:  style,
		deps:   deps,
		log:    log.WithComponent("recipe_context"),
	}
	for _, opt := range opts {
		opt(rc)
	}

	for i := range recipe.Ingredients {
		if recipe.Ingredients[i].ID == "" {
			recipe.Ingredients[i].ID = uuid.NewString()
		}
	}

	rc.refreshMetrics()
	return rc
}

// Changes returns the changes applied so far, in execution order
func (rc *RecipeContext) Changes() []models.ChangeRecord {
	out := make([]models.ChangeRecord, len(rc.changes))
	copy(out, rc.changes)
	return out
}

// UnitSystem returns the unit system the recipe is currently expressed in
func (rc *RecipeContext) UnitSystem() brewing.UnitSystem {
	return brewing.DetectSystem(rc.Recipe)
}

// ExecuteStrategy runs the named strategy, applies the returned changes and
// returns them. Unknown strategy names yield no changes.
func (rc *RecipeContext) ExecuteStrategy(ctx context.Context, name string, params Parameters) []models.ChangeRecord {
	factory, ok := strategies[StrategyName(name)]
	if !ok {
		rc.log.Warn("Unknown strategy requested, skipping", zap.String("strategy", name))
		return nil
	}

	changes := factory(baseStrategy{rc: rc}).Execute(ctx, params)
	for i := range changes {
		changes[i].Strategy = name
	}
	rc.ApplyChanges(changes)
	return changes
}

// ApplyChanges applies change records to the recipe, appends the applied
// ones to the change log and recomputes metrics. Records referencing an
// ingredient that no longer exists are logged and skipped.
func (rc *RecipeContext) ApplyChanges(changes []models.ChangeRecord) {
	if len(changes) == 0 {
		return
	}
	for i := range changes {
		if err := rc.apply(&changes[i]); err != nil {
			rc.log.Warn("Skipping change",
				zap.String("type", string(changes[i].Type)),
				zap.String("ingredient", changes[i].IngredientName),
				zap.Error(err))
			continue
		}
		rc.changes = append(rc.changes, changes[i])
	}
	rc.refreshMetrics()
}

func (rc *RecipeContext) refreshMetrics() {
	rc.Metrics = rc.deps.Calculator.Calculate(rc.Recipe)
}

func (rc *RecipeContext) apply(ch *models.ChangeRecord) error {
	r := rc.Recipe
	switch ch.Type {
	case models.ChangeIngredientModified:
		idx, err := rc.locate(ch.IngredientID, ch.IngredientName)
		if err != nil {
			return err
		}
		return setField(&r.Ingredients[idx], ch.Field, ch.NewValue)

	case models.ChangeIngredientConverted, models.ChangeIngredientNormalized:
		idx, err := rc.locate(ch.IngredientID, ch.IngredientName)
		if err != nil {
			return err
		}
		amount, ok := toFloat(ch.NewValue)
		if !ok {
			return fmt.Errorf("new_value %v is not numeric", ch.NewValue)
		}
		r.Ingredients[idx].Amount = amount
		if ch.NewUnit != "" {
			r.Ingredients[idx].Unit = ch.NewUnit
		}

	case models.ChangeIngredientAdded:
		if ch.IngredientData == nil {
			return fmt.Errorf("ingredient_data missing")
		}
		ing := ch.IngredientData.Clone()
		if ing.ID == "" {
			ing.ID = uuid.NewString()
			ch.IngredientData.ID = ing.ID
		}
		ch.IngredientID = ing.ID
		r.Ingredients = append(r.Ingredients, ing)

	case models.ChangeIngredientRemoved:
		idx, err := rc.locate(ch.IngredientID, ch.IngredientName)
		if err != nil {
			return err
		}
		r.Ingredients = append(r.Ingredients[:idx], r.Ingredients[idx+1:]...)

	case models.ChangeIngredientSubstituted:
		if ch.NewIngredientData == nil {
			return fmt.Errorf("new_ingredient_data missing")
		}
		oldName := ""
		if ch.OldIngredientData != nil {
			oldName = ch.OldIngredientData.Name
		}
		idx, err := rc.locate(ch.OldIngredientID, oldName)
		if err != nil {
			return err
		}
		ing := ch.NewIngredientData.Clone()
		ing.ID = uuid.NewString()
		ing.Amount = ch.Amount
		ing.Unit = ch.Unit
		ing.Use = ch.Use
		ing.Time = nil
		if ch.Time != nil {
			ing.Time = models.Float(*ch.Time)
		}
		r.Ingredients = append(r.Ingredients[:idx], r.Ingredients[idx+1:]...)
		r.Ingredients = append(r.Ingredients, ing)
		ch.NewIngredientData.ID = ing.ID
		ch.NewIngredientID = ing.ID

	case models.ChangeBatchSizeConverted:
		v, ok := toFloat(ch.NewValue)
		if !ok {
			return fmt.Errorf("new_value %v is not numeric", ch.NewValue)
		}
		r.BatchSize = v
		r.BatchSizeUnit = ch.NewUnit

	case models.ChangeTemperatureConverted:
		v, ok := toFloat(ch.NewValue)
		if !ok {
			return fmt.Errorf("new_value %v is not numeric", ch.NewValue)
		}
		r.MashTemperature = models.Float(v)
		r.MashTempUnit = ch.NewUnit

	default:
		return fmt.Errorf("unsupported change type %q", ch.Type)
	}
	return nil
}

// locate finds an ingredient by slot handle, falling back to the first exact name match
func (rc *RecipeContext) locate(id, name string) (int, error) {
	if idx := rc.Recipe.IndexByID(id); idx >= 0 {
		return idx, nil
	}
	if id == "" {
		if idx := rc.Recipe.IndexByName(name); idx >= 0 {
			return idx, nil
		}
	}
	return -1, fmt.Errorf("ingredient %q (%s) not found", name, id)
}

func setField(ing *models.Ingredient, field string, value any) error {
	switch field {
	case models.FieldUnit:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("unit value %v is not a string", value)
		}
		ing.Unit = s
		return nil
	case models.FieldUse:
		s, ok := value.(string)
		if !ok {
			if u, isUse := value.(models.HopUse); isUse {
				s, ok = string(u), true
			}
		}
		if !ok {
			return fmt.Errorf("use value %v is not a string", value)
		}
		ing.Use = models.HopUse(s)
		return nil
	}

	v, ok := toFloat(value)
	if !ok {
		return fmt.Errorf("%s value %v is not numeric", field, value)
	}
	switch field {
	case models.FieldAmount:
		ing.Amount = v
	case models.FieldTime:
		ing.Time = models.Float(v)
	case models.FieldColor:
		ing.Color = models.Float(v)
	case models.FieldAlphaAcid:
		ing.AlphaAcid = models.Float(v)
	default:
		return fmt.Errorf("unsupported field %q", field)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
