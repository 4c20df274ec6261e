package optimizer

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ak/brewlab/internal/brewing"
	"github.com/ak/brewlab/internal/domain/models"
)

// ErrUnknownCondition is matched by every UnknownConditionError
var ErrUnknownCondition = errors.New("unknown condition")

// UnknownConditionError reports a condition name with no registered predicate
type UnknownConditionError struct {
	Name string
}

func (e *UnknownConditionError) Error() string {
	return fmt.Sprintf("unknown condition: %s", e.Name)
}

func (e *UnknownConditionError) Is(target error) bool {
	return target == ErrUnknownCondition
}

// Condition names a predicate or value a workflow can branch on
type Condition string

const (
	ConditionAllMetricsInStyle    Condition = "all_metrics_in_style"
	ConditionOGInRange            Condition = "og_in_range"
	ConditionFGInRange            Condition = "fg_in_range"
	ConditionABVInRange           Condition = "abv_in_range"
	ConditionIBUInRange           Condition = "ibu_in_range"
	ConditionSRMInRange           Condition = "srm_in_range"
	ConditionOGTooLow             Condition = "og_too_low"
	ConditionOGTooHigh            Condition = "og_too_high"
	ConditionFGTooLow             Condition = "fg_too_low"
	ConditionFGTooHigh            Condition = "fg_too_high"
	ConditionABVTooLow            Condition = "abv_too_low"
	ConditionABVTooHigh           Condition = "abv_too_high"
	ConditionIBUTooLow            Condition = "ibu_too_low"
	ConditionIBUTooHigh           Condition = "ibu_too_high"
	ConditionSRMTooLow            Condition = "srm_too_low"
	ConditionSRMTooHigh           Condition = "srm_too_high"
	ConditionAmountsNormalized    Condition = "amounts_normalized"
	ConditionRecipeIsMetric       Condition = "recipe_is_metric"
	ConditionRecipeIsImperial     Condition = "recipe_is_imperial"
	ConditionTargetSystemIsMetric Condition = "target_system_is_metric"
	ConditionHasBaseMalt          Condition = "has_base_malt"
	ConditionHasCaramelMalt       Condition = "has_caramel_malt"
	ConditionHasYeast             Condition = "has_yeast"
	ConditionOGStatus             Condition = "og_status"
	ConditionFGStatus             Condition = "fg_status"
	ConditionABVStatus            Condition = "abv_status"
	ConditionIBUStatus            Condition = "ibu_status"
	ConditionSRMStatus            Condition = "srm_status"
	ConditionUnitSystem           Condition = "unit_system"
	ConditionTargetUnitSystem     Condition = "target_unit_system"
)

// Values returned by the *_status conditions
const (
	StatusLow     = "low"
	StatusInRange = "in_range"
	StatusHigh    = "high"
)

type predicate func(rc *RecipeContext) bool

type valueFunc func(rc *RecipeContext) string

var predicates = map[Condition]predicate{
	ConditionAllMetricsInStyle: func(rc *RecipeContext) bool {
		for _, m := range models.AllMetrics {
			if !rc.metricInRange(m) {
				return false
			}
		}
		return true
	},
	ConditionOGInRange:  inRange(models.MetricOG),
	ConditionFGInRange:  inRange(models.MetricFG),
	ConditionABVInRange: inRange(models.MetricABV),
	ConditionIBUInRange: inRange(models.MetricIBU),
	ConditionSRMInRange: inRange(models.MetricSRM),

	ConditionOGTooLow:   hasStatus(models.MetricOG, StatusLow),
	ConditionOGTooHigh:  hasStatus(models.MetricOG, StatusHigh),
	ConditionFGTooLow:   hasStatus(models.MetricFG, StatusLow),
	ConditionFGTooHigh:  hasStatus(models.MetricFG, StatusHigh),
	ConditionABVTooLow:  hasStatus(models.MetricABV, StatusLow),
	ConditionABVTooHigh: hasStatus(models.MetricABV, StatusHigh),
	ConditionIBUTooLow:  hasStatus(models.MetricIBU, StatusLow),
	ConditionIBUTooHigh: hasStatus(models.MetricIBU, StatusHigh),
	ConditionSRMTooLow:  hasStatus(models.MetricSRM, StatusLow),
	ConditionSRMTooHigh: hasStatus(models.MetricSRM, StatusHigh),

	ConditionAmountsNormalized: func(rc *RecipeContext) bool {
		for i := range rc.Recipe.Ingredients {
			if needs, _ := rc.needsNormalization(&rc.Recipe.Ingredients[i]); needs {
				return false
			}
		}
		return true
	},
	ConditionRecipeIsMetric: func(rc *RecipeContext) bool {
		return rc.UnitSystem() == brewing.UnitSystemMetric
	},
	ConditionRecipeIsImperial: func(rc *RecipeContext) bool {
		return rc.UnitSystem() == brewing.UnitSystemImperial
	},
	ConditionTargetSystemIsMetric: func(rc *RecipeContext) bool {
		return rc.TargetUnitSystem == brewing.UnitSystemMetric
	},
	ConditionHasBaseMalt: func(rc *RecipeContext) bool {
		for i := range rc.Recipe.Ingredients {
			if rc.Recipe.Ingredients[i].IsBaseMalt() {
				return true
			}
		}
		return false
	},
	ConditionHasCaramelMalt: func(rc *RecipeContext) bool {
		return len(caramelMalts(rc.Recipe)) > 0
	},
	ConditionHasYeast: func(rc *RecipeContext) bool {
		for i := range rc.Recipe.Ingredients {
			if rc.Recipe.Ingredients[i].Type == models.IngredientTypeYeast {
				return true
			}
		}
		return false
	},
}

var values = map[Condition]valueFunc{
	ConditionOGStatus:  statusOf(models.MetricOG),
	ConditionFGStatus:  statusOf(models.MetricFG),
	ConditionABVStatus: statusOf(models.MetricABV),
	ConditionIBUStatus: statusOf(models.MetricIBU),
	ConditionSRMStatus: statusOf(models.MetricSRM),
	ConditionUnitSystem: func(rc *RecipeContext) string {
		return string(rc.UnitSystem())
	},
	ConditionTargetUnitSystem: func(rc *RecipeContext) string {
		return string(rc.TargetUnitSystem)
	},
}

// IsKnownCondition reports whether name is a registered condition
func IsKnownCondition(name string) bool {
	c := Condition(name)
	if _, ok := predicates[c]; ok {
		return true
	}
	_, ok := values[c]
	return ok
}

// IsBooleanCondition reports whether name is a registered boolean predicate
func IsBooleanCondition(name string) bool {
	_, ok := predicates[Condition(name)]
	return ok
}

// Conditions lists every registered condition name, sorted
func Conditions() []string {
	names := make([]string, 0, len(predicates)+len(values))
	for c := range predicates {
		names = append(names, string(c))
	}
	for c := range values {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}

// EvaluateCondition evaluates a boolean predicate against the current state.
// Predicates never mutate the context.
func (rc *RecipeContext) EvaluateCondition(name string) (bool, error) {
	p, ok := predicates[Condition(name)]
	if !ok {
		if _, isValue := values[Condition(name)]; isValue {
			return false, fmt.Errorf("condition %s is not boolean", name)
		}
		return false, &UnknownConditionError{Name: name}
	}
	return p(rc), nil
}

// ConditionValue evaluates any condition to a string. Boolean predicates
// evaluate to "true" or "false".
func (rc *RecipeContext) ConditionValue(name string) (string, error) {
	if v, ok := values[Condition(name)]; ok {
		return v(rc), nil
	}
	if p, ok := predicates[Condition(name)]; ok {
		return strconv.FormatBool(p(rc)), nil
	}
	return "", &UnknownConditionError{Name: name}
}

// MetricStatus returns low, in_range or high for a metric. A metric without a
// style guideline is always in range.
func (rc *RecipeContext) MetricStatus(metric string) string {
	r, ok := rc.Style.Range(metric)
	if !ok {
		return StatusInRange
	}
	v, _ := rc.Metrics.Value(metric)
	switch {
	case v < r.Min:
		return StatusLow
	case v > r.Max:
		return StatusHigh
	}
	return StatusInRange
}

func (rc *RecipeContext) metricInRange(metric string) bool {
	return rc.MetricStatus(metric) == StatusInRange
}

// needsNormalization is the single rounding check shared by the
// amounts_normalized condition and the normalize_amounts strategy
func (rc *RecipeContext) needsNormalization(ing *models.Ingredient) (bool, float64) {
	rounded := rc.deps.Units.RoundToBrewingPrecision(ing.Amount, ing.Type, rc.UnitSystem(), ing.Unit)
	return !brewing.AmountsEqual(rounded, ing.Amount), rounded
}

func inRange(metric string) predicate {
	return func(rc *RecipeContext) bool {
		return rc.metricInRange(metric)
	}
}

func hasStatus(metric, status string) predicate {
	return func(rc *RecipeContext) bool {
		return rc.MetricStatus(metric) == status
	}
}

func statusOf(metric string) valueFunc {
	return func(rc *RecipeContext) string {
		return rc.MetricStatus(metric)
	}
}

func caramelMalts(r *models.Recipe) []*models.Ingredient {
	var out []*models.Ingredient
	for i := range r.Ingredients {
		ing := &r.Ingredients[i]
		if ing.Type != models.IngredientTypeGrain {
			continue
		}
		name := strings.ToLower(ing.Name)
		if ing.GrainType == models.GrainTypeCaramelCrystal || strings.Contains(name, "caramel") || strings.Contains(name, "crystal") {
			out = append(out, ing)
		}
	}
	return out
}
