package optimizer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ak/brewlab/internal/domain/models"
	"go.uber.org/zap"
)

const (
	// MinSubstitutionConfidence is the score a candidate must reach to be used
	MinSubstitutionConfidence = 0.3

	candidateLimit = 20

	lighterColorFactor = 0.6
	darkerColorFactor  = 1.5

	// attenuation difference, in percentage points, that scores zero
	attenuationSpread = 20.0
)

// Yeast match weights. They sum to 1.
const (
	weightAttenuation  = 0.4
	weightTemperature  = 0.3
	weightYeastType    = 0.2
	weightManufacturer = 0.1
)

type candidate struct {
	ingredient *models.CatalogIngredient
	score      float64
}

func rank(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
}

func (b baseStrategy) similar(ctx context.Context, criteria models.SimilarityCriteria) []models.ScoredIngredient {
	lookup := b.rc.deps.Ingredients
	if lookup == nil {
		return nil
	}
	found, err := lookup.FindSimilar(ctx, criteria)
	if err != nil {
		b.rc.log.Warn("Substitution candidate search failed", zap.Error(err))
		return nil
	}
	return found
}

func substitution(old *models.Ingredient, best candidate, reason string) models.ChangeRecord {
	oldData := old.Clone()
	newData := best.ingredient.ToRecipeIngredient(old.Amount, old.Unit)
	return models.ChangeRecord{
		Type:               models.ChangeIngredientSubstituted,
		IngredientID:       old.ID,
		IngredientName:     old.Name,
		OldIngredientID:    old.ID,
		OldIngredientData:  &oldData,
		NewIngredientData:  &newData,
		Amount:             old.Amount,
		Unit:               old.Unit,
		Use:                old.Use,
		Time:               old.Time,
		SubstitutionReason: reason,
		ConfidenceScore:    best.score,
		ChangeReason:       fmt.Sprintf("Substitute %s with %s", old.Name, newData.Name),
	}
}

// caramelSwap replaces caramel malts with a lighter or darker crystal malt
// when SRM sits on the wrong side of the style range
type caramelSwap struct {
	baseStrategy
	darker bool
}

func (s *caramelSwap) Execute(ctx context.Context, params Parameters) []models.ChangeRecord {
	want, factor, direction := StatusHigh, lighterColorFactor, "lighter"
	if s.darker {
		want, factor, direction = StatusLow, darkerColorFactor, "darker"
	}
	if s.rc.MetricStatus(models.MetricSRM) != want {
		return nil
	}
	factor = params.Float("color_factor", factor)

	var changes []models.ChangeRecord
	taken := map[string]bool{}
	for _, ing := range caramelMalts(s.rc.Recipe) {
		if ing.Color == nil || *ing.Color <= 0 {
			continue
		}
		current := *ing.Color
		target := current * factor

		var cands []candidate
		for _, c := range s.similar(ctx, models.SimilarityCriteria{
			Type:         models.IngredientTypeGrain,
			GrainType:    models.GrainTypeCaramelCrystal,
			ExcludeNames: []string{ing.Name},
			Limit:        candidateLimit,
		}) {
			if c.Ingredient == nil || c.Ingredient.Color == nil || taken[c.Ingredient.Name] {
				continue
			}
			color := *c.Ingredient.Color
			if (s.darker && color <= current) || (!s.darker && color >= current) {
				continue
			}
			cands = append(cands, candidate{ingredient: c.Ingredient, score: ColorMatchScore(target, color)})
		}
		if len(cands) == 0 {
			continue
		}
		rank(cands)
		best := cands[0]
		if best.score < MinSubstitutionConfidence {
			continue
		}
		taken[best.ingredient.Name] = true
		changes = append(changes, substitution(ing, best,
			fmt.Sprintf("Use a %s caramel malt (%.0f°L instead of %.0f°L) to move SRM into range",
				direction, *best.ingredient.Color, current)))
	}
	return changes
}

// ColorMatchScore is 1 when color equals target and falls linearly to 0 at
// twice the target distance
func ColorMatchScore(target, color float64) float64 {
	if target <= 0 {
		return 0
	}
	return clamp01(1 - math.Abs(color-target)/target)
}

// YeastProfile describes the yeast a substitution should resemble
type YeastProfile struct {
	Attenuation    float64
	MinTemperature *float64
	MaxTemperature *float64
	YeastType      string
	Manufacturer   string
}

// YeastMatchScore weighs attenuation closeness, fermentation temperature
// overlap, yeast type and manufacturer. Each component lies in [0,1].
func YeastMatchScore(want YeastProfile, cand *models.CatalogIngredient) float64 {
	if cand == nil {
		return 0
	}
	var attenuation float64
	if cand.Attenuation != nil {
		attenuation = clamp01(1 - math.Abs(*cand.Attenuation-want.Attenuation)/attenuationSpread)
	}

	var temperature float64
	if want.MinTemperature != nil && want.MaxTemperature != nil &&
		cand.MinTemperature != nil && cand.MaxTemperature != nil {
		lo := math.Max(*want.MinTemperature, *cand.MinTemperature)
		hi := math.Min(*want.MaxTemperature, *cand.MaxTemperature)
		width := *want.MaxTemperature - *want.MinTemperature
		switch {
		case width <= 0 && lo <= hi:
			temperature = 1
		case width > 0:
			temperature = clamp01((hi - lo) / width)
		}
	}

	var yeastType float64
	if want.YeastType != "" && strings.EqualFold(want.YeastType, cand.YeastType) {
		yeastType = 1
	}
	var manufacturer float64
	if want.Manufacturer != "" && strings.EqualFold(want.Manufacturer, cand.Manufacturer) {
		manufacturer = 1
	}

	return weightAttenuation*attenuation +
		weightTemperature*temperature +
		weightYeastType*yeastType +
		weightManufacturer*manufacturer
}

// yeastSubstitution swaps the yeast for one whose attenuation lands FG in range.
// A target_attenuation parameter forces a swap regardless of FG.
type yeastSubstitution struct {
	baseStrategy
}

func (s *yeastSubstitution) Execute(ctx context.Context, params Parameters) []models.ChangeRecord {
	targetAttenuation := params.Float("target_attenuation", 0)
	if targetAttenuation <= 0 {
		if s.isMetricInRange(models.MetricFG) {
			return nil
		}
		og := s.rc.Metrics.OG
		if og <= 1 {
			return nil
		}
		fg := s.targetFromStyle(models.MetricFG, 0)
		targetAttenuation = (og - fg) / (og - 1) * 100
	}

	var changes []models.ChangeRecord
	for _, ing := range s.findIngredientsByType(models.IngredientTypeYeast) {
		want := YeastProfile{
			Attenuation:    targetAttenuation,
			MinTemperature: ing.MinTemperature,
			MaxTemperature: ing.MaxTemperature,
			YeastType:      ing.YeastType,
			Manufacturer:   ing.Manufacturer,
		}
		var cands []candidate
		for _, c := range s.similar(ctx, models.SimilarityCriteria{
			Type:         models.IngredientTypeYeast,
			ExcludeNames: []string{ing.Name},
			Limit:        candidateLimit,
		}) {
			if c.Ingredient == nil {
				continue
			}
			cands = append(cands, candidate{ingredient: c.Ingredient, score: YeastMatchScore(want, c.Ingredient)})
		}
		if len(cands) == 0 {
			continue
		}
		rank(cands)
		best := cands[0]
		if best.score < MinSubstitutionConfidence {
			continue
		}
		changes = append(changes, substitution(ing, best,
			fmt.Sprintf("Closer match to target attenuation %.0f%%", targetAttenuation)))
	}
	return changes
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
