package optimizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ak/brewlab/internal/brewing"
	"github.com/ak/brewlab/internal/domain/models"
	"go.uber.org/zap"
)

// degenerateScale is applied when the current OG carries too few points to
// derive a ratio from
const degenerateScale = 2.0

// munichCandidates are tried in order when the recipe has no Munich Dark and
// the action node names no candidates parameter
var munichCandidates = []string{"Munich Dark", "Munich Malt", "Munich", "Munich Dark Malt"}

const munichDarkName = "Munich Dark"

// scaleBaseMalts proportionally scales every base malt so the recipe's OG
// lands on targetOG. Only the base malt share of the gravity points moves,
// so the ratio is corrected for specialty grain contributions.
func (b baseStrategy) scaleBaseMalts(targetOG float64, reason string) []models.ChangeRecord {
	malts := b.baseMalts()
	if len(malts) == 0 {
		return nil
	}

	currentPts := (b.rc.Metrics.OG - 1) * 1000
	targetPts := (targetOG - 1) * 1000

	ratio := degenerateScale
	if currentPts >= 1 {
		basePts := (b.calculateWith(func(ing *models.Ingredient) bool {
			return ing.Type != models.IngredientTypeGrain || ing.IsBaseMalt()
		}).OG - 1) * 1000
		if basePts > 0 {
			ratio = 1 + (targetPts-currentPts)/basePts
		} else {
			ratio = targetPts / currentPts
		}
	}
	if ratio <= 0 {
		return nil
	}

	var changes []models.ChangeRecord
	for _, ing := range malts {
		if ing.Amount <= 0 {
			continue
		}
		newAmount := b.round(ing, ing.Amount*ratio)
		if brewing.AmountsEqual(newAmount, ing.Amount) {
			continue
		}
		changes = append(changes, amountChange(ing, newAmount, reason))
	}
	return changes
}

// baseMaltOGOnly raises OG by scaling the existing base malts
type baseMaltOGOnly struct {
	baseStrategy
}

func (s *baseMaltOGOnly) Execute(_ context.Context, params Parameters) []models.ChangeRecord {
	target := s.targetFromStyle(models.MetricOG, params.Float("offset_percent", 0))
	if s.rc.Metrics.OG >= target {
		return nil
	}
	return s.scaleBaseMalts(target, fmt.Sprintf("Increase base malt to raise OG to target %.3f", target))
}

// baseMaltReduction lowers OG by scaling the existing base malts down
type baseMaltReduction struct {
	baseStrategy
}

func (s *baseMaltReduction) Execute(_ context.Context, params Parameters) []models.ChangeRecord {
	target := s.targetFromStyle(models.MetricOG, params.Float("offset_percent", 0))
	if s.rc.Metrics.OG <= target {
		return nil
	}
	return s.scaleBaseMalts(target, fmt.Sprintf("Reduce base malt to lower OG to target %.3f", target))
}

// abvTargeted moves ABV into range through the OG implied by the current
// apparent attenuation
type abvTargeted struct {
	baseStrategy
}

func (s *abvTargeted) Execute(_ context.Context, params Parameters) []models.ChangeRecord {
	if s.isMetricInRange(models.MetricABV) {
		return nil
	}
	targetABV := s.targetFromStyle(models.MetricABV, params.Float("offset_percent", 0))

	m := s.rc.Metrics
	attenuation := 0.75
	if m.OG > 1 && m.FG >= 1 && m.OG > m.FG {
		attenuation = (m.OG - m.FG) / (m.OG - 1)
	}
	targetOG := 1 + targetABV/(attenuation*131.25)

	return s.scaleBaseMalts(targetOG, fmt.Sprintf("Scale base malt to move ABV to target %.1f%%", targetABV))
}

// baseMaltOGAndSRM raises OG with Munich Dark so color rises alongside gravity
type baseMaltOGAndSRM struct {
	baseStrategy
}

func (s *baseMaltOGAndSRM) Execute(ctx context.Context, params Parameters) []models.ChangeRecord {
	target := s.targetFromStyle(models.MetricOG, params.Float("offset_percent", 0))
	if s.rc.Metrics.OG >= target {
		return nil
	}
	reason := fmt.Sprintf("Add Munich Dark to raise OG to target %.3f and deepen color", target)

	for i := range s.rc.Recipe.Ingredients {
		ing := &s.rc.Recipe.Ingredients[i]
		if strings.EqualFold(ing.Name, munichDarkName) && ing.Type == models.IngredientTypeGrain {
			return []models.ChangeRecord{amountChange(ing, s.round(ing, ing.Amount*1.25), reason)}
		}
	}

	lookup := s.rc.deps.Ingredients
	if lookup == nil {
		return nil
	}
	names := params.Strings("candidates")
	if len(names) == 0 {
		names = munichCandidates
	}
	var found *models.CatalogIngredient
	for _, name := range names {
		c, err := lookup.FindByName(ctx, name, true)
		if err != nil {
			s.rc.log.Warn("Ingredient lookup failed", zap.String("name", name), zap.Error(err))
			continue
		}
		if c != nil {
			found = c
			break
		}
	}
	if found == nil {
		return nil
	}

	unit := brewing.UnitPound
	if s.rc.UnitSystem() == brewing.UnitSystemMetric {
		unit = brewing.UnitKilogram
	}
	amount := s.munichAmount(found, (target-s.rc.Metrics.OG)*1000, unit)

	ing := found.ToRecipeIngredient(amount, unit)
	ing.Type = models.IngredientTypeGrain
	ing.Amount = s.round(&ing, amount)
	return []models.ChangeRecord{{
		Type:           models.ChangeIngredientAdded,
		IngredientName: ing.Name,
		IngredientData: &ing,
		Amount:         ing.Amount,
		Unit:           ing.Unit,
		ChangeReason:   reason,
	}}
}

// munichAmount estimates the weight that closes a gravity point gap
func (s *baseMaltOGAndSRM) munichAmount(c *models.CatalogIngredient, gapPts float64, unit string) float64 {
	conv := s.rc.deps.Units
	gallons, err := conv.Convert(s.rc.Recipe.BatchSize, s.rc.Recipe.BatchSizeUnit, brewing.UnitGallon)
	if err != nil || gallons <= 0 {
		gallons = 5
	}
	ppg := 35.0
	if c.Potential != nil && *c.Potential > 0 {
		ppg = brewing.PPG(*c.Potential)
	}
	eff := s.rc.Recipe.Efficiency
	if eff <= 0 {
		eff = 75
	}
	lb := gapPts * gallons / (ppg * eff / 100)
	if lb <= 0 {
		lb = 1
	}
	if unit == brewing.UnitPound {
		return lb
	}
	kg, err := conv.Convert(lb, brewing.UnitPound, unit)
	if err != nil {
		return lb
	}
	return kg
}
