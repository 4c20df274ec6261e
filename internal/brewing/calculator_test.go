package brewing

import (
	"testing"

	"github.com/ak/brewlab/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func paleAle() *models.Recipe {
	return &models.Recipe{
		Name:          "Pale Ale",
		BatchSize:     5,
		BatchSizeUnit: "gal",
		Efficiency:    75,
		BoilTime:      60,
		Ingredients: []models.Ingredient{
			{Name: "Pale 2-Row", Type: models.IngredientTypeGrain, Amount: 10, Unit: "lb",
				GrainType: models.GrainTypeBaseMalt, Potential: models.Float(37), Color: models.Float(2)},
			{Name: "Caramel 40L", Type: models.IngredientTypeGrain, Amount: 1, Unit: "lb",
				GrainType: models.GrainTypeCaramelCrystal, Potential: models.Float(1.034), Color: models.Float(40)},
			{Name: "Cascade", Type: models.IngredientTypeHop, Amount: 1, Unit: "oz",
				AlphaAcid: models.Float(5.5), Use: models.HopUseBoil, Time: models.Float(60)},
			{Name: "Cascade", Type: models.IngredientTypeHop, Amount: 1, Unit: "oz",
				AlphaAcid: models.Float(5.5), Use: models.HopUseDryHop},
			{Name: "US-05", Type: models.IngredientTypeYeast, Amount: 1, Unit: "pkg", Attenuation: models.Float(77)},
		},
	}
}

func TestCalculate(t *testing.T) {
	m := NewCalculator().Calculate(paleAle())

	// (10*37 + 1*34) * 0.75 / 5 = 60.6 points
	assert.InDelta(t, 1.061, m.OG, 1e-9)
	assert.InDelta(t, 1.014, m.FG, 1e-9)
	assert.InDelta(t, 6.1, m.ABV, 1e-9)
	assert.Greater(t, m.IBU, 15.0)
	assert.Less(t, m.IBU, 25.0)
	assert.Greater(t, m.SRM, 6.0)
	assert.Less(t, m.SRM, 10.0)
}

func TestCalculateIsDeterministic(t *testing.T) {
	c := NewCalculator()
	r := paleAle()
	assert.Equal(t, c.Calculate(r), c.Calculate(r))
}

func TestCalculateUnitIndependent(t *testing.T) {
	c := NewCalculator()
	imperial := paleAle()

	metric := paleAle()
	conv := NewConverter()
	metric.BatchSize, _ = conv.Convert(metric.BatchSize, "gal", "l")
	metric.BatchSizeUnit = "l"
	for i := range metric.Ingredients {
		ing := &metric.Ingredients[i]
		switch ing.Unit {
		case "lb":
			ing.Amount, _ = conv.Convert(ing.Amount, "lb", "kg")
			ing.Unit = "kg"
		case "oz":
			ing.Amount, _ = conv.Convert(ing.Amount, "oz", "g")
			ing.Unit = "g"
		}
	}

	assert.Equal(t, c.Calculate(imperial), c.Calculate(metric))
}

func TestCalculateDryHopAddsNoBitterness(t *testing.T) {
	c := NewCalculator()
	base := c.Calculate(paleAle())

	r := paleAle()
	r.Ingredients[3].Amount = 4
	assert.Equal(t, base.IBU, c.Calculate(r).IBU)
}

func TestCalculateDegenerateBatch(t *testing.T) {
	r := paleAle()
	r.BatchSize = 0
	m := NewCalculator().Calculate(r)
	assert.Equal(t, 1.0, m.OG)
	assert.Equal(t, 0.0, m.ABV)
}

func TestCalculateDefaultAttenuation(t *testing.T) {
	r := paleAle()
	r.Ingredients = r.Ingredients[:4]
	m := NewCalculator().Calculate(r)
	// 60.6 * 0.25 = 15.15 points
	assert.InDelta(t, 1.015, m.FG, 1e-9)
}

func TestPPG(t *testing.T) {
	assert.InDelta(t, 37.0, PPG(1.037), 1e-9)
	assert.Equal(t, 37.0, PPG(37))
}
