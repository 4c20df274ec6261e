package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/domain/repositories"
	"github.com/ak/brewlab/internal/pkg/logger"
	"go.uber.org/zap"
)

func grain(name, grainType string, ppg, lovibond float64) *models.CatalogIngredient {
	return &models.CatalogIngredient{
		Name: name, Type: models.IngredientTypeGrain, GrainType: grainType,
		Potential: models.Float(ppg), Color: models.Float(lovibond),
	}
}

func hop(name string, alpha float64) *models.CatalogIngredient {
	return &models.CatalogIngredient{Name: name, Type: models.IngredientTypeHop, AlphaAcid: models.Float(alpha)}
}

func yeast(name, manufacturer, yeastType string, attenuation, minF, maxF float64) *models.CatalogIngredient {
	return &models.CatalogIngredient{
		Name: name, Type: models.IngredientTypeYeast, Manufacturer: manufacturer, YeastType: yeastType,
		Attenuation: models.Float(attenuation), MinTemperature: models.Float(minF), MaxTemperature: models.Float(maxF),
	}
}

// SeedIngredients returns the built-in ingredient catalog.
// Yeast temperatures are in Fahrenheit.
func SeedIngredients() []*models.CatalogIngredient {
	return []*models.CatalogIngredient{
		grain("Pale Malt (2 Row) US", models.GrainTypeBaseMalt, 37, 2),
		grain("Maris Otter", models.GrainTypeBaseMalt, 38, 3),
		grain("Pilsner Malt", models.GrainTypeBaseMalt, 37, 1.6),
		grain("Wheat Malt", models.GrainTypeBaseMalt, 38, 2),
		grain("Munich Malt", models.GrainTypeBaseMalt, 35, 9),
		grain("Munich Dark", models.GrainTypeBaseMalt, 34, 20),
		grain("Vienna Malt", models.GrainTypeBaseMalt, 35, 3.5),
		grain("Caramel/Crystal Malt 10L", models.GrainTypeCaramelCrystal, 35, 10),
		grain("Caramel/Crystal Malt 20L", models.GrainTypeCaramelCrystal, 35, 20),
		grain("Caramel/Crystal Malt 40L", models.GrainTypeCaramelCrystal, 34, 40),
		grain("Caramel/Crystal Malt 60L", models.GrainTypeCaramelCrystal, 34, 60),
		grain("Caramel/Crystal Malt 80L", models.GrainTypeCaramelCrystal, 34, 80),
		grain("Caramel/Crystal Malt 120L", models.GrainTypeCaramelCrystal, 33, 120),
		grain("Chocolate Malt", models.GrainTypeRoasted, 28, 350),
		grain("Roasted Barley", models.GrainTypeRoasted, 25, 300),
		grain("Biscuit Malt", models.GrainTypeSpecialty, 35, 23),
		grain("Flaked Oats", models.GrainTypeAdjunct, 33, 1),
		grain("Light Dry Malt Extract", models.GrainTypeExtract, 44, 4),
		grain("Corn Sugar (Dextrose)", models.GrainTypeSugar, 46, 0),

		hop("Cascade", 5.5),
		hop("Centennial", 10),
		hop("Citra", 12),
		hop("Magnum", 13),
		hop("Simcoe", 13),
		hop("Saaz", 3.5),
		hop("East Kent Goldings", 5),
		hop("Hallertau Mittelfruh", 4),

		yeast("Safale US-05", "Fermentis", "ale", 81, 59, 75),
		yeast("California Ale WLP001", "White Labs", "ale", 76.5, 68, 73),
		yeast("American Ale 1056", "Wyeast", "ale", 75, 60, 72),
		yeast("Safale S-04", "Fermentis", "ale", 75, 59, 68),
		yeast("English Ale WLP002", "White Labs", "ale", 67.5, 65, 68),
		yeast("Nottingham Ale", "Lallemand", "ale", 80, 57, 70),
		yeast("Saflager W-34/70", "Fermentis", "lager", 83, 48, 59),
		yeast("Hefeweizen Ale WLP300", "White Labs", "wheat", 74, 68, 72),
	}
}

func style(code, name, category string, og, fg, abv, ibu, srm models.Range) *models.BeerStyle {
	return &models.BeerStyle{
		Code: code, Name: name, Category: category,
		Guidelines: models.StyleGuidelines{Ranges: map[string]models.Range{
			models.MetricOG: og, models.MetricFG: fg, models.MetricABV: abv,
			models.MetricIBU: ibu, models.MetricSRM: srm,
		}},
	}
}

func rng(lo, hi float64) models.Range {
	return models.Range{Min: lo, Max: hi}
}

// SeedStyles returns the built-in style catalog
func SeedStyles() []*models.BeerStyle {
	return []*models.BeerStyle{
		style("1A", "American Light Lager", "Standard American Beer",
			rng(1.028, 1.040), rng(0.998, 1.008), rng(2.8, 4.2), rng(8, 12), rng(2, 3)),
		style("5B", "Kölsch", "Pale Bitter European Beer",
			rng(1.044, 1.050), rng(1.007, 1.011), rng(4.4, 5.2), rng(18, 30), rng(3.5, 5)),
		style("10A", "Weissbier", "German Wheat Beer",
			rng(1.044, 1.053), rng(1.008, 1.014), rng(4.3, 5.6), rng(8, 15), rng(2, 6)),
		style("15B", "Irish Stout", "Irish Beer",
			rng(1.036, 1.044), rng(1.007, 1.011), rng(4.0, 4.5), rng(25, 45), rng(25, 40)),
		style("18B", "American Pale Ale", "Pale American Ale",
			rng(1.045, 1.060), rng(1.010, 1.015), rng(4.5, 6.2), rng(30, 50), rng(5, 10)),
		style("20A", "American Porter", "American Porter and Stout",
			rng(1.050, 1.070), rng(1.012, 1.018), rng(4.8, 6.5), rng(25, 50), rng(22, 40)),
		style("21A", "American IPA", "IPA",
			rng(1.056, 1.070), rng(1.008, 1.014), rng(5.5, 7.5), rng(40, 70), rng(6, 14)),
	}
}

// SeedResult counts what Seed inserted
type SeedResult struct {
	Ingredients int
	Styles      int
	Skipped     int
}

// Seed inserts the built-in catalog, skipping entries that already exist
func Seed(ctx context.Context, p *Provider, log *logger.Logger) (SeedResult, error) {
	if log == nil {
		log = logger.Global()
	}
	log = log.WithComponent("seed")

	var res SeedResult
	for _, ing := range SeedIngredients() {
		err := p.Ingredient.Create(ctx, ing)
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("failed to seed ingredient %s: %w", ing.Name, err)
		default:
			res.Ingredients++
		}
	}
	for _, s := range SeedStyles() {
		err := p.Style.Create(ctx, s)
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("failed to seed style %s: %w", s.Code, err)
		default:
			res.Styles++
		}
	}
	log.Info("Catalog seeded",
		zap.Int("ingredients", res.Ingredients),
		zap.Int("styles", res.Styles),
		zap.Int("skipped", res.Skipped))
	return res, nil
}
