package repositories

import (
	"sort"
	"strings"

	"github.com/ak/brewlab/internal/domain/models"
)

const defaultSimilarLimit = 10

// similarityScore rates how well a catalog entry fits the search criteria.
// Type is a hard filter applied by the caller; everything else adds to a 0.4 base.
func similarityScore(c *models.CatalogIngredient, criteria models.SimilarityCriteria) float64 {
	score := 0.4
	if criteria.GrainType != "" && strings.EqualFold(c.GrainType, criteria.GrainType) {
		score += 0.3
	}
	if criteria.YeastType != "" && strings.EqualFold(c.YeastType, criteria.YeastType) {
		score += 0.3
	}
	if matchesAny(c.Name, criteria.NameContains) {
		score += 0.3
	}
	if score > 1 {
		score = 1
	}
	return score
}

func matchesAny(name string, parts []string) bool {
	lower := strings.ToLower(name)
	for _, p := range parts {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// rankCandidates scores, orders and truncates a candidate list. Ties break on name.
func rankCandidates(found []*models.CatalogIngredient, criteria models.SimilarityCriteria) []models.ScoredIngredient {
	out := make([]models.ScoredIngredient, 0, len(found))
	for _, c := range found {
		out = append(out, models.ScoredIngredient{Ingredient: c, Score: similarityScore(c, criteria)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Ingredient.Name < out[j].Ingredient.Name
	})
	limit := criteria.Limit
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
