package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/domain/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryIngredientRepository keeps the catalog in process. Values are copied
// in and out so callers never share state with the store.
type memoryIngredientRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.CatalogIngredient
}

func NewMemoryIngredientRepository() repositories.IngredientRepository {
	return &memoryIngredientRepository{items: make(map[primitive.ObjectID]models.CatalogIngredient)}
}

func (r *memoryIngredientRepository) Create(_ context.Context, ingredient *models.CatalogIngredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if strings.EqualFold(existing.Name, ingredient.Name) {
			return repositories.ErrDuplicate
		}
	}
	ingredient.ID = primitive.NewObjectID()
	ingredient.CreatedAt = time.Now()
	ingredient.UpdatedAt = ingredient.CreatedAt
	ingredient.IsActive = true
	r.items[ingredient.ID] = *ingredient
	return nil
}

func (r *memoryIngredientRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.CatalogIngredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *memoryIngredientRepository) Update(_ context.Context, ingredient *models.CatalogIngredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[ingredient.ID]; !ok {
		return nil
	}
	ingredient.UpdatedAt = time.Now()
	r.items[ingredient.ID] = *ingredient
	return nil
}

func (r *memoryIngredientRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		item.IsActive = false
		item.UpdatedAt = time.Now()
		r.items[id] = item
	}
	return nil
}

// sorted returns copies of the entries accepted by keep, ordered by name
func (r *memoryIngredientRepository) sorted(keep func(c *models.CatalogIngredient) bool) []*models.CatalogIngredient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.CatalogIngredient
	for _, item := range r.items {
		c := item
		if keep(&c) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memoryIngredientRepository) List(_ context.Context, filter repositories.IngredientFilter) ([]*models.CatalogIngredient, int64, error) {
	all := r.sorted(func(c *models.CatalogIngredient) bool {
		if filter.Type != "" && c.Type != filter.Type {
			return false
		}
		return !filter.ActiveOnly || c.IsActive
	})

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *memoryIngredientRepository) FindByName(_ context.Context, name string, exact bool) (*models.CatalogIngredient, error) {
	want := strings.ToLower(name)
	found := r.sorted(func(c *models.CatalogIngredient) bool {
		if !c.IsActive {
			return false
		}
		have := strings.ToLower(c.Name)
		if exact {
			return have == want
		}
		return strings.Contains(have, want)
	})
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *memoryIngredientRepository) FindSimilar(_ context.Context, criteria models.SimilarityCriteria) ([]models.ScoredIngredient, error) {
	excluded := make(map[string]bool, len(criteria.ExcludeNames))
	for _, n := range criteria.ExcludeNames {
		excluded[n] = true
	}
	found := r.sorted(func(c *models.CatalogIngredient) bool {
		switch {
		case !c.IsActive, excluded[c.Name]:
			return false
		case criteria.Type != "" && c.Type != criteria.Type:
			return false
		case criteria.GrainType != "" && c.GrainType != criteria.GrainType:
			return false
		case len(criteria.NameContains) > 0 && !matchesAny(c.Name, criteria.NameContains):
			return false
		}
		return true
	})
	return rankCandidates(found, criteria), nil
}

type memoryStyleRepository struct {
	mu     sync.RWMutex
	styles map[string]models.BeerStyle
}

func NewMemoryStyleRepository() repositories.StyleRepository {
	return &memoryStyleRepository{styles: make(map[string]models.BeerStyle)}
}

func (r *memoryStyleRepository) Create(_ context.Context, style *models.BeerStyle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.styles[style.Code]; ok {
		return repositories.ErrDuplicate
	}
	style.ID = primitive.NewObjectID()
	style.CreatedAt = time.Now()
	style.UpdatedAt = style.CreatedAt
	r.styles[style.Code] = *style
	return nil
}

func (r *memoryStyleRepository) GetByCode(_ context.Context, code string) (*models.BeerStyle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.styles[code]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *memoryStyleRepository) List(_ context.Context) ([]*models.BeerStyle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.BeerStyle, 0, len(r.styles))
	for _, s := range r.styles {
		c := s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
