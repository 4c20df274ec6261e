package repositories

import (
	"context"
	"errors"

	"github.com/ak/brewlab/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicate is returned when a create would violate a unique name or code
var ErrDuplicate = errors.New("duplicate key")

// IngredientRepository defines operations for ingredient catalog access
type IngredientRepository interface {
	Create(ctx context.Context, ingredient *models.CatalogIngredient) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.CatalogIngredient, error)
	Update(ctx context.Context, ingredient *models.CatalogIngredient) error
	Delete(ctx context.Context, id primitive.ObjectID) error // Soft delete (set is_active=false)
	List(ctx context.Context, filter IngredientFilter) ([]*models.CatalogIngredient, int64, error)

	// FindByName returns nil, nil when nothing matches. With exact=false the
	// lookup is a case-insensitive substring match.
	FindByName(ctx context.Context, name string, exact bool) (*models.CatalogIngredient, error)
	// FindSimilar returns active substitution candidates ordered by descending score
	FindSimilar(ctx context.Context, criteria models.SimilarityCriteria) ([]models.ScoredIngredient, error)
}

type IngredientFilter struct {
	Type       models.IngredientType
	ActiveOnly bool
	Page       int
	Limit      int
}

// StyleRepository defines operations for beer style access
type StyleRepository interface {
	Create(ctx context.Context, style *models.BeerStyle) error
	// GetByCode returns nil, nil when the style does not exist
	GetByCode(ctx context.Context, code string) (*models.BeerStyle, error)
	List(ctx context.Context) ([]*models.BeerStyle, error)
}
