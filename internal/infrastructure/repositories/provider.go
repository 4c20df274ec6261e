package repositories

import (
	"github.com/ak/brewlab/internal/domain/repositories"
	"github.com/ak/brewlab/internal/infrastructure/database"
)

// Provider holds all repository instances
type Provider struct {
	Ingredient repositories.IngredientRepository
	Style      repositories.StyleRepository
}

// NewProvider creates a MongoDB backed repository provider
func NewProvider(db *database.MongoDB) *Provider {
	return &Provider{
		Ingredient: NewIngredientRepository(db),
		Style:      NewStyleRepository(db),
	}
}

// NewMemoryProvider creates an in-process repository provider
func NewMemoryProvider() *Provider {
	return &Provider{
		Ingredient: NewMemoryIngredientRepository(),
		Style:      NewMemoryStyleRepository(),
	}
}
