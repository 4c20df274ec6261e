package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/domain/repositories"
	apperrors "github.com/ak/brewlab/internal/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogService handles ingredient and style catalog business logic
type CatalogService interface {
	CreateIngredient(ctx context.Context, req IngredientRequest) (*models.CatalogIngredient, error)
	GetIngredient(ctx context.Context, id primitive.ObjectID) (*models.CatalogIngredient, error)
	UpdateIngredient(ctx context.Context, id primitive.ObjectID, req IngredientRequest) (*models.CatalogIngredient, error)
	DeleteIngredient(ctx context.Context, id primitive.ObjectID) error
	ListIngredients(ctx context.Context, filter repositories.IngredientFilter) ([]*models.CatalogIngredient, int64, error)
	SearchIngredients(ctx context.Context, criteria models.SimilarityCriteria) ([]models.ScoredIngredient, error)

	GetStyle(ctx context.Context, code string) (*models.BeerStyle, error)
	ListStyles(ctx context.Context) ([]*models.BeerStyle, error)
}

type IngredientRequest struct {
	Name           string                `json:"name" binding:"required"`
	Type           models.IngredientType `json:"type" binding:"required"`
	Description    string                `json:"description"`
	GrainType      string                `json:"grain_type"`
	Potential      *float64              `json:"potential"`
	Color          *float64              `json:"color"`
	AlphaAcid      *float64              `json:"alpha_acid"`
	Attenuation    *float64              `json:"attenuation"`
	YeastType      string                `json:"yeast_type"`
	Manufacturer   string                `json:"manufacturer"`
	MinTemperature *float64              `json:"min_temperature"`
	MaxTemperature *float64              `json:"max_temperature"`
}

func (r IngredientRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.Validation("name is required")
	}
	if !r.Type.Valid() {
		return apperrors.Validation("type must be grain, hop, yeast or other")
	}
	if r.MinTemperature != nil && r.MaxTemperature != nil && *r.MinTemperature > *r.MaxTemperature {
		return apperrors.Validation("min_temperature must not exceed max_temperature")
	}
	return nil
}

func (r IngredientRequest) apply(c *models.CatalogIngredient) {
	c.Name = strings.TrimSpace(r.Name)
	c.Type = r.Type
	c.Description = r.Description
	c.GrainType = r.GrainType
	c.Potential = r.Potential
	c.Color = r.Color
	c.AlphaAcid = r.AlphaAcid
	c.Attenuation = r.Attenuation
	c.YeastType = r.YeastType
	c.Manufacturer = r.Manufacturer
	c.MinTemperature = r.MinTemperature
	c.MaxTemperature = r.MaxTemperature
}

type catalogService struct {
	ingredientRepo repositories.IngredientRepository
	styleRepo      repositories.StyleRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(ingredientRepo repositories.IngredientRepository, styleRepo repositories.StyleRepository) CatalogService {
	return &catalogService{
		ingredientRepo: ingredientRepo,
		styleRepo:      styleRepo,
	}
}

func (s *catalogService) CreateIngredient(ctx context.Context, req IngredientRequest) (*models.CatalogIngredient, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	ingredient := &models.CatalogIngredient{}
	req.apply(ingredient)

	if err := s.ingredientRepo.Create(ctx, ingredient); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.AlreadyExists("ingredient")
		}
		return nil, apperrors.DatabaseError(err)
	}
	return ingredient, nil
}

func (s *catalogService) GetIngredient(ctx context.Context, id primitive.ObjectID) (*models.CatalogIngredient, error) {
	ingredient, err := s.ingredientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if ingredient == nil {
		return nil, apperrors.NotFound("ingredient")
	}
	return ingredient, nil
}

func (s *catalogService) UpdateIngredient(ctx context.Context, id primitive.ObjectID, req IngredientRequest) (*models.CatalogIngredient, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	ingredient, err := s.GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(ingredient)
	if err := s.ingredientRepo.Update(ctx, ingredient); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return ingredient, nil
}

func (s *catalogService) DeleteIngredient(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.GetIngredient(ctx, id); err != nil {
		return err
	}
	if err := s.ingredientRepo.Delete(ctx, id); err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

func (s *catalogService) ListIngredients(ctx context.Context, filter repositories.IngredientFilter) ([]*models.CatalogIngredient, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, apperrors.InvalidInput("unknown ingredient type")
	}
	items, total, err := s.ingredientRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.DatabaseError(err)
	}
	return items, total, nil
}

func (s *catalogService) SearchIngredients(ctx context.Context, criteria models.SimilarityCriteria) ([]models.ScoredIngredient, error) {
	found, err := s.ingredientRepo.FindSimilar(ctx, criteria)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return found, nil
}

func (s *catalogService) GetStyle(ctx context.Context, code string) (*models.BeerStyle, error) {
	style, err := s.styleRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if style == nil {
		return nil, apperrors.StyleNotFound(code)
	}
	return style, nil
}

func (s *catalogService) ListStyles(ctx context.Context) ([]*models.BeerStyle, error) {
	styles, err := s.styleRepo.List(ctx)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return styles, nil
}
