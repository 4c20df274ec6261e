package repositories

import (
	"context"
	"regexp"
	"time"

	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/domain/repositories"
	"github.com/ak/brewlab/internal/infrastructure/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ingredientRepository struct {
	collection *mongo.Collection
}

func NewIngredientRepository(db *database.MongoDB) repositories.IngredientRepository {
	return &ingredientRepository{
		collection: db.Collection(database.CollectionIngredients),
	}
}

func (r *ingredientRepository) Create(ctx context.Context, ingredient *models.CatalogIngredient) error {
	ingredient.CreatedAt = time.Now()
	ingredient.UpdatedAt = time.Now()
	ingredient.IsActive = true

	result, err := r.collection.InsertOne(ctx, ingredient)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicate
		}
		return err
	}
	ingredient.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ingredientRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CatalogIngredient, error) {
	var ingredient models.CatalogIngredient
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ingredient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) Update(ctx context.Context, ingredient *models.CatalogIngredient) error {
	ingredient.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": ingredient.ID}, ingredient)
	return err
}

func (r *ingredientRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	// Soft delete by setting is_active to false
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	return err
}

func (r *ingredientRepository) List(ctx context.Context, filter repositories.IngredientFilter) ([]*models.CatalogIngredient, int64, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.ActiveOnly {
		query["is_active"] = true
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	skip := (page - 1) * limit

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var ingredients []*models.CatalogIngredient
	if err := cursor.All(ctx, &ingredients); err != nil {
		return nil, 0, err
	}

	return ingredients, total, nil
}

func (r *ingredientRepository) FindByName(ctx context.Context, name string, exact bool) (*models.CatalogIngredient, error) {
	pattern := regexp.QuoteMeta(name)
	if exact {
		pattern = "^" + pattern + "$"
	}
	query := bson.M{
		"name":      primitive.Regex{Pattern: pattern, Options: "i"},
		"is_active": true,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "name", Value: 1}})

	var ingredient models.CatalogIngredient
	err := r.collection.FindOne(ctx, query, opts).Decode(&ingredient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) FindSimilar(ctx context.Context, criteria models.SimilarityCriteria) ([]models.ScoredIngredient, error) {
	query := bson.M{"is_active": true}
	if criteria.Type != "" {
		query["type"] = criteria.Type
	}
	if criteria.GrainType != "" {
		query["grain_type"] = criteria.GrainType
	}
	if len(criteria.ExcludeNames) > 0 {
		query["name"] = bson.M{"$nin": criteria.ExcludeNames}
	}
	if len(criteria.NameContains) > 0 {
		or := make(bson.A, 0, len(criteria.NameContains))
		for _, part := range criteria.NameContains {
			or = append(or, bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(part), Options: "i"}})
		}
		query["$or"] = or
	}

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []*models.CatalogIngredient
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return rankCandidates(found, criteria), nil
}
