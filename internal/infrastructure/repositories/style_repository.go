package repositories

import (
	"context"
	"time"

	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/domain/repositories"
	"github.com/ak/brewlab/internal/infrastructure/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type styleRepository struct {
	collection *mongo.Collection
}

func NewStyleRepository(db *database.MongoDB) repositories.StyleRepository {
	return &styleRepository{
		collection: db.Collection(database.CollectionStyles),
	}
}

func (r *styleRepository) Create(ctx context.Context, style *models.BeerStyle) error {
	style.CreatedAt = time.Now()
	style.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, style)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicate
		}
		return err
	}
	style.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *styleRepository) GetByCode(ctx context.Context, code string) (*models.BeerStyle, error) {
	var style models.BeerStyle
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&style)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &style, nil
}

func (r *styleRepository) List(ctx context.Context) ([]*models.BeerStyle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var styles []*models.BeerStyle
	if err := cursor.All(ctx, &styles); err != nil {
		return nil, err
	}
	return styles, nil
}
