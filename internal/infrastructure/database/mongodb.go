package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ak/brewlab/internal/infrastructure/config"
	"github.com/ak/brewlab/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collections
const (
	CollectionIngredients = "ingredients"
	CollectionStyles      = "beer_styles"
)

const healthTimeout = 5 * time.Second

// ErrNotConnected is returned by operations that need a live client
var ErrNotConnected = errors.New("mongodb: not connected")

// MongoDB holds the catalog database connection
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	config   config.MongoDBConfig
	logger   *logger.Logger
}

// NewMongoDB prepares a catalog connection. Nothing is dialed until Connect.
func NewMongoDB(cfg config.MongoDBConfig, log *logger.Logger) (*MongoDB, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongodb uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongodb database is required")
	}
	if cfg.MinPoolSize > cfg.MaxPoolSize && cfg.MaxPoolSize != 0 {
		return nil, fmt.Errorf("mongodb min_pool_size %d exceeds max_pool_size %d", cfg.MinPoolSize, cfg.MaxPoolSize)
	}
	return &MongoDB{
		config: cfg,
		logger: log.WithComponent("mongodb"),
	}, nil
}

// Connect dials the server, verifies it with a ping and ensures the catalog
// indexes. Index failures are logged; the unique name and code indexes are
// what turns duplicate inserts into repositories.ErrDuplicate.
func (m *MongoDB) Connect(ctx context.Context) error {
	if m.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.ConnectTimeout)
		defer cancel()
	}

	clientOpts := options.Client().
		ApplyURI(m.config.URI).
		SetAppName("brewlab").
		SetMaxPoolSize(m.config.MaxPoolSize).
		SetMinPoolSize(m.config.MinPoolSize).
		SetConnectTimeout(m.config.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)
	m.logger.Info("Connected to MongoDB", zap.String("database", m.config.Database))

	if err := m.ensureIndexes(ctx); err != nil {
		m.logger.Warn("Failed to create some indexes", zap.Error(err))
	}
	return nil
}

// Close disconnects the client; it is a no-op before Connect
func (m *MongoDB) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// Collection returns a catalog collection by name
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// Indexes lists the catalog indexes per collection
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollectionIngredients: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("uniq_name").SetUnique(true)},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "is_active", Value: 1}}, Options: options.Index().SetName("type_active")},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "grain_type", Value: 1}}, Options: options.Index().SetName("type_grain")},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "yeast_type", Value: 1}}, Options: options.Index().SetName("type_yeast").SetSparse(true)},
		},
		CollectionStyles: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetName("uniq_code").SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category")},
		},
	}
}

func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	var errs []error
	for collection, models := range Indexes() {
		names, err := m.database.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", collection, err))
			continue
		}
		m.logger.Debug("Indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	}
	return errors.Join(errs...)
}

// Health pings the primary
func (m *MongoDB) Health(ctx context.Context) error {
	if m.client == nil {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}
