package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Storage struct {
	client   *mongo.Client
	database *mongo.Database
	config   Config
}

type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

func New(cfg Config) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	database := client.Database(cfg.Database)

	return &Storage{
		client:   client,
		database: database,
		config:   cfg,
	}, nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Storage) Database() *mongo.Database {
	return s.database
}

func (s *Storage) Client() *mongo.Client {
	return s.client
}

func (s *Storage) StartSession() (mongo.Session, error) {
	return s.client.StartSession()
}

func (s *Storage) CreateIndexes(ctx context.Context) error {
	// commandes: table lookups and active-status scans
	commandesIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "statut", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "table_id", Value: 1}, {Key: "statut", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "date_creation", Value: 1}},
		},
	}
	if _, err := s.database.Collection("commandes").Indexes().CreateMany(ctx, commandesIndexes); err != nil {
		return fmt.Errorf("failed to create commandes indexes: %w", err)
	}

	// ventes/achats: day-window scans for the external report job
	ventesIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "date_vente", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "commande_id", Value: 1}},
		},
	}
	if _, err := s.database.Collection("ventes").Indexes().CreateMany(ctx, ventesIndexes); err != nil {
		return fmt.Errorf("failed to create ventes indexes: %w", err)
	}

	achatsIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "date_achat", Value: 1}},
		},
	}
	if _, err := s.database.Collection("achats").Indexes().CreateMany(ctx, achatsIndexes); err != nil {
		return fmt.Errorf("failed to create achats indexes: %w", err)
	}

	// every remaining collection is scanned whole on each refresh
	for _, name := range []string{"ingredients", "products", "recettes", "categories", "tables", "roles"} {
		index := mongo.IndexModel{
			Keys: bson.D{{Key: "restaurant_id", Value: 1}},
		}
		if _, err := s.database.Collection(name).Indexes().CreateOne(ctx, index); err != nil {
			return fmt.Errorf("failed to create %s index: %w", name, err)
		}
	}

	return nil
}
