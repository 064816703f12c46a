package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CategorieRepository struct {
	collection   *mongo.Collection
	restaurantID string
}

func NewCategorieRepository(db *mongo.Database) *CategorieRepository {
	return &CategorieRepository{
		collection:   db.Collection("categories"),
		restaurantID: domain.RestaurantID,
	}
}

func (r *CategorieRepository) Create(ctx context.Context, categorie *domain.Categorie) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if categorie.ID == "" {
		categorie.ID = primitive.NewObjectID().Hex()
	}
	categorie.RestaurantID = r.restaurantID

	if _, err := r.collection.InsertOne(ctx, categorie); err != nil {
		return fmt.Errorf("failed to create categorie: %w", err)
	}

	return nil
}

func (r *CategorieRepository) GetAll(ctx context.Context) ([]domain.Categorie, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": r.restaurantID})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []domain.Categorie
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	return categories, nil
}

func (r *CategorieRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "restaurant_id": r.restaurantID})
	if err != nil {
		return fmt.Errorf("failed to delete categorie: %w", err)
	}

	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

type TableRepository struct {
	collection   *mongo.Collection
	restaurantID string
}

func NewTableRepository(db *mongo.Database) *TableRepository {
	return &TableRepository{
		collection:   db.Collection("tables"),
		restaurantID: domain.RestaurantID,
	}
}

func (r *TableRepository) Create(ctx context.Context, table *domain.Table) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if table.ID == "" {
		table.ID = primitive.NewObjectID().Hex()
	}
	table.RestaurantID = r.restaurantID

	if _, err := r.collection.InsertOne(ctx, table); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

func (r *TableRepository) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var table domain.Table
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "restaurant_id": r.restaurantID}).Decode(&table)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get table: %w", err)
	}

	return &table, nil
}

func (r *TableRepository) GetAll(ctx context.Context) ([]domain.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": r.restaurantID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer cursor.Close(ctx)

	var tables []domain.Table
	if err := cursor.All(ctx, &tables); err != nil {
		return nil, fmt.Errorf("failed to decode tables: %w", err)
	}

	return tables, nil
}

func (r *TableRepository) Update(ctx context.Context, table *domain.Table) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": table.ID, "restaurant_id": r.restaurantID}
	update := bson.M{
		"$set": bson.M{
			"nom":      table.Nom,
			"capacite": table.Capacite,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update table: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *TableRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "restaurant_id": r.restaurantID})
	if err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}

	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}
