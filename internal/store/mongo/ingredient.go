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

type IngredientRepository struct {
	collection   *mongo.Collection
	restaurantID string
}

func NewIngredientRepository(db *mongo.Database) *IngredientRepository {
	return &IngredientRepository{
		collection:   db.Collection("ingredients"),
		restaurantID: domain.RestaurantID,
	}
}

func (r *IngredientRepository) Create(ctx context.Context, ingredient *domain.Ingredient) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if ingredient.ID == "" {
		ingredient.ID = primitive.NewObjectID().Hex()
	}
	ingredient.RestaurantID = r.restaurantID
	// a new ingredient starts without stock; derived fields are zeroed
	ingredient.StockActuel = 0
	ingredient.PrixUnitaireMoyen = 0
	if ingredient.Lots == nil {
		ingredient.Lots = []domain.Lot{}
	}

	if _, err := r.collection.InsertOne(ctx, ingredient); err != nil {
		return fmt.Errorf("failed to create ingredient: %w", err)
	}

	return nil
}

func (r *IngredientRepository) GetByID(ctx context.Context, id string) (*domain.Ingredient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ingredient domain.Ingredient
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "restaurant_id": r.restaurantID}).Decode(&ingredient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}

	return &ingredient, nil
}

func (r *IngredientRepository) GetAll(ctx context.Context) ([]domain.Ingredient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": r.restaurantID})
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer cursor.Close(ctx)

	var ingredients []domain.Ingredient
	if err := cursor.All(ctx, &ingredients); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}

	return ingredients, nil
}

func (r *IngredientRepository) Update(ctx context.Context, ingredient *domain.Ingredient) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": ingredient.ID, "restaurant_id": r.restaurantID}
	update := bson.M{
		"$set": bson.M{
			"nom":           ingredient.Nom,
			"unite":         ingredient.Unite,
			"stock_minimum": ingredient.StockMinimum,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update ingredient: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *IngredientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "restaurant_id": r.restaurantID})
	if err != nil {
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}

	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}
