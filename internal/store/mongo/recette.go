package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type RecetteRepository struct {
	collection   *mongo.Collection
	restaurantID string
}

func NewRecetteRepository(db *mongo.Database) *RecetteRepository {
	return &RecetteRepository{
		collection:   db.Collection("recettes"),
		restaurantID: domain.RestaurantID,
	}
}

func (r *RecetteRepository) GetByProduitID(ctx context.Context, produitID string) (*domain.Recette, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var recette domain.Recette
	err := r.collection.FindOne(ctx, bson.M{"_id": produitID, "restaurant_id": r.restaurantID}).Decode(&recette)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recette: %w", err)
	}

	return &recette, nil
}

func (r *RecetteRepository) GetAll(ctx context.Context) ([]domain.Recette, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": r.restaurantID})
	if err != nil {
		return nil, fmt.Errorf("failed to list recettes: %w", err)
	}
	defer cursor.Close(ctx)

	var recettes []domain.Recette
	if err := cursor.All(ctx, &recettes); err != nil {
		return nil, fmt.Errorf("failed to decode recettes: %w", err)
	}

	return recettes, nil
}

func (r *RecetteRepository) ReplaceItems(ctx context.Context, produitID string, items []domain.RecetteItem) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if items == nil {
		items = []domain.RecetteItem{}
	}

	filter := bson.M{"_id": produitID, "restaurant_id": r.restaurantID}
	update := bson.M{"$set": bson.M{"items": items}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update recette: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}
