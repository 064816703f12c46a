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

type ProduitRepository struct {
	collection   *mongo.Collection
	recettes     *mongo.Collection
	client       *mongo.Client
	restaurantID string
}

func NewProduitRepository(db *mongo.Database) *ProduitRepository {
	return &ProduitRepository{
		collection:   db.Collection("products"),
		recettes:     db.Collection("recettes"),
		client:       db.Client(),
		restaurantID: domain.RestaurantID,
	}
}

// CreateWithRecette writes the produit and its recette together; the
// recette document takes the produit's id.
func (r *ProduitRepository) CreateWithRecette(ctx context.Context, produit *domain.Produit, items []domain.RecetteItem) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if produit.ID == "" {
		produit.ID = primitive.NewObjectID().Hex()
	}
	produit.RestaurantID = r.restaurantID
	if items == nil {
		items = []domain.RecetteItem{}
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection.InsertOne(sc, produit); err != nil {
			return nil, fmt.Errorf("failed to create produit: %w", err)
		}

		recette := domain.Recette{
			ProduitID:    produit.ID,
			RestaurantID: r.restaurantID,
			Items:        items,
		}
		if _, err := r.recettes.InsertOne(sc, recette); err != nil {
			return nil, fmt.Errorf("failed to create recette: %w", err)
		}

		return nil, nil
	})

	return err
}

func (r *ProduitRepository) GetByID(ctx context.Context, id string) (*domain.Produit, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var produit domain.Produit
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "restaurant_id": r.restaurantID}).Decode(&produit)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get produit: %w", err)
	}

	return &produit, nil
}

func (r *ProduitRepository) GetAll(ctx context.Context) ([]domain.Produit, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": r.restaurantID})
	if err != nil {
		return nil, fmt.Errorf("failed to list produits: %w", err)
	}
	defer cursor.Close(ctx)

	var produits []domain.Produit
	if err := cursor.All(ctx, &produits); err != nil {
		return nil, fmt.Errorf("failed to decode produits: %w", err)
	}

	return produits, nil
}

func (r *ProduitRepository) Update(ctx context.Context, produit *domain.Produit) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": produit.ID, "restaurant_id": r.restaurantID}
	set := bson.M{
		"nom_produit":  produit.NomProduit,
		"prix_vente":   produit.PrixVente,
		"categoria_id": produit.CategoriaID,
		"estado":       produit.Estado,
	}
	if produit.Image != nil {
		set["image"] = produit.Image
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update produit: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *ProduitRepository) UpdateEstado(ctx context.Context, id string, estado string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "restaurant_id": r.restaurantID}
	update := bson.M{"$set": bson.M{"estado": estado}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update produit estado: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *ProduitRepository) DeleteWithRecette(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		result, err := r.collection.DeleteOne(sc, bson.M{"_id": id, "restaurant_id": r.restaurantID})
		if err != nil {
			return nil, fmt.Errorf("failed to delete produit: %w", err)
		}
		if result.DeletedCount == 0 {
			return nil, domain.ErrNotFound
		}

		// the recette shares the produit's id; a produit created before
		// recettes existed simply has nothing to delete here
		if _, err := r.recettes.DeleteOne(sc, bson.M{"_id": id, "restaurant_id": r.restaurantID}); err != nil {
			return nil, fmt.Errorf("failed to delete recette: %w", err)
		}

		return nil, nil
	})

	return err
}
