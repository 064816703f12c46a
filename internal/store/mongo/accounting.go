package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"github.com/kiwis93160/POS-OUIOUI/internal/inventory"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type VenteRepository struct {
	collection   *mongo.Collection
	restaurantID string
}

func NewVenteRepository(db *mongo.Database) *VenteRepository {
	return &VenteRepository{
		collection:   db.Collection("ventes"),
		restaurantID: domain.RestaurantID,
	}
}

func (r *VenteRepository) GetAll(ctx context.Context) ([]domain.Vente, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": r.restaurantID})
	if err != nil {
		return nil, fmt.Errorf("failed to list ventes: %w", err)
	}
	defer cursor.Close(ctx)

	var ventes []domain.Vente
	if err := cursor.All(ctx, &ventes); err != nil {
		return nil, fmt.Errorf("failed to decode ventes: %w", err)
	}

	return ventes, nil
}

type AchatRepository struct {
	collection   *mongo.Collection
	ingredients  *mongo.Collection
	client       *mongo.Client
	restaurantID string
}

func NewAchatRepository(db *mongo.Database) *AchatRepository {
	return &AchatRepository{
		collection:   db.Collection("achats"),
		ingredients:  db.Collection("ingredients"),
		client:       db.Client(),
		restaurantID: domain.RestaurantID,
	}
}

// CreateWithLot inserts the achat and appends the lot to its ingredient
// in one transaction, so the books can never hold a purchase the
// inventory does not. The ingredient read and write share the
// transaction, which also serializes concurrent purchases of the same
// ingredient.
func (r *AchatRepository) CreateWithLot(ctx context.Context, achat *domain.Achat, lot domain.Lot) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if achat.ID.IsZero() {
		achat.ID = primitive.NewObjectID()
	}
	achat.RestaurantID = r.restaurantID
	if achat.DateAchat.IsZero() {
		achat.DateAchat = time.Now()
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"_id": achat.IngredientID, "restaurant_id": r.restaurantID}

		var ingredient domain.Ingredient
		if err := r.ingredients.FindOne(sc, filter).Decode(&ingredient); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("failed to load ingredient: %w", err)
		}

		if _, err := r.collection.InsertOne(sc, achat); err != nil {
			return nil, fmt.Errorf("failed to create achat: %w", err)
		}

		ingredient.Lots = append(ingredient.Lots, lot)
		var stock float64
		for _, l := range ingredient.Lots {
			if l.QteRestante > 0 {
				stock += l.QteRestante
			}
		}

		update := bson.M{
			"$set": bson.M{
				"lots":                ingredient.Lots,
				"stock_actuel":        stock,
				"prix_unitaire_moyen": inventory.AverageUnitCost(ingredient),
			},
		}
		if _, err := r.ingredients.UpdateOne(sc, filter, update); err != nil {
			return nil, fmt.Errorf("failed to append lot: %w", err)
		}

		return nil, nil
	})

	return err
}

func (r *AchatRepository) GetAll(ctx context.Context) ([]domain.Achat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": r.restaurantID})
	if err != nil {
		return nil, fmt.Errorf("failed to list achats: %w", err)
	}
	defer cursor.Close(ctx)

	var achats []domain.Achat
	if err := cursor.All(ctx, &achats); err != nil {
		return nil, fmt.Errorf("failed to decode achats: %w", err)
	}

	return achats, nil
}

type RoleRepository struct {
	collection   *mongo.Collection
	client       *mongo.Client
	restaurantID string
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{
		collection:   db.Collection("roles"),
		client:       db.Client(),
		restaurantID: domain.RestaurantID,
	}
}

func (r *RoleRepository) GetAll(ctx context.Context) ([]domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": r.restaurantID})
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer cursor.Close(ctx)

	var roles []domain.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, fmt.Errorf("failed to decode roles: %w", err)
	}

	return roles, nil
}

// SaveAll upserts the whole role set in one transaction.
func (r *RoleRepository) SaveAll(ctx context.Context, roles []domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for i := range roles {
			roles[i].RestaurantID = r.restaurantID
			filter := bson.M{"_id": roles[i].ID, "restaurant_id": r.restaurantID}
			update := bson.M{"$set": roles[i]}
			opts := options.Update().SetUpsert(true)
			if _, err := r.collection.UpdateOne(sc, filter, update, opts); err != nil {
				return nil, fmt.Errorf("failed to save role %s: %w", roles[i].ID, err)
			}
		}
		return nil, nil
	})

	return err
}
