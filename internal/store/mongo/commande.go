package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommandeRepository struct {
	collection   *mongo.Collection
	ventes       *mongo.Collection
	counters     *mongo.Collection
	client       *mongo.Client
	restaurantID string
}

func NewCommandeRepository(db *mongo.Database) *CommandeRepository {
	return &CommandeRepository{
		collection:   db.Collection("commandes"),
		ventes:       db.Collection("ventes"),
		counters:     db.Collection("counters"),
		client:       db.Client(),
		restaurantID: domain.RestaurantID,
	}
}

// nextNumero increments the per-day commande counter and returns the
// new value. The first commande of a day gets 1.
func (r *CommandeRepository) nextNumero(ctx context.Context, day time.Time) (int, error) {
	key := fmt.Sprintf("commandes-%s", day.Format("2006-01-02"))

	var counter struct {
		Seq int `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": key, "restaurant_id": r.restaurantID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to increment commande counter: %w", err)
	}

	return counter.Seq, nil
}

func (r *CommandeRepository) Create(ctx context.Context, commande *domain.Commande) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if commande.ID.IsZero() {
		commande.ID = primitive.NewObjectID()
	}
	commande.RestaurantID = r.restaurantID
	if commande.DateCreation.IsZero() {
		commande.DateCreation = time.Now()
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// one open commande per table, enforced here rather than by
		// caller convention
		if commande.Statut == domain.StatutEnCours {
			count, err := r.collection.CountDocuments(sc, bson.M{
				"restaurant_id": r.restaurantID,
				"table_id":      commande.TableID,
				"statut":        domain.StatutEnCours,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to check open commandes: %w", err)
			}
			if count > 0 {
				return nil, domain.ErrTableOccupied
			}
		}

		numero, err := r.nextNumero(sc, commande.DateCreation)
		if err != nil {
			return nil, err
		}
		commande.Numero = numero

		if _, err := r.collection.InsertOne(sc, commande); err != nil {
			return nil, fmt.Errorf("failed to create commande: %w", err)
		}

		return nil, nil
	})

	return err
}

func (r *CommandeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Commande, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var commande domain.Commande
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "restaurant_id": r.restaurantID}).Decode(&commande)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get commande: %w", err)
	}

	return &commande, nil
}

func (r *CommandeRepository) GetActive(ctx context.Context) ([]domain.Commande, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"restaurant_id": r.restaurantID,
		"statut": bson.M{"$in": []domain.StatutCommande{
			domain.StatutEnCours,
			domain.StatutPendienteValidacion,
		}},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list active commandes: %w", err)
	}
	defer cursor.Close(ctx)

	var commandes []domain.Commande
	if err := cursor.All(ctx, &commandes); err != nil {
		return nil, fmt.Errorf("failed to decode commandes: %w", err)
	}

	return commandes, nil
}

func (r *CommandeRepository) UpdateItems(ctx context.Context, id primitive.ObjectID, items []domain.CommandeItem, couverts int, total float64) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "restaurant_id": r.restaurantID}
	update := bson.M{
		"$set": bson.M{
			"items":    items,
			"couverts": couverts,
			"total":    total,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update commande items: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *CommandeRepository) SetStatut(ctx context.Context, id primitive.ObjectID, statut domain.StatutCommande) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "restaurant_id": r.restaurantID}
	update := bson.M{"$set": bson.M{"statut": statut}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update commande statut: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *CommandeRepository) SetEstadoCocina(ctx context.Context, id primitive.ObjectID, estado domain.EstadoCocina, stamp *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"estado_cocina": estado}
	switch estado {
	case domain.CocinaRecibido:
		set["date_envoi_cuisine"] = stamp
	case domain.CocinaListo:
		set["date_listo_cuisine"] = stamp
	}

	filter := bson.M{"_id": id, "restaurant_id": r.restaurantID}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update estado cocina: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ValidateTakeaway flips statut and estado_cocina in a single write.
// The statut filter makes the precondition check race-free: a commande
// already validated by a concurrent call simply does not match.
func (r *CommandeRepository) ValidateTakeaway(ctx context.Context, id primitive.ObjectID, stamp time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":           id,
		"restaurant_id": r.restaurantID,
		"statut":        domain.StatutPendienteValidacion,
	}
	update := bson.M{"$set": bson.M{
		"statut":             domain.StatutEnCours,
		"estado_cocina":      domain.CocinaRecibido,
		"date_envoi_cuisine": stamp,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to validate takeaway commande: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotPendingValidation
	}

	return nil
}

// Finalize emits one vente per item and closes the commande in a
// single transaction. No concurrent finalize of the same commande can
// observe a stale snapshot; either all ventes and the statut flip
// commit, or none do.
func (r *CommandeRepository) Finalize(ctx context.Context, id primitive.ObjectID) (*domain.Commande, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var commande domain.Commande
		err := r.collection.FindOne(sc, bson.M{"_id": id, "restaurant_id": r.restaurantID}).Decode(&commande)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get commande: %w", err)
		}

		now := time.Now()
		for _, item := range commande.Items {
			vente := domain.Vente{
				ID:             primitive.NewObjectID(),
				RestaurantID:   r.restaurantID,
				CommandeID:     commande.ID,
				ProduitID:      item.Produit.ID,
				Quantite:       item.Quantite,
				PrixTotalVente: item.Produit.PrixVente * float64(item.Quantite),
				DateVente:      now,
			}
			if _, err := r.ventes.InsertOne(sc, vente); err != nil {
				return nil, fmt.Errorf("failed to insert vente: %w", err)
			}
		}

		update := bson.M{"$set": bson.M{"statut": domain.StatutTerminee}}
		if _, err := r.collection.UpdateOne(sc, bson.M{"_id": id}, update); err != nil {
			return nil, fmt.Errorf("failed to close commande: %w", err)
		}

		commande.Statut = domain.StatutTerminee
		return &commande, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*domain.Commande), nil
}

func (r *CommandeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "restaurant_id": r.restaurantID})
	if err != nil {
		return fmt.Errorf("failed to delete commande: %w", err)
	}

	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}
