package repo

import (
	"context"
	"time"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommandeRepository interface {
	// Create persists a new commande. For en_cours commandes it rejects
	// with domain.ErrTableOccupied when the table already has an open
	// one, and assigns the per-day numero.
	Create(ctx context.Context, commande *domain.Commande) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Commande, error)
	// GetActive returns commandes that are en_cours or pending takeaway
	// validation.
	GetActive(ctx context.Context) ([]domain.Commande, error)
	UpdateItems(ctx context.Context, id primitive.ObjectID, items []domain.CommandeItem, couverts int, total float64) error
	SetStatut(ctx context.Context, id primitive.ObjectID, statut domain.StatutCommande) error
	SetEstadoCocina(ctx context.Context, id primitive.ObjectID, estado domain.EstadoCocina, stamp *time.Time) error
	// ValidateTakeaway converts a pendiente_validacion commande to
	// en_cours and routes it to the kitchen in one conditional write.
	// Any other statut fails with domain.ErrNotPendingValidation.
	ValidateTakeaway(ctx context.Context, id primitive.ObjectID, stamp time.Time) error
	// Finalize atomically emits one vente per item, priced from the
	// commande's own snapshots, and flips the statut to terminee.
	Finalize(ctx context.Context, id primitive.ObjectID) (*domain.Commande, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
