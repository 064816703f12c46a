package repo

import (
	"context"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
)

type VenteRepository interface {
	GetAll(ctx context.Context) ([]domain.Vente, error)
}

type AchatRepository interface {
	// CreateWithLot persists the achat and appends the lot to its
	// ingredient, recomputing the derived stock_actuel and
	// prix_unitaire_moyen, in one transaction.
	CreateWithLot(ctx context.Context, achat *domain.Achat, lot domain.Lot) error
	GetAll(ctx context.Context) ([]domain.Achat, error)
}

type RoleRepository interface {
	GetAll(ctx context.Context) ([]domain.Role, error)
	// SaveAll replaces the role set atomically.
	SaveAll(ctx context.Context, roles []domain.Role) error
}
