package repo

import (
	"context"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
)

type IngredientRepository interface {
	Create(ctx context.Context, ingredient *domain.Ingredient) error
	GetByID(ctx context.Context, id string) (*domain.Ingredient, error)
	GetAll(ctx context.Context) ([]domain.Ingredient, error)
	Update(ctx context.Context, ingredient *domain.Ingredient) error
	Delete(ctx context.Context, id string) error
}

type ProduitRepository interface {
	// CreateWithRecette writes the produit and its recette atomically;
	// the recette takes the produit's id.
	CreateWithRecette(ctx context.Context, produit *domain.Produit, items []domain.RecetteItem) error
	GetByID(ctx context.Context, id string) (*domain.Produit, error)
	GetAll(ctx context.Context) ([]domain.Produit, error)
	Update(ctx context.Context, produit *domain.Produit) error
	UpdateEstado(ctx context.Context, id string, estado string) error
	// DeleteWithRecette removes the produit and its recette atomically.
	DeleteWithRecette(ctx context.Context, id string) error
}

type RecetteRepository interface {
	GetByProduitID(ctx context.Context, produitID string) (*domain.Recette, error)
	GetAll(ctx context.Context) ([]domain.Recette, error)
	// ReplaceItems swaps the recette's item list wholesale.
	ReplaceItems(ctx context.Context, produitID string, items []domain.RecetteItem) error
}

type CategorieRepository interface {
	Create(ctx context.Context, categorie *domain.Categorie) error
	GetAll(ctx context.Context) ([]domain.Categorie, error)
	Delete(ctx context.Context, id string) error
}

type TableRepository interface {
	Create(ctx context.Context, table *domain.Table) error
	GetByID(ctx context.Context, id string) (*domain.Table, error)
	GetAll(ctx context.Context) ([]domain.Table, error)
	Update(ctx context.Context, table *domain.Table) error
	Delete(ctx context.Context, id string) error
}
