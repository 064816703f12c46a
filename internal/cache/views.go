package cache

import (
	"context"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"github.com/kiwis93160/POS-OUIOUI/internal/inventory"
)

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) Ingredients() []domain.Ingredient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Ingredient(nil), s.snap.ingredients...)
}

func (s *Store) Produits() []domain.Produit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Produit(nil), s.snap.produits...)
}

func (s *Store) Recettes() []domain.Recette {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Recette(nil), s.snap.recettes...)
}

func (s *Store) Ventes() []domain.Vente {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Vente(nil), s.snap.ventes...)
}

func (s *Store) Achats() []domain.Achat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Achat(nil), s.snap.achats...)
}

func (s *Store) Tables() []domain.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Table(nil), s.snap.tables...)
}

func (s *Store) Categories() []domain.Categorie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Categorie(nil), s.snap.categories...)
}

func (s *Store) Roles() []domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Role(nil), s.snap.roles...)
}

// ActiveCommandes holds every commande currently en cours.
func (s *Store) ActiveCommandes() []domain.Commande {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active []domain.Commande
	for _, c := range s.snap.commandes {
		if c.Statut == domain.StatutEnCours {
			active = append(active, c)
		}
	}
	return active
}

// KitchenOrders is the kitchen display feed: open commandes the
// kitchen has received and not yet served.
func (s *Store) KitchenOrders() []domain.Commande {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orders []domain.Commande
	for _, c := range s.snap.commandes {
		if c.Statut != domain.StatutEnCours {
			continue
		}
		if c.EstadoCocina == domain.CocinaRecibido || c.EstadoCocina == domain.CocinaListo {
			orders = append(orders, c)
		}
	}
	return orders
}

func (s *Store) ReadyTakeawayOrders() []domain.Commande {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orders []domain.Commande
	for _, c := range s.snap.commandes {
		if c.IsTakeaway() && c.Statut == domain.StatutEnCours && c.EstadoCocina == domain.CocinaListo {
			orders = append(orders, c)
		}
	}
	return orders
}

func (s *Store) PendingTakeawayOrders() []domain.Commande {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orders []domain.Commande
	for _, c := range s.snap.commandes {
		if c.Statut == domain.StatutPendienteValidacion {
			orders = append(orders, c)
		}
	}
	return orders
}

// CommandeByTableID returns the table's open commande, or nil. Relies
// on the single-open-commande-per-table invariant; if that is ever
// violated the first match wins.
func (s *Store) CommandeByTableID(tableID string) *domain.Commande {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.snap.commandes {
		c := s.snap.commandes[i]
		if c.TableID == tableID && c.Statut == domain.StatutEnCours {
			return &c
		}
	}
	return nil
}

// LowStockInfo maps produit ids to the names of recette ingredients
// currently low on stock. Recomputed on every refresh, never stale
// relative to the snapshot.
func (s *Store) LowStockInfo() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string, len(s.snap.lowStock))
	for k, v := range s.snap.lowStock {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// ProduitCost prices the produit's recette against current ingredient
// costing, from the snapshot.
func (s *Store) ProduitCost(produitID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.snap.recettes {
		if s.snap.recettes[i].ProduitID == produitID {
			return inventory.ProductCost(&s.snap.recettes[i], s.snap.ingredients)
		}
	}
	return 0
}

func (s *Store) IngredientByID(id string) *domain.Ingredient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.snap.ingredients {
		if s.snap.ingredients[i].ID == id {
			ing := s.snap.ingredients[i]
			return &ing
		}
	}
	return nil
}

func (s *Store) ProduitByID(id string) *domain.Produit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.snap.produits {
		if s.snap.produits[i].ID == id {
			p := s.snap.produits[i]
			return &p
		}
	}
	return nil
}

func (s *Store) RecetteForProduit(produitID string) *domain.Recette {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.snap.recettes {
		if s.snap.recettes[i].ProduitID == produitID {
			r := s.snap.recettes[i]
			return &r
		}
	}
	return nil
}

// Login resolves the PIN and, on match, persists the role in the
// durable session slot and in memory. No match leaves both untouched.
func (s *Store) Login(ctx context.Context, pin string) (*domain.Role, error) {
	role, err := s.auth.Login(ctx, pin)
	if err != nil {
		s.setLastErr(err)
		return nil, err
	}
	if role == nil {
		return nil, nil
	}

	if err := s.session.SetRole(role.ID); err != nil {
		s.setLastErr(err)
		return nil, err
	}

	s.mu.Lock()
	s.currentRole = role
	s.mu.Unlock()

	return role, nil
}

func (s *Store) Logout() error {
	if err := s.session.Clear(); err != nil {
		return err
	}

	s.mu.Lock()
	s.currentRole = nil
	s.mu.Unlock()

	return nil
}

func (s *Store) CurrentRole() *domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRole
}
