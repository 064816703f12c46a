// Package cache keeps one in-memory snapshot of every collection and
// the views derived from it. Observers read the snapshot instead of
// hitting the gateway; every mutation refreshes it wholesale.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"github.com/kiwis93160/POS-OUIOUI/internal/inventory"
	"github.com/kiwis93160/POS-OUIOUI/internal/repo"
	"github.com/kiwis93160/POS-OUIOUI/internal/session"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Gateway bundles the per-collection fetchers the snapshot is built
// from.
type Gateway struct {
	Ingredients repo.IngredientRepository
	Produits    repo.ProduitRepository
	Recettes    repo.RecetteRepository
	Ventes      repo.VenteRepository
	Achats      repo.AchatRepository
	Tables      repo.TableRepository
	Categories  repo.CategorieRepository
	Commandes   repo.CommandeRepository
	Roles       repo.RoleRepository
}

// Authenticator resolves a PIN to a role; a nil role means no match.
type Authenticator interface {
	Login(ctx context.Context, pin string) (*domain.Role, error)
}

type snapshot struct {
	ingredients []domain.Ingredient
	produits    []domain.Produit
	recettes    []domain.Recette
	ventes      []domain.Vente
	achats      []domain.Achat
	tables      []domain.Table
	categories  []domain.Categorie
	commandes   []domain.Commande
	roles       []domain.Role
	lowStock    map[string][]string
}

type Store struct {
	gateway Gateway
	auth    Authenticator
	session session.Store
	logger  *zap.SugaredLogger

	mu          sync.RWMutex
	snap        snapshot
	currentRole *domain.Role
	lastErr     error
	loading     bool

	// coalesces overlapping refreshes so rapid mutations cannot
	// interleave their fetches and overwrite with stale data
	flight singleflight.Group

	subsMu sync.Mutex
	subs   []chan struct{}
}

func NewStore(gateway Gateway, auth Authenticator, sess session.Store, logger *zap.SugaredLogger) *Store {
	return &Store{
		gateway: gateway,
		auth:    auth,
		session: sess,
		logger:  logger,
		snap:    snapshot{lowStock: map[string][]string{}},
	}
}

// Gateway exposes the underlying repositories so callers can run
// mutations through Do against the same collections the snapshot is
// built from.
func (s *Store) Gateway() Gateway {
	return s.gateway
}

// Load performs the one-shot initial fetch. Only this call toggles the
// loading flag; later refreshes are silent so observers do not flicker
// on every mutation.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	err := s.Refresh(ctx)

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	return err
}

// Refresh fetches every collection concurrently and swaps the whole
// snapshot in one step; observers never see a mix of old and new
// collections.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, _ := s.flight.Do("refresh", func() (interface{}, error) {
		return nil, s.refresh(ctx)
	})
	if err != nil {
		s.setLastErr(err)
		return err
	}

	s.notify()
	return nil
}

func (s *Store) refresh(ctx context.Context) error {
	var next snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { next.ingredients, err = s.gateway.Ingredients.GetAll(gctx); return })
	g.Go(func() (err error) { next.produits, err = s.gateway.Produits.GetAll(gctx); return })
	g.Go(func() (err error) { next.recettes, err = s.gateway.Recettes.GetAll(gctx); return })
	g.Go(func() (err error) { next.ventes, err = s.gateway.Ventes.GetAll(gctx); return })
	g.Go(func() (err error) { next.achats, err = s.gateway.Achats.GetAll(gctx); return })
	g.Go(func() (err error) { next.tables, err = s.gateway.Tables.GetAll(gctx); return })
	g.Go(func() (err error) { next.categories, err = s.gateway.Categories.GetAll(gctx); return })
	g.Go(func() (err error) { next.commandes, err = s.gateway.Commandes.GetActive(gctx); return })
	g.Go(func() (err error) { next.roles, err = s.gateway.Roles.GetAll(gctx); return })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to refresh snapshot: %w", err)
	}

	next.lowStock = inventory.LowStockByProduct(next.produits, next.recettes, next.ingredients)

	s.mu.Lock()
	s.snap = next
	s.lastErr = nil
	if roleID, ok := s.session.Role(); ok {
		s.currentRole = findRole(next.roles, roleID)
	} else {
		s.currentRole = nil
	}
	s.mu.Unlock()

	return nil
}

// Do wraps a mutating gateway call: on failure the error is recorded
// and no refresh happens; on success the snapshot is rebuilt before
// returning.
func (s *Store) Do(ctx context.Context, mutation func(ctx context.Context) error) error {
	if err := mutation(ctx); err != nil {
		s.setLastErr(err)
		return err
	}
	return s.Refresh(ctx)
}

func (s *Store) setLastErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// Subscribe returns a channel that receives a tick after every
// successful refresh. Slow subscribers miss ticks instead of blocking
// the store.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subsMu.Lock()
	s.subs = append(s.subs, ch)
	s.subsMu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func findRole(roles []domain.Role, id string) *domain.Role {
	for i := range roles {
		if roles[i].ID == id {
			return &roles[i]
		}
	}
	return nil
}
