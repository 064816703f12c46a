package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeData backs every fake repository so mutations made through the
// gateway show up on the next refresh, like the real collections do.
type fakeData struct {
	mu sync.Mutex

	ingredients []domain.Ingredient
	produits    []domain.Produit
	recettes    []domain.Recette
	ventes      []domain.Vente
	achats      []domain.Achat
	tables      []domain.Table
	categories  []domain.Categorie
	commandes   []domain.Commande
	roles       []domain.Role

	ingredientFetches int
	fetchGate         chan struct{}
	fetchErr          error
}

func (d *fakeData) onFetch() error {
	d.mu.Lock()
	gate := d.fetchGate
	err := d.fetchErr
	d.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

type fakeIngredients struct{ d *fakeData }

func (f fakeIngredients) Create(ctx context.Context, ing *domain.Ingredient) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	f.d.ingredients = append(f.d.ingredients, *ing)
	return nil
}

func (f fakeIngredients) GetByID(ctx context.Context, id string) (*domain.Ingredient, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.ingredients {
		if f.d.ingredients[i].ID == id {
			ing := f.d.ingredients[i]
			return &ing, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f fakeIngredients) GetAll(ctx context.Context) ([]domain.Ingredient, error) {
	if err := f.d.onFetch(); err != nil {
		return nil, err
	}
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	f.d.ingredientFetches++
	return append([]domain.Ingredient(nil), f.d.ingredients...), nil
}

func (f fakeIngredients) Update(ctx context.Context, ing *domain.Ingredient) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.ingredients {
		if f.d.ingredients[i].ID == ing.ID {
			f.d.ingredients[i] = *ing
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f fakeIngredients) Delete(ctx context.Context, id string) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.ingredients {
		if f.d.ingredients[i].ID == id {
			f.d.ingredients = append(f.d.ingredients[:i], f.d.ingredients[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeProduits struct{ d *fakeData }

func (f fakeProduits) CreateWithRecette(ctx context.Context, p *domain.Produit, items []domain.RecetteItem) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	f.d.produits = append(f.d.produits, *p)
	f.d.recettes = append(f.d.recettes, domain.Recette{ProduitID: p.ID, Items: items})
	return nil
}

func (f fakeProduits) GetByID(ctx context.Context, id string) (*domain.Produit, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.produits {
		if f.d.produits[i].ID == id {
			p := f.d.produits[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f fakeProduits) GetAll(ctx context.Context) ([]domain.Produit, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	return append([]domain.Produit(nil), f.d.produits...), nil
}

func (f fakeProduits) Update(ctx context.Context, p *domain.Produit) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.produits {
		if f.d.produits[i].ID == p.ID {
			f.d.produits[i] = *p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f fakeProduits) UpdateEstado(ctx context.Context, id, estado string) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.produits {
		if f.d.produits[i].ID == id {
			f.d.produits[i].Estado = estado
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f fakeProduits) DeleteWithRecette(ctx context.Context, id string) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.produits {
		if f.d.produits[i].ID == id {
			f.d.produits = append(f.d.produits[:i], f.d.produits[i+1:]...)
			break
		}
	}
	for i := range f.d.recettes {
		if f.d.recettes[i].ProduitID == id {
			f.d.recettes = append(f.d.recettes[:i], f.d.recettes[i+1:]...)
			break
		}
	}
	return nil
}

type fakeRecettes struct{ d *fakeData }

func (f fakeRecettes) GetByProduitID(ctx context.Context, id string) (*domain.Recette, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.recettes {
		if f.d.recettes[i].ProduitID == id {
			r := f.d.recettes[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f fakeRecettes) GetAll(ctx context.Context) ([]domain.Recette, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	return append([]domain.Recette(nil), f.d.recettes...), nil
}

func (f fakeRecettes) ReplaceItems(ctx context.Context, id string, items []domain.RecetteItem) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.recettes {
		if f.d.recettes[i].ProduitID == id {
			f.d.recettes[i].Items = items
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeVentes struct{ d *fakeData }

func (f fakeVentes) GetAll(ctx context.Context) ([]domain.Vente, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	return append([]domain.Vente(nil), f.d.ventes...), nil
}

type fakeAchats struct{ d *fakeData }

func (f fakeAchats) CreateWithLot(ctx context.Context, achat *domain.Achat, lot domain.Lot) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.ingredients {
		if f.d.ingredients[i].ID == achat.IngredientID {
			f.d.achats = append(f.d.achats, *achat)
			f.d.ingredients[i].Lots = append(f.d.ingredients[i].Lots, lot)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f fakeAchats) GetAll(ctx context.Context) ([]domain.Achat, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	return append([]domain.Achat(nil), f.d.achats...), nil
}

type fakeTables struct{ d *fakeData }

func (f fakeTables) Create(ctx context.Context, table *domain.Table) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	f.d.tables = append(f.d.tables, *table)
	return nil
}

func (f fakeTables) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.tables {
		if f.d.tables[i].ID == id {
			t := f.d.tables[i]
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f fakeTables) GetAll(ctx context.Context) ([]domain.Table, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	return append([]domain.Table(nil), f.d.tables...), nil
}

func (f fakeTables) Update(ctx context.Context, table *domain.Table) error { return nil }

func (f fakeTables) Delete(ctx context.Context, id string) error { return nil }

type fakeCategories struct{ d *fakeData }

func (f fakeCategories) Create(ctx context.Context, c *domain.Categorie) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	f.d.categories = append(f.d.categories, *c)
	return nil
}

func (f fakeCategories) GetAll(ctx context.Context) ([]domain.Categorie, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	return append([]domain.Categorie(nil), f.d.categories...), nil
}

func (f fakeCategories) Delete(ctx context.Context, id string) error { return nil }

type fakeCommandes struct{ d *fakeData }

func (f fakeCommandes) Create(ctx context.Context, c *domain.Commande) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	c.ID = primitive.NewObjectID()
	f.d.commandes = append(f.d.commandes, *c)
	return nil
}

func (f fakeCommandes) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Commande, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.commandes {
		if f.d.commandes[i].ID == id {
			c := f.d.commandes[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f fakeCommandes) GetActive(ctx context.Context) ([]domain.Commande, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	return append([]domain.Commande(nil), f.d.commandes...), nil
}

func (f fakeCommandes) UpdateItems(ctx context.Context, id primitive.ObjectID, items []domain.CommandeItem, couverts int, total float64) error {
	return nil
}

func (f fakeCommandes) SetStatut(ctx context.Context, id primitive.ObjectID, statut domain.StatutCommande) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for i := range f.d.commandes {
		if f.d.commandes[i].ID == id {
			f.d.commandes[i].Statut = statut
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f fakeCommandes) SetEstadoCocina(ctx context.Context, id primitive.ObjectID, estado domain.EstadoCocina, stamp *time.Time) error {
	return nil
}

func (f fakeCommandes) ValidateTakeaway(ctx context.Context, id primitive.ObjectID, stamp time.Time) error {
	return nil
}

func (f fakeCommandes) Finalize(ctx context.Context, id primitive.ObjectID) (*domain.Commande, error) {
	return nil, domain.ErrNotFound
}

func (f fakeCommandes) Delete(ctx context.Context, id primitive.ObjectID) error { return nil }

type fakeRoles struct{ d *fakeData }

func (f fakeRoles) GetAll(ctx context.Context) ([]domain.Role, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	return append([]domain.Role(nil), f.d.roles...), nil
}

func (f fakeRoles) SaveAll(ctx context.Context, roles []domain.Role) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	f.d.roles = roles
	return nil
}

// pinAuth maps PINs straight to roles, standing in for the bcrypt
// comparison the real authenticator does.
type pinAuth struct {
	d    *fakeData
	pins map[string]string
}

func (a pinAuth) Login(ctx context.Context, pin string) (*domain.Role, error) {
	roleID, ok := a.pins[pin]
	if !ok {
		return nil, nil
	}
	a.d.mu.Lock()
	defer a.d.mu.Unlock()
	for i := range a.d.roles {
		if a.d.roles[i].ID == roleID {
			role := a.d.roles[i]
			return &role, nil
		}
	}
	return nil, nil
}

type memorySession struct {
	mu   sync.Mutex
	role string
	set  bool
}

func (s *memorySession) Role() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role, s.set
}

func (s *memorySession) SetRole(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = id
	s.set = true
	return nil
}

func (s *memorySession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = ""
	s.set = false
	return nil
}

func seedData() *fakeData {
	return &fakeData{
		ingredients: []domain.Ingredient{
			{ID: "101", Nom: "Tortilla", Unite: "pièce", StockMinimum: 50, StockActuel: 10},
			{ID: "110", Nom: "Frites", Unite: "kg", StockMinimum: 10, StockActuel: 40},
		},
		produits: []domain.Produit{
			{ID: "1001", NomProduit: "Taco au Bœuf", PrixVente: 8.5, Estado: domain.EstadoDisponible},
			{ID: "1003", NomProduit: "Portion de Frites", PrixVente: 3.5, Estado: domain.EstadoDisponible},
		},
		recettes: []domain.Recette{
			{ProduitID: "1001", Items: []domain.RecetteItem{{IngredientID: "101", QteUtilisee: 2}}},
			{ProduitID: "1003", Items: []domain.RecetteItem{{IngredientID: "110", QteUtilisee: 0.25}}},
		},
		tables: []domain.Table{
			{ID: "1", Nom: "Table 1", Capacite: 4},
			{ID: "2", Nom: "Table 2", Capacite: 4},
		},
		roles: []domain.Role{
			{ID: "admin", Nom: "Administrateur"},
			{ID: "mesero", Nom: "Service en salle"},
		},
	}
}

func newTestStore(d *fakeData, sess *memorySession) *Store {
	gateway := Gateway{
		Ingredients: fakeIngredients{d},
		Produits:    fakeProduits{d},
		Recettes:    fakeRecettes{d},
		Ventes:      fakeVentes{d},
		Achats:      fakeAchats{d},
		Tables:      fakeTables{d},
		Categories:  fakeCategories{d},
		Commandes:   fakeCommandes{d},
		Roles:       fakeRoles{d},
	}
	auth := pinAuth{d: d, pins: map[string]string{"1234": "admin", "5678": "mesero"}}
	return NewStore(gateway, auth, sess, zap.NewNop().Sugar())
}

func TestLoadBuildsSnapshotAndDerivedViews(t *testing.T) {
	d := seedData()
	store := newTestStore(d, &memorySession{})

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if store.Loading() {
		t.Fatal("loading flag still set after Load returned")
	}

	if got := len(store.Ingredients()); got != 2 {
		t.Fatalf("expected 2 ingredients, got %d", got)
	}

	// tortilla stock 10 <= minimum 50, so the taco is flagged
	low := store.LowStockInfo()
	if names := low["1001"]; len(names) != 1 || names[0] != "Tortilla" {
		t.Fatalf("expected taco flagged for Tortilla, got %v", names)
	}
	if _, flagged := low["1003"]; flagged {
		t.Fatal("frites flagged despite healthy stock")
	}

	// tortilla has no lots so its cost contribution is zero
	if cost := store.ProduitCost("1001"); cost != 0 {
		t.Fatalf("expected zero cost without lots, got %v", cost)
	}
}

func TestCommandeByTableIDIgnoresClosedCommandes(t *testing.T) {
	d := seedData()
	d.commandes = []domain.Commande{
		{ID: primitive.NewObjectID(), TableID: "1", Statut: domain.StatutTerminee},
	}
	store := newTestStore(d, &memorySession{})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if c := store.CommandeByTableID("1"); c != nil {
		t.Fatalf("closed commande surfaced as open: %+v", c)
	}

	open := domain.Commande{ID: primitive.NewObjectID(), TableID: "1", Statut: domain.StatutEnCours}
	d.mu.Lock()
	d.commandes = append(d.commandes, open)
	d.mu.Unlock()
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	c := store.CommandeByTableID("1")
	if c == nil || c.ID != open.ID {
		t.Fatalf("expected the open commande, got %+v", c)
	}
}

func TestDoRefreshesAfterSuccessfulMutation(t *testing.T) {
	d := seedData()
	store := newTestStore(d, &memorySession{})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	err := store.Do(context.Background(), func(ctx context.Context) error {
		return store.Gateway().Ingredients.Create(ctx, &domain.Ingredient{ID: "120", Nom: "Coriandre", Unite: "kg"})
	})
	if err != nil {
		t.Fatalf("do failed: %v", err)
	}

	if got := len(store.Ingredients()); got != 3 {
		t.Fatalf("snapshot not refreshed after mutation, got %d ingredients", got)
	}
	if store.LastError() != nil {
		t.Fatalf("unexpected last error: %v", store.LastError())
	}
}

func TestDoFailureRecordsErrorAndSkipsRefresh(t *testing.T) {
	d := seedData()
	store := newTestStore(d, &memorySession{})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	d.mu.Lock()
	d.ingredientFetches = 0
	d.mu.Unlock()

	boom := errors.New("write rejected")
	err := store.Do(context.Background(), func(ctx context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected the mutation error back, got %v", err)
	}

	if !errors.Is(store.LastError(), boom) {
		t.Fatalf("last error not recorded, got %v", store.LastError())
	}
	d.mu.Lock()
	fetches := d.ingredientFetches
	d.mu.Unlock()
	if fetches != 0 {
		t.Fatalf("failed mutation still triggered %d refresh fetches", fetches)
	}
}

func TestRefreshFailureKeepsOldSnapshot(t *testing.T) {
	d := seedData()
	store := newTestStore(d, &memorySession{})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	d.mu.Lock()
	d.fetchErr = errors.New("gateway down")
	d.mu.Unlock()

	if err := store.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh to fail")
	}
	if store.LastError() == nil {
		t.Fatal("refresh failure not recorded")
	}
	if got := len(store.Ingredients()); got != 2 {
		t.Fatalf("failed refresh corrupted the snapshot, got %d ingredients", got)
	}
}

func TestConcurrentRefreshesCoalesce(t *testing.T) {
	d := seedData()
	store := newTestStore(d, &memorySession{})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	gate := make(chan struct{})
	d.mu.Lock()
	d.ingredientFetches = 0
	d.fetchGate = gate
	d.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Refresh(context.Background())
		}()
	}

	// let the callers pile onto the in-flight refresh before releasing it
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	d.mu.Lock()
	d.fetchGate = nil
	fetches := d.ingredientFetches
	d.mu.Unlock()
	if fetches >= 5 {
		t.Fatalf("refreshes did not coalesce: %d fetches for 5 callers", fetches)
	}
}

func TestLoginUpdatesSessionOnlyOnMatch(t *testing.T) {
	d := seedData()
	sess := &memorySession{}
	store := newTestStore(d, sess)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	role, err := store.Login(context.Background(), "0000")
	if err != nil {
		t.Fatalf("login errored on bad pin: %v", err)
	}
	if role != nil {
		t.Fatalf("bad pin resolved to role %q", role.ID)
	}
	if _, set := sess.Role(); set {
		t.Fatal("failed login touched the session")
	}
	if store.CurrentRole() != nil {
		t.Fatal("failed login set the current role")
	}

	role, err = store.Login(context.Background(), "1234")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if role == nil || role.ID != "admin" {
		t.Fatalf("expected admin role, got %+v", role)
	}
	if got, _ := sess.Role(); got != "admin" {
		t.Fatalf("session holds %q, expected admin", got)
	}
	if current := store.CurrentRole(); current == nil || current.ID != "admin" {
		t.Fatalf("current role not set, got %+v", current)
	}
}

func TestSessionRoleSurvivesRefresh(t *testing.T) {
	d := seedData()
	sess := &memorySession{}
	store := newTestStore(d, sess)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if _, err := store.Login(context.Background(), "5678"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	current := store.CurrentRole()
	if current == nil || current.ID != "mesero" {
		t.Fatalf("role lost across refresh, got %+v", current)
	}

	if err := store.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if store.CurrentRole() != nil {
		t.Fatal("role survived logout")
	}
	if _, set := sess.Role(); set {
		t.Fatal("session survived logout")
	}
}

func TestSubscribeReceivesRefreshTicks(t *testing.T) {
	d := seedData()
	store := newTestStore(d, &memorySession{})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	ch := store.Subscribe()
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no tick after refresh")
	}
}
