package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"github.com/kiwis93160/POS-OUIOUI/internal/queue"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeCommandeRepo keeps commandes and ventes in memory and mirrors the
// gateway's transactional guarantees: Create rejects a second open
// commande on the same table, Finalize emits ventes and flips the
// statut together or not at all.
type fakeCommandeRepo struct {
	commandes map[primitive.ObjectID]*domain.Commande
	ventes    []domain.Vente
	numero    int

	failFinalize bool
	failValidate bool
}

func newFakeCommandeRepo() *fakeCommandeRepo {
	return &fakeCommandeRepo{commandes: map[primitive.ObjectID]*domain.Commande{}}
}

func (f *fakeCommandeRepo) Create(ctx context.Context, commande *domain.Commande) error {
	if commande.Statut == domain.StatutEnCours {
		for _, existing := range f.commandes {
			if existing.TableID == commande.TableID && existing.Statut == domain.StatutEnCours {
				return domain.ErrTableOccupied
			}
		}
	}

	f.numero++
	commande.ID = primitive.NewObjectID()
	commande.Numero = f.numero
	copied := *commande
	f.commandes[commande.ID] = &copied
	return nil
}

func (f *fakeCommandeRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Commande, error) {
	commande, ok := f.commandes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *commande
	return &copied, nil
}

func (f *fakeCommandeRepo) GetActive(ctx context.Context) ([]domain.Commande, error) {
	var active []domain.Commande
	for _, c := range f.commandes {
		if c.Statut == domain.StatutEnCours || c.Statut == domain.StatutPendienteValidacion {
			active = append(active, *c)
		}
	}
	return active, nil
}

func (f *fakeCommandeRepo) UpdateItems(ctx context.Context, id primitive.ObjectID, items []domain.CommandeItem, couverts int, total float64) error {
	commande, ok := f.commandes[id]
	if !ok {
		return domain.ErrNotFound
	}
	commande.Items = items
	commande.Couverts = couverts
	commande.Total = total
	return nil
}

func (f *fakeCommandeRepo) SetStatut(ctx context.Context, id primitive.ObjectID, statut domain.StatutCommande) error {
	commande, ok := f.commandes[id]
	if !ok {
		return domain.ErrNotFound
	}
	commande.Statut = statut
	return nil
}

func (f *fakeCommandeRepo) SetEstadoCocina(ctx context.Context, id primitive.ObjectID, estado domain.EstadoCocina, stamp *time.Time) error {
	commande, ok := f.commandes[id]
	if !ok {
		return domain.ErrNotFound
	}
	commande.EstadoCocina = estado
	switch estado {
	case domain.CocinaRecibido:
		commande.DateEnvoiCuisine = stamp
	case domain.CocinaListo:
		commande.DateListoCuisine = stamp
	}
	return nil
}

func (f *fakeCommandeRepo) ValidateTakeaway(ctx context.Context, id primitive.ObjectID, stamp time.Time) error {
	commande, ok := f.commandes[id]
	if !ok {
		return domain.ErrNotPendingValidation
	}

	if f.failValidate {
		// conditional write rejected, nothing changes
		return errors.New("write rejected")
	}

	if commande.Statut != domain.StatutPendienteValidacion {
		return domain.ErrNotPendingValidation
	}
	commande.Statut = domain.StatutEnCours
	commande.EstadoCocina = domain.CocinaRecibido
	commande.DateEnvoiCuisine = &stamp
	return nil
}

func (f *fakeCommandeRepo) Finalize(ctx context.Context, id primitive.ObjectID) (*domain.Commande, error) {
	commande, ok := f.commandes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if f.failFinalize {
		// nothing written, like an aborted transaction
		return nil, errors.New("transaction aborted")
	}

	for _, item := range commande.Items {
		f.ventes = append(f.ventes, domain.Vente{
			CommandeID:     id,
			ProduitID:      item.Produit.ID,
			Quantite:       item.Quantite,
			PrixTotalVente: item.Produit.PrixVente * float64(item.Quantite),
			DateVente:      time.Now(),
		})
	}
	commande.Statut = domain.StatutTerminee

	copied := *commande
	return &copied, nil
}

func (f *fakeCommandeRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.commandes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.commandes, id)
	return nil
}

type fakeBroker struct {
	published map[string][][]byte
	failAll   bool
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{published: map[string][][]byte{}}
}

func (f *fakeBroker) Publish(ctx context.Context, queueName string, message []byte) error {
	if f.failAll {
		return errors.New("broker unavailable")
	}
	f.published[queueName] = append(f.published[queueName], message)
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, queueName string, handler queue.MessageHandler) error {
	return nil
}

func (f *fakeBroker) Close() error { return nil }

func newTestCommandeService(repo *fakeCommandeRepo, broker *fakeBroker) *CommandeService {
	return NewCommandeService(repo, broker, zap.NewNop().Sugar())
}

func tacoBoeuf() domain.Produit {
	return domain.Produit{ID: "1001", NomProduit: "Taco au Bœuf", PrixVente: 8.5, Estado: domain.EstadoDisponible}
}

func frites() domain.Produit {
	return domain.Produit{ID: "1003", NomProduit: "Portion de Frites", PrixVente: 3.5, Estado: domain.EstadoDisponible}
}

func TestCreateRejectsOccupiedTable(t *testing.T) {
	repo := newFakeCommandeRepo()
	svc := newTestCommandeService(repo, newFakeBroker())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "4", 2); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.Create(ctx, "4", 3)
	if !errors.Is(err, domain.ErrTableOccupied) {
		t.Fatalf("expected ErrTableOccupied, got %v", err)
	}

	// a closed commande frees the table
	if _, err := svc.Create(ctx, "5", 2); err != nil {
		t.Fatalf("create on free table failed: %v", err)
	}
}

func TestUpdateRecomputesTotal(t *testing.T) {
	repo := newFakeCommandeRepo()
	svc := newTestCommandeService(repo, newFakeBroker())
	ctx := context.Background()

	commande, err := svc.Create(ctx, "1", 2)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	items := []domain.CommandeItem{
		{Produit: tacoBoeuf(), Quantite: 2},
		{Produit: frites(), Quantite: 1},
	}
	if err := svc.UpdateCommande(ctx, commande.ID, items, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	updated, err := svc.GetByID(ctx, commande.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.Total != 20.5 {
		t.Fatalf("expected total 20.5, got %v", updated.Total)
	}
	if updated.Couverts != 2 {
		t.Fatalf("couverts changed without being asked: %d", updated.Couverts)
	}
}

func TestUpdateRejectsClosedCommande(t *testing.T) {
	repo := newFakeCommandeRepo()
	svc := newTestCommandeService(repo, newFakeBroker())
	ctx := context.Background()

	commande, _ := svc.Create(ctx, "1", 2)
	if err := repo.SetStatut(ctx, commande.ID, domain.StatutTerminee); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	err := svc.UpdateCommande(ctx, commande.ID, []domain.CommandeItem{{Produit: frites(), Quantite: 1}}, nil)
	if !errors.Is(err, domain.ErrCommandeNotOpen) {
		t.Fatalf("expected ErrCommandeNotOpen, got %v", err)
	}
}

func TestKitchenTransitionsAreGuarded(t *testing.T) {
	repo := newFakeCommandeRepo()
	svc := newTestCommandeService(repo, newFakeBroker())
	ctx := context.Background()

	commande, _ := svc.Create(ctx, "2", 4)

	// ready before the kitchen ever received it
	if err := svc.MarkReady(ctx, commande.ID); !errors.Is(err, domain.ErrKitchenStateInvalid) {
		t.Fatalf("expected ErrKitchenStateInvalid, got %v", err)
	}
	// served before ready
	if err := svc.AcknowledgeReady(ctx, commande.ID); !errors.Is(err, domain.ErrKitchenStateInvalid) {
		t.Fatalf("expected ErrKitchenStateInvalid, got %v", err)
	}

	if err := svc.SendToKitchen(ctx, commande.ID); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := svc.MarkReady(ctx, commande.ID); err != nil {
		t.Fatalf("ready failed: %v", err)
	}
	if err := svc.AcknowledgeReady(ctx, commande.ID); err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}

	final, _ := svc.GetByID(ctx, commande.ID)
	if final.EstadoCocina != domain.CocinaServido {
		t.Fatalf("expected servido, got %q", final.EstadoCocina)
	}
	if final.DateEnvoiCuisine == nil || final.DateListoCuisine == nil {
		t.Fatal("kitchen timestamps were not recorded")
	}
}

func TestFinalizeEmitsVentesAtSnapshotPrices(t *testing.T) {
	repo := newFakeCommandeRepo()
	broker := newFakeBroker()
	svc := newTestCommandeService(repo, broker)
	ctx := context.Background()

	commande, _ := svc.Create(ctx, "3", 2)
	items := []domain.CommandeItem{
		{Produit: tacoBoeuf(), Quantite: 2},
		{Produit: frites(), Quantite: 1},
	}
	if err := svc.UpdateCommande(ctx, commande.ID, items, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	finalized, err := svc.Finalize(ctx, commande.ID)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if finalized.Statut != domain.StatutTerminee {
		t.Fatalf("expected terminee, got %q", finalized.Statut)
	}

	if len(repo.ventes) != 2 {
		t.Fatalf("expected 2 ventes, got %d", len(repo.ventes))
	}
	byProduit := map[string]float64{}
	for _, v := range repo.ventes {
		byProduit[v.ProduitID] = v.PrixTotalVente
	}
	if byProduit["1001"] != 17.0 {
		t.Fatalf("expected vente of 17.0 for produit 1001, got %v", byProduit["1001"])
	}
	if byProduit["1003"] != 3.5 {
		t.Fatalf("expected vente of 3.5 for produit 1003, got %v", byProduit["1003"])
	}

	// finalize again must fail, the commande is closed
	if _, err := svc.Finalize(ctx, commande.ID); !errors.Is(err, domain.ErrCommandeNotOpen) {
		t.Fatalf("expected ErrCommandeNotOpen on double finalize, got %v", err)
	}
}

func TestFinalizeRollbackLeavesNoVentes(t *testing.T) {
	repo := newFakeCommandeRepo()
	svc := newTestCommandeService(repo, newFakeBroker())
	ctx := context.Background()

	commande, _ := svc.Create(ctx, "6", 2)
	items := []domain.CommandeItem{{Produit: tacoBoeuf(), Quantite: 1}}
	if err := svc.UpdateCommande(ctx, commande.ID, items, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	repo.failFinalize = true
	if _, err := svc.Finalize(ctx, commande.ID); err == nil {
		t.Fatal("expected finalize to fail")
	}

	if len(repo.ventes) != 0 {
		t.Fatalf("aborted finalize left %d ventes behind", len(repo.ventes))
	}
	after, _ := svc.GetByID(ctx, commande.ID)
	if after.Statut != domain.StatutEnCours {
		t.Fatalf("aborted finalize changed statut to %q", after.Statut)
	}
}

func TestPaymentRequiresFinalizedCommande(t *testing.T) {
	repo := newFakeCommandeRepo()
	svc := newTestCommandeService(repo, newFakeBroker())
	ctx := context.Background()

	commande, _ := svc.Create(ctx, "7", 2)

	if err := svc.MarkPaid(ctx, commande.ID); !errors.Is(err, domain.ErrCommandeNotFinalized) {
		t.Fatalf("expected ErrCommandeNotFinalized, got %v", err)
	}
	if err := svc.CancelUnpaid(ctx, commande.ID); !errors.Is(err, domain.ErrCommandeNotFinalized) {
		t.Fatalf("expected ErrCommandeNotFinalized, got %v", err)
	}

	items := []domain.CommandeItem{{Produit: frites(), Quantite: 2}}
	if err := svc.UpdateCommande(ctx, commande.ID, items, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := svc.Finalize(ctx, commande.ID); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if err := svc.MarkPaid(ctx, commande.ID); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	paid, _ := svc.GetByID(ctx, commande.ID)
	if paid.Statut != domain.StatutPayee {
		t.Fatalf("expected payee, got %q", paid.Statut)
	}
}

func TestCancelEmptyOnlyDeletesEmptyCommandes(t *testing.T) {
	repo := newFakeCommandeRepo()
	svc := newTestCommandeService(repo, newFakeBroker())
	ctx := context.Background()

	withItems, _ := svc.Create(ctx, "8", 2)
	items := []domain.CommandeItem{{Produit: tacoBoeuf(), Quantite: 1}}
	if err := svc.UpdateCommande(ctx, withItems.ID, items, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if err := svc.CancelEmpty(ctx, withItems.ID); !errors.Is(err, domain.ErrCommandeNotEmpty) {
		t.Fatalf("expected ErrCommandeNotEmpty, got %v", err)
	}

	empty, _ := svc.Create(ctx, "9", 2)
	if err := svc.CancelEmpty(ctx, empty.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := svc.GetByID(ctx, empty.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTakeawayValidationFlow(t *testing.T) {
	repo := newFakeCommandeRepo()
	broker := newFakeBroker()
	svc := newTestCommandeService(repo, broker)
	ctx := context.Background()

	items := []domain.CommandeItem{{Produit: tacoBoeuf(), Quantite: 2}}
	customer := domain.TakeawayCustomer{Nom: "Luc", Telephone: "0601020304"}

	commande, err := svc.SubmitTakeawayForValidation(ctx, items, customer)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if commande.Statut != domain.StatutPendienteValidacion {
		t.Fatalf("expected pendiente_validacion, got %q", commande.Statut)
	}
	if commande.TableID != domain.TableAEmporter {
		t.Fatalf("takeaway bound to table %q", commande.TableID)
	}
	if commande.Total != 17.0 {
		t.Fatalf("expected total 17.0, got %v", commande.Total)
	}

	// validating a regular commande must be rejected
	regular, _ := svc.Create(ctx, "1", 2)
	if err := svc.ValidateAndSendTakeaway(ctx, regular.ID); !errors.Is(err, domain.ErrNotPendingValidation) {
		t.Fatalf("expected ErrNotPendingValidation, got %v", err)
	}

	if err := svc.ValidateAndSendTakeaway(ctx, commande.ID); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	validated, _ := svc.GetByID(ctx, commande.ID)
	if validated.Statut != domain.StatutEnCours {
		t.Fatalf("expected en_cours, got %q", validated.Statut)
	}
	if validated.EstadoCocina != domain.CocinaRecibido {
		t.Fatalf("expected recibido, got %q", validated.EstadoCocina)
	}
	if validated.DateEnvoiCuisine == nil {
		t.Fatal("kitchen-sent timestamp not recorded on validation")
	}
}

func TestFailedTakeawayValidationStaysPending(t *testing.T) {
	repo := newFakeCommandeRepo()
	svc := newTestCommandeService(repo, newFakeBroker())
	ctx := context.Background()

	items := []domain.CommandeItem{{Produit: tacoBoeuf(), Quantite: 1}}
	commande, err := svc.SubmitTakeawayForValidation(ctx, items, domain.TakeawayCustomer{Nom: "Ana"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	repo.failValidate = true
	if err := svc.ValidateAndSendTakeaway(ctx, commande.ID); err == nil {
		t.Fatal("expected validation to fail")
	}

	// the rejected write must leave the commande exactly where it was:
	// still pending, never routed to the kitchen
	after, _ := svc.GetByID(ctx, commande.ID)
	if after.Statut != domain.StatutPendienteValidacion {
		t.Fatalf("failed validation changed statut to %q", after.Statut)
	}
	if after.EstadoCocina != domain.CocinaNone {
		t.Fatalf("failed validation routed the commande to the kitchen: %q", after.EstadoCocina)
	}
	if after.DateEnvoiCuisine != nil {
		t.Fatal("failed validation stamped date_envoi_cuisine")
	}

	repo.failValidate = false
	if err := svc.ValidateAndSendTakeaway(ctx, commande.ID); err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
}

func TestBrokerOutageDoesNotFailTransitions(t *testing.T) {
	repo := newFakeCommandeRepo()
	broker := newFakeBroker()
	broker.failAll = true
	svc := newTestCommandeService(repo, broker)
	ctx := context.Background()

	commande, _ := svc.Create(ctx, "1", 2)
	if err := svc.SendToKitchen(ctx, commande.ID); err != nil {
		t.Fatalf("send failed despite broker being informational: %v", err)
	}

	after, _ := svc.GetByID(ctx, commande.ID)
	if after.EstadoCocina != domain.CocinaRecibido {
		t.Fatalf("expected recibido, got %q", after.EstadoCocina)
	}
}

// full service flow: open, order, kitchen round-trip, finalize, pay
func TestCommandeLifecycle(t *testing.T) {
	repo := newFakeCommandeRepo()
	svc := newTestCommandeService(repo, newFakeBroker())
	ctx := context.Background()

	commande, err := svc.Create(ctx, "3", 2)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	items := []domain.CommandeItem{
		{Produit: tacoBoeuf(), Quantite: 2},
		{Produit: frites(), Quantite: 1},
	}
	if err := svc.UpdateCommande(ctx, commande.ID, items, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := svc.SendToKitchen(ctx, commande.ID); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := svc.MarkReady(ctx, commande.ID); err != nil {
		t.Fatalf("ready failed: %v", err)
	}
	if err := svc.AcknowledgeReady(ctx, commande.ID); err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}

	finalized, err := svc.Finalize(ctx, commande.ID)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if finalized.Total != 20.5 {
		t.Fatalf("expected total 20.5, got %v", finalized.Total)
	}
	if len(repo.ventes) != 2 {
		t.Fatalf("expected 2 ventes, got %d", len(repo.ventes))
	}

	if err := svc.MarkPaid(ctx, commande.ID); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	paid, _ := svc.GetByID(ctx, commande.ID)
	if paid.Statut != domain.StatutPayee {
		t.Fatalf("expected payee, got %q", paid.Statut)
	}
}
