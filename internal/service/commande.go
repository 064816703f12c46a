package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"github.com/kiwis93160/POS-OUIOUI/internal/queue"
	"github.com/kiwis93160/POS-OUIOUI/internal/repo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CommandeService drives a commande through its lifecycle. Every
// transition verifies its own precondition and fails with a named
// error instead of trusting the caller.
type CommandeService struct {
	commandes repo.CommandeRepository
	broker    queue.Broker
	logger    *zap.SugaredLogger
}

func NewCommandeService(
	commandes repo.CommandeRepository,
	broker queue.Broker,
	logger *zap.SugaredLogger,
) *CommandeService {
	return &CommandeService{
		commandes: commandes,
		broker:    broker,
		logger:    logger,
	}
}

func (s *CommandeService) Create(ctx context.Context, tableID string, couverts int) (*domain.Commande, error) {
	commande := &domain.Commande{
		TableID:      tableID,
		Couverts:     couverts,
		Items:        []domain.CommandeItem{},
		Total:        0,
		Statut:       domain.StatutEnCours,
		DateCreation: time.Now(),
	}

	if err := s.commandes.Create(ctx, commande); err != nil {
		return nil, fmt.Errorf("failed to create commande: %w", err)
	}

	s.logger.Infow("commande created", "commande_id", commande.ID.Hex(), "table_id", tableID, "numero", commande.Numero)

	return commande, nil
}

func (s *CommandeService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Commande, error) {
	return s.commandes.GetByID(ctx, id)
}

// UpdateCommande replaces the item list and/or couverts wholesale. The
// total is always recomputed from the item snapshots, never taken from
// the caller.
func (s *CommandeService) UpdateCommande(ctx context.Context, id primitive.ObjectID, items []domain.CommandeItem, couverts *int) error {
	commande, err := s.commandes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !commande.IsOpen() {
		return domain.ErrCommandeNotOpen
	}

	if items == nil {
		items = commande.Items
	}
	newCouverts := commande.Couverts
	if couverts != nil {
		newCouverts = *couverts
	}

	total := domain.ComputeTotal(items)
	if err := s.commandes.UpdateItems(ctx, id, items, newCouverts, total); err != nil {
		return fmt.Errorf("failed to update commande: %w", err)
	}

	return nil
}

func (s *CommandeService) SendToKitchen(ctx context.Context, id primitive.ObjectID) error {
	commande, err := s.commandes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !commande.IsOpen() {
		return domain.ErrCommandeNotOpen
	}

	now := time.Now()
	if err := s.commandes.SetEstadoCocina(ctx, id, domain.CocinaRecibido, &now); err != nil {
		return fmt.Errorf("failed to send commande to kitchen: %w", err)
	}

	s.publishKitchenEvent(ctx, commande, domain.EventOrderSentToKitchen, domain.CocinaRecibido)

	return nil
}

func (s *CommandeService) MarkReady(ctx context.Context, id primitive.ObjectID) error {
	commande, err := s.commandes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if commande.EstadoCocina != domain.CocinaRecibido {
		return domain.ErrKitchenStateInvalid
	}

	now := time.Now()
	if err := s.commandes.SetEstadoCocina(ctx, id, domain.CocinaListo, &now); err != nil {
		return fmt.Errorf("failed to mark commande ready: %w", err)
	}

	s.publishKitchenEvent(ctx, commande, domain.EventOrderReady, domain.CocinaListo)

	return nil
}

func (s *CommandeService) AcknowledgeReady(ctx context.Context, id primitive.ObjectID) error {
	commande, err := s.commandes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if commande.EstadoCocina != domain.CocinaListo {
		return domain.ErrKitchenStateInvalid
	}

	if err := s.commandes.SetEstadoCocina(ctx, id, domain.CocinaServido, nil); err != nil {
		return fmt.Errorf("failed to acknowledge commande: %w", err)
	}

	s.publishKitchenEvent(ctx, commande, domain.EventOrderServed, domain.CocinaServido)

	return nil
}

// Finalize turns the commande's items into permanent ventes and closes
// it for further edits. The emission and the statut flip are one
// gateway transaction; concurrent finalize isolation is the gateway's.
func (s *CommandeService) Finalize(ctx context.Context, id primitive.ObjectID) (*domain.Commande, error) {
	commande, err := s.commandes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !commande.IsOpen() {
		return nil, domain.ErrCommandeNotOpen
	}

	finalized, err := s.commandes.Finalize(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize commande: %w", err)
	}

	s.logger.Infow("commande finalized", "commande_id", id.Hex(), "ventes", len(finalized.Items), "total", finalized.Total)
	s.publishKitchenEvent(ctx, finalized, domain.EventOrderFinalized, finalized.EstadoCocina)

	return finalized, nil
}

func (s *CommandeService) MarkPaid(ctx context.Context, id primitive.ObjectID) error {
	commande, err := s.commandes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if commande.Statut != domain.StatutTerminee {
		return domain.ErrCommandeNotFinalized
	}

	if err := s.commandes.SetStatut(ctx, id, domain.StatutPayee); err != nil {
		return fmt.Errorf("failed to mark commande paid: %w", err)
	}

	return nil
}

func (s *CommandeService) CancelUnpaid(ctx context.Context, id primitive.ObjectID) error {
	commande, err := s.commandes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if commande.Statut != domain.StatutTerminee {
		return domain.ErrCommandeNotFinalized
	}

	if err := s.commandes.SetStatut(ctx, id, domain.StatutAnnulee); err != nil {
		return fmt.Errorf("failed to cancel commande: %w", err)
	}

	return nil
}

// CancelEmpty hard-deletes an open commande that never got items. A
// commande with items is left untouched.
func (s *CommandeService) CancelEmpty(ctx context.Context, id primitive.ObjectID) error {
	commande, err := s.commandes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !commande.IsOpen() {
		return domain.ErrCommandeNotOpen
	}
	if len(commande.Items) > 0 {
		return domain.ErrCommandeNotEmpty
	}

	if err := s.commandes.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete empty commande: %w", err)
	}

	return nil
}

// SubmitTakeawayForValidation parks a raw takeaway order until staff
// approve it. It becomes a regular commande on validation.
func (s *CommandeService) SubmitTakeawayForValidation(ctx context.Context, items []domain.CommandeItem, customer domain.TakeawayCustomer) (*domain.Commande, error) {
	commande := &domain.Commande{
		TableID:      domain.TableAEmporter,
		Items:        items,
		Total:        domain.ComputeTotal(items),
		Statut:       domain.StatutPendienteValidacion,
		DateCreation: time.Now(),
		Customer:     &customer,
	}

	if err := s.commandes.Create(ctx, commande); err != nil {
		return nil, fmt.Errorf("failed to submit takeaway commande: %w", err)
	}

	s.logger.Infow("takeaway commande submitted", "commande_id", commande.ID.Hex(), "customer", customer.Nom)

	return commande, nil
}

// ValidateAndSendTakeaway approves a pending takeaway commande and
// routes it to the kitchen in one write, so a failure leaves it
// pending instead of validated-but-unrouted.
func (s *CommandeService) ValidateAndSendTakeaway(ctx context.Context, id primitive.ObjectID) error {
	commande, err := s.commandes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if commande.Statut != domain.StatutPendienteValidacion {
		return domain.ErrNotPendingValidation
	}

	if err := s.commandes.ValidateTakeaway(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("failed to validate takeaway commande: %w", err)
	}

	commande.Statut = domain.StatutEnCours
	s.publishKitchenEvent(ctx, commande, domain.EventOrderSentToKitchen, domain.CocinaRecibido)

	return nil
}

// Kitchen events feed the kitchen and ready-alert displays. They are
// informational routing, so a broker outage must not fail the write.
func (s *CommandeService) publishKitchenEvent(ctx context.Context, commande *domain.Commande, eventType string, estado domain.EstadoCocina) {
	event := domain.KitchenEvent{
		EventType:    eventType,
		CommandeID:   commande.ID.Hex(),
		TableID:      commande.TableID,
		Numero:       commande.Numero,
		EstadoCocina: estado,
		Timestamp:    time.Now(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorw("failed to marshal kitchen event", "commande_id", event.CommandeID, "error", err)
		return
	}

	if err := s.broker.Publish(ctx, queue.QueueKitchenEvents, eventBytes); err != nil {
		s.logger.Errorw("failed to publish kitchen event", "commande_id", event.CommandeID, "event_type", eventType, "error", err)
	}
}
