package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kiwis93160/POS-OUIOUI/internal/cache"
	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"github.com/kiwis93160/POS-OUIOUI/internal/queue"
	"go.uber.org/zap"
)

// KitchenEventsWorker listens for kitchen lifecycle events and
// refreshes the snapshot so display observers converge without
// polling.
type KitchenEventsWorker struct {
	store  *cache.Store
	broker queue.Broker
	logger *zap.SugaredLogger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewKitchenEventsWorker(
	store *cache.Store,
	broker queue.Broker,
	logger *zap.SugaredLogger,
) *KitchenEventsWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &KitchenEventsWorker{
		store:  store,
		broker: broker,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (w *KitchenEventsWorker) Start() error {
	w.logger.Info("starting kitchen events worker")

	return w.broker.Subscribe(w.ctx, queue.QueueKitchenEvents, w.handleMessage)
}

func (w *KitchenEventsWorker) Stop() {
	w.logger.Info("stopping kitchen events worker")
	w.cancel()
}

func (w *KitchenEventsWorker) handleMessage(ctx context.Context, message []byte) error {
	var event domain.KitchenEvent
	if err := json.Unmarshal(message, &event); err != nil {
		w.logger.Errorw("failed to unmarshal kitchen event", "error", err)
		return fmt.Errorf("failed to unmarshal kitchen event: %w", err)
	}

	w.logger.Infow("kitchen event received", "commande_id", event.CommandeID, "event_type", event.EventType, "estado_cocina", event.EstadoCocina)

	if err := w.store.Refresh(ctx); err != nil {
		w.logger.Errorw("failed to refresh snapshot", "commande_id", event.CommandeID, "error", err)
		return err
	}

	return nil
}
