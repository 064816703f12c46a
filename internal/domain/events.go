package domain

import "time"

type KitchenEvent struct {
	EventType    string       `json:"event_type"`
	CommandeID   string       `json:"commande_id"`
	TableID      string       `json:"table_id"`
	Numero       int          `json:"numero"`
	EstadoCocina EstadoCocina `json:"estado_cocina"`
	Timestamp    time.Time    `json:"timestamp"`
}

// ReportRequest is handed off to the external aggregation job; the
// computation itself is out of scope here.
type ReportRequest struct {
	Day         string    `json:"day"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

const (
	EventOrderSentToKitchen = "order.sent_to_kitchen"
	EventOrderReady         = "order.ready"
	EventOrderServed        = "order.served"
	EventOrderFinalized     = "order.finalized"
)
