// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// Order event types.
const (
	OrderPlaced    = "order.placed"
	OrderUpdated   = "order.updated"
	OrderWithdrawn = "order.withdrawn"
	OrderCancelled = "order.cancelled"
)

// OrderEvent is published after an order mutation has been committed.  It
// carries enough for downstream consumers (kitchen display, audit log) to
// act without querying the primary database.
type OrderEvent struct {
	Type        string     `json:"type"`
	OrderID     uint64     `json:"order_id"`
	UserID      uint64     `json:"user_id"`
	MealID      uint64     `json:"meal_id"`
	Status      bool       `json:"status"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty"`
	OccurredAt  string     `json:"occurred_at"`
}
