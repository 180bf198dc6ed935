// Package service holds the operations behind the HTTP handlers.  Every
// operation opens one unit of work, builds the repositories it needs on
// the transaction handle and lets the unit of work release it.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/canteen-preorder/internal/model"
	"github.com/iliyamo/canteen-preorder/internal/queue"
)

// EventPublisher delivers order events to downstream consumers.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev queue.OrderEvent) error
}

// NopPublisher discards events; used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, queue.OrderEvent) error { return nil }

// Clock reports the current time and the zone whose calendar decides
// what "today" is.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock uses time.Now in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

// Today returns the current calendar day in the clock's zone.
func (c Clock) Today() model.Date {
	return model.NewDate(c.Now().In(c.Location))
}
