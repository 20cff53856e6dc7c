// Package events publishes order lifecycle notifications to downstream
// consumers such as warehouse and notification workers.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/dshills/dropship-mcp/pkg/types"
)

// Routing keys
const (
	OrderPlaced  = "order.placed"
	OrderShipped = "order.shipped"
)

// Event is one order state change. Type doubles as the routing key.
type Event struct {
	Type       string       `json:"type"`
	OrderID    int64        `json:"order_id"`
	OccurredAt time.Time    `json:"occurred_at"`
	Order      *types.Order `json:"order"`
}

// NewOrderEvent builds an event of the given type for order
func NewOrderEvent(eventType string, order *types.Order) Event {
	return Event{
		Type:       eventType,
		OrderID:    order.ID,
		OccurredAt: time.Now().UTC(),
		Order:      order,
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error // returned from every Publish when set
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was published so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
