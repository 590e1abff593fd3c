package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventBillCreated    EventType = "bill_created"
	EventBillSettled    EventType = "bill_settled"
	EventBillCancelled  EventType = "bill_cancelled"
	EventChairUpdated   EventType = "chair_updated"
	EventCashReconciled EventType = "cash_reconciled"
	EventBankDeposited  EventType = "bank_deposited"
)

const subscriberBufferSize = 16

// Event represents a server-sent event
type Event struct {
	Type     EventType   `json:"type"`
	BranchID uuid.UUID   `json:"branch_id"`
	Data     interface{} `json:"data"`
}

type subscriber struct {
	branchID uuid.UUID
	ch       chan Event
}

// EventBus fans branch events out to SSE subscribers
type EventBus struct {
	subscribers map[string]subscriber
	mu          sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string]subscriber),
	}
}

// Subscribe registers id for events of one branch; uuid.Nil receives every branch.
// The channel is closed once ctx is done.
func (eb *EventBus) Subscribe(ctx context.Context, id string, branchID uuid.UUID) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan Event, subscriberBufferSize)
	eb.subscribers[id] = subscriber{branchID: branchID, ch: ch}

	go func() {
		<-ctx.Done()
		eb.Unsubscribe(id)
	}()

	return ch
}

// Unsubscribe removes a subscriber
func (eb *EventBus) Unsubscribe(id string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if sub, exists := eb.subscribers[id]; exists {
		close(sub.ch)
		delete(eb.subscribers, id)
	}
}

// Publish sends an event to the branch's subscribers without blocking
func (eb *EventBus) Publish(branchID uuid.UUID, eventType EventType, data interface{}) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	event := Event{
		Type:     eventType,
		BranchID: branchID,
		Data:     data,
	}

	for _, sub := range eb.subscribers {
		if sub.branchID != uuid.Nil && sub.branchID != branchID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// slow subscriber, drop
		}
	}
}

// SubscriberCount is the number of open streams
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// FormatSSE formats an event as Server-Sent Event string
func FormatSSE(event Event) (string, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return "", err
	}

	return "event: " + string(event.Type) + "\ndata: " + string(data) + "\n\n", nil
}
