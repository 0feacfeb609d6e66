package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventSetMemberAdded   = "set_member_added"
	EventSetMemberRemoved = "set_member_removed"
	EventAuthUserAdded    = "authuser_added"
	EventAuthUserRemoved  = "authuser_removed"
	EventAutoendChanged   = "autoend_changed"
)

// AccessEventPayload describes a change to an access list or flag.
type AccessEventPayload struct {
	ID       string    `json:"id"`
	Set      string    `json:"set,omitempty"`
	ChatID   int64     `json:"chat_id,omitempty"`
	MemberID int64     `json:"member_id,omitempty"`
	Enabled  *bool     `json:"enabled,omitempty"`
	At       time.Time `json:"at"`
}

// NewAccessEventPayload stamps a payload with a fresh id and time.
func NewAccessEventPayload() AccessEventPayload {
	return AccessEventPayload{ID: uuid.NewString(), At: time.Now()}
}

// Event represents a lightweight domain event.
type Event struct {
	ID        string
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every access event type.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	for _, eventType := range []string{
		EventSetMemberAdded, EventSetMemberRemoved,
		EventAuthUserAdded, EventAuthUserRemoved,
		EventAutoendChanged,
	} {
		b.Subscribe(eventType, handler)
	}
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}

	b.Publish(&event)
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{ID: uuid.NewString(), Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
