package service

import (
	"sync"
	"time"

	"carbonintensity/internal/domain"
)

// EventType defines the type of event
type EventType string

const (
	EventIntensityCreated EventType = "intensity_created"
	EventIntensityUpdated EventType = "intensity_updated"
	EventIntensityDeleted EventType = "intensity_deleted"
)

// Event represents a change that occurred in the record store
type Event struct {
	Type       EventType `json:"type"`
	RecordID   int64     `json:"id"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEvent(t EventType, id int64, payload any) Event {
	return Event{Type: t, RecordID: id, Payload: payload, OccurredAt: domain.Now()}
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers. It never blocks: a subscriber
// whose buffer is full misses the event. It returns how many were skipped.
func (eb *EventBus) Publish(event Event) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	dropped := 0
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			dropped++
		}
	}
	return dropped
}
