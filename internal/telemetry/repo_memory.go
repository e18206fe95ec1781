package telemetry

import (
	"encoding/json"
	"sync"
	"time"
)

// Repository stores telemetry events
type Repository interface {
	RecordEvent(eventType EventType, metadata EventMetadata) error
	GetEvents(since time.Time, eventTypes []EventType) ([]Event, error)
	Clear() error
}

// DefaultMaxEvents bounds a long-running server's history.
const DefaultMaxEvents = 10000

// MemoryRepository keeps the most recent events in process. The oldest are
// dropped once max is reached; ids keep increasing.
type MemoryRepository struct {
	mu     sync.RWMutex
	events []Event
	nextID int
	max    int
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return NewBoundedRepository(DefaultMaxEvents)
}

func NewBoundedRepository(max int) *MemoryRepository {
	if max <= 0 {
		max = DefaultMaxEvents
	}
	return &MemoryRepository{
		events: make([]Event, 0),
		nextID: 1,
		max:    max,
		now:    time.Now,
	}
}

func (r *MemoryRepository) RecordEvent(eventType EventType, metadata EventMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	event := Event{
		ID:        r.nextID,
		Type:      eventType,
		Timestamp: r.now().UTC(),
		Metadata:  string(metadataJSON),
	}

	r.events = append(r.events, event)
	r.nextID++
	if over := len(r.events) - r.max; over > 0 {
		r.events = append(r.events[:0:0], r.events[over:]...)
	}

	return nil
}

func (r *MemoryRepository) GetEvents(since time.Time, eventTypes []EventType) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typeFilter := make(map[EventType]bool)
	for _, t := range eventTypes {
		typeFilter[t] = true
	}

	result := make([]Event, 0)
	for _, event := range r.events {
		if event.Timestamp.Before(since) {
			continue
		}

		if len(eventTypes) > 0 && !typeFilter[event.Type] {
			continue
		}

		result = append(result, event)
	}

	return result, nil
}

func (r *MemoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = make([]Event, 0)
	r.nextID = 1

	return nil
}
