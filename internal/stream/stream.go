package stream

import (
	"context"
	"sync"
	"time"
)

// RecordEvent announces a newly created record to wallboard clients.
type RecordEvent struct {
	Kind        string    `json:"kind"` // issue, action, inspection
	RecordID    string    `json:"record_id"`
	EmployeeID  string    `json:"employee_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Stream fan-outs record events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan RecordEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan RecordEvent)}
}

// Subscribe registers a subscriber and returns a channel which will
// receive events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan RecordEvent {
	ch := make(chan RecordEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt RecordEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

// Subscribers reports the number of attached clients.
func (s *Stream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
