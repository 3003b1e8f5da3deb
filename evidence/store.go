package evidence

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transcript is the raw record of one request/response exchange, stored for
// later display. Err carries the transport fault text when no response was
// received.
type Transcript struct {
	ID       string
	Time     time.Time
	Request  Request
	Response *Response
	Err      string
}

// Store retains transcripts for one run in insertion order. Appends are
// mutex-protected so a future parallel-sequence mode cannot corrupt it.
type Store struct {
	mu    sync.Mutex
	order []string
	byID  map[string]Transcript
}

// NewStore creates an empty transcript store.
func NewStore() *Store {
	return &Store{byID: make(map[string]Transcript)}
}

// Add stores a transcript and returns its generated reference.
func (s *Store) Add(t Transcript) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.New().String()
	if t.Time.IsZero() {
		t.Time = time.Now()
	}
	s.order = append(s.order, t.ID)
	s.byID[t.ID] = t
	return t.ID
}

// Get returns the transcript for a reference.
func (s *Store) Get(ref string) (Transcript, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[ref]
	return t, ok
}

// All returns every transcript in insertion order.
func (s *Store) All() []Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Transcript, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len returns the number of stored transcripts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// LastRef returns the reference of the most recent transcript, or "".
func (s *Store) LastRef() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return ""
	}
	return s.order[len(s.order)-1]
}
