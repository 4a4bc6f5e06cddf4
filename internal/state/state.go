package state

import (
	"sync"
	"time"
)

// Step identifies where a user is in a multi-message flow.
type Step int

const (
	StepNone Step = iota
	StepAwaitingPaymentAmount
	StepAwaitingPaymentTxID
	StepAwaitingTTSText
	StepAwaitingBroadcast
)

// Conversation is the per-user flow state. Data carries whatever the flow
// accumulated so far (e.g. the payment amount while waiting for the tx id).
type Conversation struct {
	Step      Step
	Data      map[string]string
	UpdatedAt time.Time
}

// Store keeps per-user conversation state in memory. Entries older than the
// TTL are treated as absent, so an abandoned flow silently resets.
type Store struct {
	mu    sync.Mutex
	ttl   time.Duration
	users map[int64]*Conversation
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Store{ttl: ttl, users: make(map[int64]*Conversation)}
}

// Get returns the live conversation for a user, or nil.
func (s *Store) Get(userID int64) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.users[userID]
	if !ok {
		return nil
	}
	if time.Since(conv.UpdatedAt) > s.ttl {
		delete(s.users, userID)
		return nil
	}
	return conv
}

// Set moves a user to a step, replacing any previous state.
func (s *Store) Set(userID int64, step Step, data map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data == nil {
		data = make(map[string]string)
	}
	s.users[userID] = &Conversation{Step: step, Data: data, UpdatedAt: time.Now()}
}

// Clear ends a user's flow.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

// Sweep drops every expired conversation and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, conv := range s.users {
		if time.Since(conv.UpdatedAt) > s.ttl {
			delete(s.users, id)
			removed++
		}
	}
	return removed
}
