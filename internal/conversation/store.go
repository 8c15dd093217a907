// Package conversation holds per-user chat state in memory.
//
// The store is bounded two ways: a least-recently-used cap on the number of
// tracked users and a TTL sweep that drops states idle longer than the
// configured duration. Nothing is persisted; state is lost on restart.
package conversation

import (
	"container/list"
	"sync"
	"time"

	"github.com/avamarket/support-relay-go/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is one user's conversation: an append-only history plus the name of
// the last resolved scenario. The mutex serializes append-and-update so two
// in-flight requests for the same user can never interleave an exchange.
type State struct {
	mu sync.Mutex

	// SessionID identifies this state instance in logs. It changes when an
	// evicted user comes back.
	SessionID string
	UserID    string

	history      []domain.Turn
	lastScenario string
	lastSeen     time.Time // guarded by the store mutex, not the state mutex
}

// RecentHistory returns a copy of the last n turns in append order.
// It never mutates state.
func (s *State) RecentHistory(n int) []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := len(s.history) - n
	if start < 0 {
		start = 0
	}
	out := make([]domain.Turn, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

// LastScenario returns the most recently resolved scenario name, or "" before
// the first completed exchange.
func (s *State) LastScenario() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScenario
}

// AppendExchange records one full exchange (the user turn, the assistant
// turn, and the scenario that produced it) under a single lock, so a user's
// history stays ordered even when their requests overlap.
func (s *State) AppendExchange(userMessage, reply, scenario string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history,
		domain.Turn{Role: domain.RoleUser, Content: userMessage},
		domain.Turn{Role: domain.RoleAssistant, Content: reply},
	)
	s.lastScenario = scenario
}

// Store is a thread-safe bounded map of user id to conversation state.
type Store struct {
	mu         sync.Mutex
	states     map[string]*list.Element // value: *State
	order      *list.List               // front = most recently used
	maxEntries int
	ttl        time.Duration
	logger     *zap.Logger
}

type storeEntry struct {
	userID string
	state  *State
}

// NewStore creates a store capped at maxEntries users, sweeping out states
// idle longer than ttl.
func NewStore(maxEntries int, ttl time.Duration, logger *zap.Logger) *Store {
	s := &Store{
		states:     make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		logger:     logger,
	}
	go s.sweep()
	return s
}

// GetOrCreate returns the state for userID, creating it lazily on first
// contact. The caller is refreshed in LRU order; the least recently seen
// user is evicted when the cap is exceeded.
func (s *Store) GetOrCreate(userID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.states[userID]; ok {
		s.order.MoveToFront(elem)
		entry := elem.Value.(*storeEntry)
		entry.state.lastSeen = time.Now()
		return entry.state
	}

	state := &State{
		SessionID: uuid.New().String(),
		UserID:    userID,
		lastSeen:  time.Now(),
	}
	s.states[userID] = s.order.PushFront(&storeEntry{userID: userID, state: state})

	s.logger.Debug("conversation started",
		zap.String("user_id", userID),
		zap.String("session_id", state.SessionID),
	)

	for s.order.Len() > s.maxEntries {
		s.evictLocked(s.order.Back())
	}
	return state
}

// Len returns the number of tracked users.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *Store) evictLocked(elem *list.Element) {
	if elem == nil {
		return
	}
	entry := elem.Value.(*storeEntry)
	s.order.Remove(elem)
	delete(s.states, entry.userID)
	s.logger.Debug("conversation evicted",
		zap.String("user_id", entry.userID),
		zap.String("session_id", entry.state.SessionID),
	)
}

// sweep periodically removes states idle longer than the TTL.
func (s *Store) sweep() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		cutoff := time.Now().Add(-s.ttl)
		for elem := s.order.Back(); elem != nil; {
			entry := elem.Value.(*storeEntry)
			if entry.state.lastSeen.After(cutoff) {
				break // list is LRU-ordered, the rest are fresher
			}
			prev := elem.Prev()
			s.evictLocked(elem)
			elem = prev
		}
		s.mu.Unlock()
	}
}
