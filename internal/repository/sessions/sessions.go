package sessions

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
)

// Store keeps per-user conversation state in memory. Entries are
// created lazily and removed on reset; an absent entry means StepIdle.
type Store struct {
	states map[int64]*domain.Session
	mu     sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		states: make(map[int64]*domain.Session),
	}
}

func (s *Store) GetStateByID(ctx context.Context, userID int64) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[userID]; !ok {
		s.states[userID] = &domain.Session{}
	}
	return s.states[userID]
}

// PeekStateByID returns the session without creating one.
func (s *Store) PeekStateByID(ctx context.Context, userID int64) (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	return state, ok
}

func (s *Store) SetState(ctx context.Context, userID int64, state *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state
	return nil
}

func (s *Store) ResetUserState(ctx context.Context, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}

func (s *Store) GetCurrentStatesID(ctx context.Context) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.states))

	for k, v := range s.states {
		if v != nil {
			ids = append(ids, k)
		}
	}
	return ids
}

func (s *Store) GetCorrelationID(ctx context.Context, userID int64) string {
	state := s.GetStateByID(ctx, userID)
	if state.CorrelationID == "" {
		state.CorrelationID = uuid.New().String()
	}
	return state.CorrelationID
}
