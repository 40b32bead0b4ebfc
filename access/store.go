package access

import (
	"context"
	"sync"
	"time"

	"github.com/theConCreator/OnyxShopbot/model"
)

// Store persists per-user access state. Implementations must be safe for concurrent use;
// the Controller serializes writes per user on top of that.
type Store interface {
	Get(ctx context.Context, userID int64) (model.AccessState, error)
	SetBanned(ctx context.Context, userID int64, banned bool) error
	SetLastPublished(ctx context.Context, userID int64, at time.Time) error
}

// MemStore keeps access state in process memory.
type MemStore struct {
	mu     sync.RWMutex
	states map[int64]model.AccessState
}

func NewMemStore() *MemStore {
	return &MemStore{states: make(map[int64]model.AccessState)}
}

func (s *MemStore) Get(ctx context.Context, userID int64) (model.AccessState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[userID]
	if !ok {
		return model.AccessState{UserID: userID}, nil
	}
	return st, nil
}

func (s *MemStore) SetBanned(ctx context.Context, userID int64, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[userID]
	st.UserID = userID
	st.Banned = banned
	s.states[userID] = st
	return nil
}

func (s *MemStore) SetLastPublished(ctx context.Context, userID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[userID]
	st.UserID = userID
	st.LastPublishedAt = at
	s.states[userID] = st
	return nil
}
