package session

import (
	"sync"

	"telegram-loyalty-bot/internal/domain/model"
)

// Store holds every user's conversation context in memory. There is no
// persistence: a restart drops everyone back to the main state, which is the
// intended recovery behavior.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*entry
}

type entry struct {
	mu  sync.Mutex
	ctx *model.ConversationContext
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*entry)}
}

// Lock returns the user's context together with its release function,
// creating a fresh main-state context on first touch. While the lock is
// held, no other goroutine can process an update for the same user, so
// updates from one user are applied strictly in order. Different users
// never block each other.
func (s *Store) Lock(tgID int64) (*model.ConversationContext, func()) {
	s.mu.Lock()
	e, ok := s.sessions[tgID]
	if !ok {
		e = &entry{ctx: model.NewConversationContext()}
		s.sessions[tgID] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	return e.ctx, e.mu.Unlock
}

// Peek returns a copy of the user's context without creating one; ok is
// false when the user has no session yet. Intended for diagnostics only.
func (s *Store) Peek(tgID int64) (model.ConversationContext, bool) {
	s.mu.Lock()
	e, ok := s.sessions[tgID]
	s.mu.Unlock()
	if !ok {
		return model.ConversationContext{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.ctx, true
}

// Len reports how many users currently hold a session.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
