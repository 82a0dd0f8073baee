package repository

import (
	"sync"

	"github.com/saigon-transit/service-route/internal/domain/conversation"
)

// InMemorySessionRepository keeps sessions in process memory. Sessions do
// not survive a restart; that is intentional, a flow is cheap to redo.
type InMemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*conversation.Session
}

// NewInMemorySessionRepository creates an empty session store.
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[int64]*conversation.Session),
	}
}

// Find returns the session for a chat, or conversation.ErrSessionNotFound.
func (r *InMemorySessionRepository) Find(chatID int64) (*conversation.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[chatID]
	if !ok {
		return nil, conversation.ErrSessionNotFound
	}
	return session, nil
}

// Save inserts or replaces the session for its chat.
func (r *InMemorySessionRepository) Save(session *conversation.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ChatID()] = session
	return nil
}

// Delete removes the session for a chat.
func (r *InMemorySessionRepository) Delete(chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, chatID)
	return nil
}

// Count returns the number of active sessions.
func (r *InMemorySessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
