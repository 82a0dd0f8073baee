package conversation

import "errors"

// ErrSessionNotFound is returned when no session exists for a chat.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores in-progress sessions keyed by chat ID.
// Implementations must isolate sessions from each other; callers guarantee
// that events for one chat are handled sequentially.
type SessionRepository interface {
	// Find returns the session for a chat, or ErrSessionNotFound.
	Find(chatID int64) (*Session, error)

	// Save inserts or replaces the session for its chat.
	Save(session *Session) error

	// Delete removes the session for a chat. Deleting a missing session
	// is not an error.
	Delete(chatID int64) error

	// Count returns the number of active sessions.
	Count() int
}
