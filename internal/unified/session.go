package unified

import "sync"

// Session holds the current-user state that drives backend routing. It is the
// one piece of shared mutable state in the data layer: the auth callback
// writes it, every facade call reads it, so access is guarded.
type Session struct {
	mu     sync.RWMutex
	userID string
}

// NewSession returns a logged-out session.
func NewSession() *Session {
	return &Session{}
}

// SetCurrentUser records the authenticated user id. An empty id logs out.
// Setting the same value again is a no-op in effect.
func (s *Session) SetCurrentUser(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
}

// ClearCurrentUser logs out.
func (s *Session) ClearCurrentUser() {
	s.SetCurrentUser("")
}

// CurrentUser returns the active user id, if any.
func (s *Session) CurrentUser() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != ""
}
