package service

import (
	"context"
	"sync"
)

// SessionHub tracks one SessionManager per live console session. AuthService
// registers a manager at login or rebuild and detaches it at logout or
// expiry.
type SessionHub struct {
	mu       sync.Mutex
	managers map[string]*SessionManager
}

// NewSessionHub constructs a SessionHub.
func NewSessionHub() *SessionHub {
	return &SessionHub{managers: map[string]*SessionManager{}}
}

// Get returns the manager for a session id, or nil when none is attached.
func (h *SessionHub) Get(sessionID string) *SessionManager {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.managers[sessionID]
}

// Put registers an already-initialized manager under a session id, replacing
// and closing any previous one.
func (h *SessionHub) Put(sessionID string, mgr *SessionManager) {
	h.mu.Lock()
	old := h.managers[sessionID]
	h.managers[sessionID] = mgr
	h.mu.Unlock()

	if old != nil && old != mgr {
		old.Close()
	}
}

// Detach closes and removes the manager for a session id. Safe to call for
// unknown ids.
func (h *SessionHub) Detach(sessionID string) {
	h.mu.Lock()
	mgr := h.managers[sessionID]
	delete(h.managers, sessionID)
	h.mu.Unlock()

	if mgr != nil {
		mgr.Close()
	}
}

// RefreshUser re-fetches the profile on every attached manager currently
// authenticated as userID. Called after console-side profile writes so role
// and status changes reach live sessions without waiting for an auth event.
func (h *SessionHub) RefreshUser(ctx context.Context, userID string) {
	h.mu.Lock()
	managers := make([]*SessionManager, 0, len(h.managers))
	for _, mgr := range h.managers {
		managers = append(managers, mgr)
	}
	h.mu.Unlock()

	for _, mgr := range managers {
		state := mgr.Snapshot()
		if state.Identity != nil && state.Identity.UserID == userID {
			mgr.RefreshProfile(ctx)
		}
	}
}

// Len reports how many managers are attached.
func (h *SessionHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.managers)
}
