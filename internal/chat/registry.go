package chat

import (
	"slices"
	"sync"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// Registry tracks known sessions and which one is active.
// Sessions are never renamed or removed individually.
type Registry struct {
	mu       sync.RWMutex
	sessions []domain.Session
	active   string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// add registers a session at the front of the list. Known IDs are ignored.
func (r *Registry) add(id string) {
	if id == "" || r.indexOf(id) >= 0 {
		return
	}
	r.sessions = slices.Insert(r.sessions, 0, domain.Session{ID: id})
}

func (r *Registry) indexOf(id string) int {
	return slices.IndexFunc(r.sessions, func(s domain.Session) bool { return s.ID == id })
}

// SetActive marks a session as active, registering it when unknown
func (r *Registry) SetActive(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(id)
	r.active = id
}

// Active returns the active session ID, or "" when none
func (r *Registry) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Replace swaps the list for a fresh listing from the backend.
// The active session is kept even when the listing omits it.
func (r *Registry) Replace(listing []domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := make([]domain.Session, 0, len(listing)+1)
	seen := make(map[string]bool, len(listing))
	for _, s := range listing {
		if s.ID == "" || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		sessions = append(sessions, s)
	}
	if r.active != "" && !seen[r.active] {
		sessions = slices.Insert(sessions, 0, domain.Session{ID: r.active})
	}
	r.sessions = sessions
}

// List returns a copy of the known sessions
func (r *Registry) List() []domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.sessions)
}

// Reset forgets every session
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = nil
	r.active = ""
}
