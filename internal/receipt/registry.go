package receipt

import "sync"

// Registry keys session managers by user, so one user's scan flow can never
// supersede or mutate another's. Managers are created lazily on first use
// and live for the life of the process.
type Registry struct {
	mu       sync.Mutex
	managers map[string]*Manager
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{managers: make(map[string]*Manager)}
}

// For returns the manager holding userID's sessions, creating it on first
// use. Session ids are scoped to the returned manager.
func (r *Registry) For(userID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.managers[userID]
	if !ok {
		m = NewManager()
		r.managers[userID] = m
	}
	return m
}
