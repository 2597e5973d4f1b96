package clients

import (
	"context"
	"sync"

	"github.com/google/uuid"
	offlinecache "github.com/webshim/offline-cache"
)

// Registry is an in-memory client session tracker. A connected client is
// uncontrolled until a version claims it, or until it reconnects after a
// version became active.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]string
	active   string
}

var _ offlinecache.ClientController = (*Registry)(nil)

// NewRegistry creates an empty client registry.
func NewRegistry() *Registry {
	return &Registry{sessions: map[uuid.UUID]string{}}
}

// Connect registers a new open client session and returns its ID.
// The session starts under control of the currently active version, or
// uncontrolled if no version has claimed clients yet.
func (r *Registry) Connect() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	r.sessions[id] = r.active
	return id
}

// Disconnect removes a client session.
func (r *Registry) Disconnect(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Claim places every open client under control of the given version,
// without waiting for their next load.
func (r *Registry) Claim(ctx context.Context, version string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = version
	for id := range r.sessions {
		r.sessions[id] = version
	}
	return nil
}

// ControlledBy returns the version controlling the given session, and
// whether the session is known. An empty version means the session is
// uncontrolled.
func (r *Registry) ControlledBy(id uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	version, ok := r.sessions[id]
	return version, ok
}

// Len returns the number of open client sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
