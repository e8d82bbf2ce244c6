package tracker

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"jobtrail-backend/internal/blob"
	"jobtrail-backend/internal/store"
)

// Session bundles the managers of one authenticated identity.
type Session struct {
	Jobs      *JobCollection
	Documents *DocumentManager
}

// Registry hands out one Session per identity, constructed lazily and torn
// down explicitly. Multiple views of the same user share the one cached
// collection; there is no process-global state.
type Registry struct {
	stores *store.Stores
	blobs  blob.Store

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry builds an empty session registry.
func NewRegistry(s *store.Stores, blobs blob.Store) *Registry {
	return &Registry{
		stores:   s,
		blobs:    blobs,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Session returns the owner's session, creating, loading and starting it on
// first use.
func (r *Registry) Session(ctx context.Context, owner uuid.UUID) (*Session, error) {
	r.mu.Lock()
	if sess, ok := r.sessions[owner]; ok {
		r.mu.Unlock()
		return sess, nil
	}
	r.mu.Unlock()

	jobs := NewJobCollection(r.stores, owner)
	if err := jobs.Load(ctx); err != nil {
		return nil, err
	}
	jobs.Start()

	sess := &Session{
		Jobs:      jobs,
		Documents: NewDocumentManager(r.stores, r.blobs, owner),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[owner]; ok {
		// lost the race, keep the first one
		jobs.Close()
		return existing, nil
	}
	r.sessions[owner] = sess
	return sess, nil
}

// Notes builds a note manager scoped to one job for this owner. Note views
// are short-lived, so they are not cached in the session.
func (r *Registry) Notes(owner, jobID uuid.UUID) *NoteCollection {
	return NewNoteCollection(r.stores, owner, jobID)
}

// Dispose tears down the owner's session and its subscriptions.
func (r *Registry) Dispose(owner uuid.UUID) {
	r.mu.Lock()
	sess, ok := r.sessions[owner]
	delete(r.sessions, owner)
	r.mu.Unlock()
	if ok {
		sess.Jobs.Close()
	}
}

// Close disposes every live session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*Session)
	r.mu.Unlock()
	for _, sess := range sessions {
		sess.Jobs.Close()
	}
}
