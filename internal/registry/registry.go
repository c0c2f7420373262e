package registry

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nestlog/tracker-server-go/internal/durable"
	"github.com/nestlog/tracker-server-go/internal/model"
)

// Registry is the in-memory view of all active sessions, one per baby,
// mirroring the durable store. Every mutation writes the full snapshot
// through before returning; if the flush fails the in-memory state stays
// authoritative and the registry is marked dirty so a later mutation (or
// the flush job) retries.
type Registry struct {
	mu       sync.RWMutex
	store    durable.Store
	sessions map[string]model.ActiveSession
	dirty    bool
}

func New(store durable.Store) *Registry {
	return &Registry{
		store:    store,
		sessions: make(map[string]model.ActiveSession),
	}
}

// Admit inserts a session without flushing. Recovery only: the coordinator
// reconciles the durable snapshot itself once admission is done.
func (r *Registry) Admit(session *model.ActiveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.BabyID] = *session.Clone()
}

// Snapshot returns a copy of the in-memory map keyed by baby.
func (r *Registry) Snapshot() map[string]model.ActiveSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]model.ActiveSession, len(r.sessions))
	for babyID, session := range r.sessions {
		out[babyID] = *session.Clone()
	}
	return out
}

func (r *Registry) Get(babyID string) (*model.ActiveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[babyID]
	if !ok {
		return nil, false
	}
	return session.Clone(), true
}

func (r *Registry) GetAll() []*model.ActiveSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*model.ActiveSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		all = append(all, session.Clone())
	}
	return all
}

func (r *Registry) Has(babyID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[babyID]
	return ok
}

// Insert stores the session only when the baby has no entry yet, holding
// the lock across the check and the write. Returns false when an entry
// already exists; the error is the flush outcome of a successful insert.
func (r *Registry) Insert(ctx context.Context, session *model.ActiveSession) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.BabyID]; ok {
		return false, nil
	}
	r.sessions[session.BabyID] = *session.Clone()
	return true, r.flushLocked(ctx)
}

// Upsert stores the session and flushes. The returned error is the flush
// outcome; the in-memory write always succeeds.
func (r *Registry) Upsert(ctx context.Context, session *model.ActiveSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.BabyID] = *session.Clone()
	return r.flushLocked(ctx)
}

// Remove deletes the baby's session and flushes.
func (r *Registry) Remove(ctx context.Context, babyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, babyID)
	return r.flushLocked(ctx)
}

// Clear wipes both memory and the durable store. Sign-out only.
func (r *Registry) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = make(map[string]model.ActiveSession)
	r.dirty = false
	return r.store.Clear(ctx)
}

// RetryFlush re-attempts a failed write-through. No-op when clean.
func (r *Registry) RetryFlush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.dirty {
		return nil
	}
	return r.flushLocked(ctx)
}

// Dirty reports whether the last flush failed.
func (r *Registry) Dirty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dirty
}

// flushLocked writes the full snapshot. The full-map write means a failed
// flush needs no separate replay: the next successful flush carries it.
func (r *Registry) flushLocked(ctx context.Context) error {
	if err := r.store.SaveAll(ctx, r.sessions); err != nil {
		r.dirty = true
		log.Warn().Err(err).Int("sessions", len(r.sessions)).Msg("session flush failed, memory stays authoritative")
		return err
	}
	r.dirty = false
	return nil
}
