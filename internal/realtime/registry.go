package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
)

// Session is one live transport connection. Handles are compared by ID.
type Session interface {
	ID() string
	Send(ctx context.Context, evt models.DispatchEvent) error
}

// Registry maps a user to the single session that currently receives their
// dispatches. It is process local and owned by whoever constructs it.
type Registry struct {
	mu       sync.RWMutex
	byUser   map[uuid.UUID]Session
	byHandle map[string]uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{
		byUser:   make(map[uuid.UUID]Session),
		byHandle: make(map[string]uuid.UUID),
	}
}

// Register binds userID to s. The last registration wins: a previous session
// for the same user is orphaned (not closed) and returned so callers can log it.
// Nil identities and nil sessions are ignored.
func (r *Registry) Register(userID uuid.UUID, s Session) (replaced Session) {
	if userID == uuid.Nil || s == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// A handle belongs to at most one user.
	if owner, ok := r.byHandle[s.ID()]; ok && owner != userID {
		if cur, ok := r.byUser[owner]; ok && cur.ID() == s.ID() {
			delete(r.byUser, owner)
		}
	}

	if prev, ok := r.byUser[userID]; ok && prev.ID() != s.ID() {
		delete(r.byHandle, prev.ID())
		replaced = prev
	}

	r.byUser[userID] = s
	r.byHandle[s.ID()] = userID
	return replaced
}

// Lookup returns the live session for userID. Absence means the user is offline.
func (r *Registry) Lookup(userID uuid.UUID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byUser[userID]
	return s, ok
}

// Unregister removes the entry owned by s. It only removes the user's entry if
// that entry still points at s, so a stale session closing late never evicts a
// newer registration. It reports the user whose entry was removed.
func (r *Registry) Unregister(s Session) (uuid.UUID, bool) {
	if s == nil {
		return uuid.Nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byHandle[s.ID()]
	if !ok {
		return uuid.Nil, false
	}
	delete(r.byHandle, s.ID())

	cur, ok := r.byUser[userID]
	if !ok || cur.ID() != s.ID() {
		return uuid.Nil, false
	}
	delete(r.byUser, userID)
	return userID, true
}

func (r *Registry) IsOnline(userID uuid.UUID) bool {
	_, ok := r.Lookup(userID)
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byUser)
}
