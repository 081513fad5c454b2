// Package realtimetest provides an in-memory realtime.Session for tests.
package realtimetest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
)

// Session records every event it accepts. It can be told to fail or to block
// until the caller's context expires, to stand in for a dead connection.
type Session struct {
	id string

	mu     sync.Mutex
	events []models.DispatchEvent
	err    error
	block  bool
}

func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Send(ctx context.Context, evt models.DispatchEvent) error {
	s.mu.Lock()
	block, err := s.block, s.err
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
	return nil
}

// FailWith makes every following Send return err.
func (s *Session) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Block makes every following Send wait for its context to expire.
func (s *Session) Block() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.block = true
}

func (s *Session) Events() []models.DispatchEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DispatchEvent(nil), s.events...)
}
