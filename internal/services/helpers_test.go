package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/prudhvinik1/linkup/internal/realtime"
	"github.com/prudhvinik1/linkup/internal/realtime/realtimetest"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newUser(name string) *models.User {
	return &models.User{
		ID:    uuid.New(),
		Name:  name,
		Email: name + "@example.com",
	}
}

// liveSetup is the real registry and dispatcher that services publish through.
type liveSetup struct {
	registry   *realtime.Registry
	dispatcher *realtime.Dispatcher
}

func newLiveSetup() *liveSetup {
	registry := realtime.NewRegistry()
	return &liveSetup{
		registry:   registry,
		dispatcher: realtime.NewDispatcher(registry, discardLogger(), 200*time.Millisecond),
	}
}

func (l *liveSetup) connect(userID uuid.UUID) *realtimetest.Session {
	s := realtimetest.NewSession()
	l.registry.Register(userID, s)
	return s
}

func requireSingleEvent(t *testing.T, s *realtimetest.Session) models.DispatchEvent {
	t.Helper()
	events := s.Events()
	require.Len(t, events, 1)
	return events[0]
}
