package realtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/prudhvinik1/linkup/internal/realtime/realtimetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent() models.DispatchEvent {
	return models.NewMessageEvent(&models.Message{
		ID:         uuid.New(),
		SenderID:   uuid.New(),
		ReceiverID: uuid.New(),
		Content:    "hello",
		CreatedAt:  time.Now(),
	})
}

type panickingSession struct{}

func (panickingSession) ID() string { return "panic" }
func (panickingSession) Send(context.Context, models.DispatchEvent) error {
	panic("boom")
}

func TestDispatcher_OfflineUserIsSkipped(t *testing.T) {
	d := NewDispatcher(NewRegistry(), discardLogger(), time.Second)

	outcome := d.Dispatch(context.Background(), uuid.New(), testEvent())

	assert.Equal(t, SkippedOffline, outcome)
}

func TestDispatcher_DeliversToRegisteredSession(t *testing.T) {
	registry := NewRegistry()
	d := NewDispatcher(registry, discardLogger(), time.Second)
	userID := uuid.New()
	s := realtimetest.NewSession()
	registry.Register(userID, s)
	evt := testEvent()

	outcome := d.Dispatch(context.Background(), userID, evt)

	assert.Equal(t, Delivered, outcome)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, evt, s.Events()[0])
}

func TestDispatcher_SendFailureIsSkippedOffline(t *testing.T) {
	registry := NewRegistry()
	d := NewDispatcher(registry, discardLogger(), time.Second)
	userID := uuid.New()
	s := realtimetest.NewSession()
	s.FailWith(errors.New("broken pipe"))
	registry.Register(userID, s)

	outcome := d.Dispatch(context.Background(), userID, testEvent())

	assert.Equal(t, SkippedOffline, outcome)
}

func TestDispatcher_TimedOutSendIsSkippedOffline(t *testing.T) {
	registry := NewRegistry()
	d := NewDispatcher(registry, discardLogger(), 20*time.Millisecond)
	userID := uuid.New()
	s := realtimetest.NewSession()
	s.Block()
	registry.Register(userID, s)

	start := time.Now()
	outcome := d.Dispatch(context.Background(), userID, testEvent())

	assert.Equal(t, SkippedOffline, outcome)
	assert.Less(t, time.Since(start), time.Second, "send must be bounded by the dispatch timeout")
}

func TestDispatcher_PanickingSessionIsRecovered(t *testing.T) {
	registry := NewRegistry()
	d := NewDispatcher(registry, discardLogger(), time.Second)
	userID := uuid.New()
	registry.Register(userID, panickingSession{})

	assert.NotPanics(t, func() {
		assert.Equal(t, SkippedOffline, d.Dispatch(context.Background(), userID, testEvent()))
	})
}

func TestDispatcher_GoRunsInBackground(t *testing.T) {
	registry := NewRegistry()
	d := NewDispatcher(registry, discardLogger(), time.Second)
	userID := uuid.New()
	s := realtimetest.NewSession()
	registry.Register(userID, s)

	d.Go(userID, testEvent())
	d.Go(uuid.New(), testEvent())
	d.Wait()

	assert.Len(t, s.Events(), 1)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "delivered", Delivered.String())
	assert.Equal(t, "skipped-offline", SkippedOffline.String())
}

func TestDispatcher_CloseWaitsForInFlight(t *testing.T) {
	registry := NewRegistry()
	d := NewDispatcher(registry, discardLogger(), 100*time.Millisecond)
	userID := uuid.New()
	s := realtimetest.NewSession()
	s.Block()
	registry.Register(userID, s)

	d.Go(userID, testEvent())
	start := time.Now()
	d.Close()

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "Close returns only after the blocked send times out")
}

func TestDispatcher_GoAfterCloseIsDropped(t *testing.T) {
	registry := NewRegistry()
	d := NewDispatcher(registry, discardLogger(), time.Second)
	userID := uuid.New()
	s := realtimetest.NewSession()
	registry.Register(userID, s)
	d.Close()

	d.Go(userID, testEvent())
	d.Wait()

	assert.Empty(t, s.Events())
}
