package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
)

const DefaultDispatchTimeout = 5 * time.Second

type Outcome int

const (
	Delivered Outcome = iota + 1
	SkippedOffline
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case SkippedOffline:
		return "skipped-offline"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Dispatcher makes best-effort live deliveries. It never queues for offline
// users and never reports failure to the caller: a failed or timed out send is
// the same as the user being offline.
type Dispatcher struct {
	registry *Registry
	log      *slog.Logger
	timeout  time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(registry *Registry, log *slog.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &Dispatcher{
		registry: registry,
		log:      log,
		timeout:  timeout,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, userID uuid.UUID, evt models.DispatchEvent) (outcome Outcome) {
	s, ok := d.registry.Lookup(userID)
	if !ok {
		d.log.Debug("user offline, live event skipped", "user_id", userID, "event", evt.Type)
		return SkippedOffline
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("session send panicked", "user_id", userID, "session_id", s.ID(), "panic", r)
			outcome = SkippedOffline
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := s.Send(ctx, evt); err != nil {
		d.log.Warn("live delivery failed", "user_id", userID, "session_id", s.ID(), "event", evt.Type, "error", err)
		return SkippedOffline
	}

	d.log.Debug("live event delivered", "user_id", userID, "session_id", s.ID(), "event", evt.Type)
	return Delivered
}

// Go dispatches in the background. The outcome is only logged. After Close
// the event is dropped.
func (d *Dispatcher) Go(userID uuid.UUID, evt models.DispatchEvent) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Debug("dispatcher closed, live event dropped", "user_id", userID, "event", evt.Type)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.Dispatch(context.Background(), userID, evt)
	}()
}

// Wait blocks until every background dispatch started with Go has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops Go from accepting events and waits for the ones in flight.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}
