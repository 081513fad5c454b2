package realtime

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/realtime/realtimetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()
	s := realtimetest.NewSession()

	// Given nobody is registered
	_, ok := registry.Lookup(userID)
	require.False(t, ok, "unknown user should be offline")

	// When a session registers
	replaced := registry.Register(userID, s)

	// Then lookup resolves to it
	assert.Nil(t, replaced)
	got, ok := registry.Lookup(userID)
	require.True(t, ok)
	assert.Equal(t, s.ID(), got.ID())
	assert.True(t, registry.IsOnline(userID))
	assert.Equal(t, 1, registry.Len())
}

// TestRegistry_LastRegistrationWins checks a second registration replaces the first.
func TestRegistry_LastRegistrationWins(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()
	s1 := realtimetest.NewSession()
	s2 := realtimetest.NewSession()

	registry.Register(userID, s1)
	replaced := registry.Register(userID, s2)

	require.NotNil(t, replaced)
	assert.Equal(t, s1.ID(), replaced.ID(), "the orphaned session is reported")
	got, ok := registry.Lookup(userID)
	require.True(t, ok)
	assert.Equal(t, s2.ID(), got.ID())
	assert.Equal(t, 1, registry.Len())
}

// TestRegistry_StaleCloseKeepsNewerEntry is the reconnect race: the old
// session's close arrives after the new session registered.
func TestRegistry_StaleCloseKeepsNewerEntry(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()
	s1 := realtimetest.NewSession()
	s2 := realtimetest.NewSession()

	registry.Register(userID, s1)
	registry.Register(userID, s2)

	removedFor, removed := registry.Unregister(s1)

	assert.False(t, removed, "stale close must not remove the entry")
	assert.Equal(t, uuid.Nil, removedFor)
	got, ok := registry.Lookup(userID)
	require.True(t, ok, "user must stay online")
	assert.Equal(t, s2.ID(), got.ID())
}

func TestRegistry_UnregisterOwner(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()
	s := realtimetest.NewSession()
	registry.Register(userID, s)

	removedFor, removed := registry.Unregister(s)

	assert.True(t, removed)
	assert.Equal(t, userID, removedFor)
	assert.False(t, registry.IsOnline(userID))

	// A second close of the same handle is a no-op
	_, removed = registry.Unregister(s)
	assert.False(t, removed)
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()
	s := realtimetest.NewSession()

	registry.Register(userID, s)
	replaced := registry.Register(userID, s)

	assert.Nil(t, replaced, "re-registering the same handle replaces nothing")
	assert.Equal(t, 1, registry.Len())

	_, removed := registry.Unregister(s)
	assert.True(t, removed)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_IgnoresEmptyIdentity(t *testing.T) {
	registry := NewRegistry()

	registry.Register(uuid.Nil, realtimetest.NewSession())
	registry.Register(uuid.New(), nil)

	assert.Equal(t, 0, registry.Len())
	_, removed := registry.Unregister(nil)
	assert.False(t, removed)
}

func TestRegistry_HandleRebindsToNewUser(t *testing.T) {
	registry := NewRegistry()
	alice, bob := uuid.New(), uuid.New()
	s := realtimetest.NewSession()

	registry.Register(alice, s)
	registry.Register(bob, s)

	assert.False(t, registry.IsOnline(alice), "a handle serves one user at a time")
	assert.True(t, registry.IsOnline(bob))

	removedFor, removed := registry.Unregister(s)
	assert.True(t, removed)
	assert.Equal(t, bob, removedFor)
}

func TestRegistry_ConcurrentRegisterUnregister(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()
	final := realtimetest.NewSession()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := realtimetest.NewSession()
			registry.Register(userID, s)
			registry.Lookup(userID)
			registry.Unregister(s)
		}()
	}
	wg.Wait()

	registry.Register(userID, final)
	got, ok := registry.Lookup(userID)
	require.True(t, ok)
	assert.Equal(t, final.ID(), got.ID())
	assert.Equal(t, 1, registry.Len())
}
