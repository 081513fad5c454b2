package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsFixture struct {
	registry   *Registry
	dispatcher *Dispatcher
	userID     uuid.UUID
	sessions   chan *WSSession
	frames     chan InboundFrame
	closed     chan string
	server     *httptest.Server
}

func newWSFixture(t *testing.T, frameErr error) *wsFixture {
	t.Helper()
	f := &wsFixture{
		registry: NewRegistry(),
		userID:   uuid.New(),
		sessions: make(chan *WSSession, 4),
		frames:   make(chan InboundFrame, 4),
		closed:   make(chan string, 4),
	}
	f.dispatcher = NewDispatcher(f.registry, discardLogger(), time.Second)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s := NewWSSession(conn, f.userID, 4, discardLogger(), SessionHooks{
			OnClose: func(s *WSSession) {
				f.registry.Unregister(s)
				f.closed <- s.ID()
			},
			OnFrame: func(ctx context.Context, s *WSSession, frame InboundFrame) error {
				f.frames <- frame
				return frameErr
			},
		})
		f.registry.Register(f.userID, s)
		f.sessions <- s
		s.Run(context.Background())
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *wsFixture) dial(t *testing.T) (*websocket.Conn, *WSSession) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case s := <-f.sessions:
		return conn, s
	case <-time.After(2 * time.Second):
		t.Fatal("session was not registered")
		return nil, nil
	}
}

func TestWSSession_DispatchReachesClient(t *testing.T) {
	f := newWSFixture(t, nil)
	conn, _ := f.dial(t)

	msg := &models.Message{
		ID:         uuid.New(),
		SenderID:   uuid.New(),
		ReceiverID: f.userID,
		Content:    "hello",
		CreatedAt:  time.Now().UTC(),
	}
	outcome := f.dispatcher.Dispatch(context.Background(), f.userID, models.NewMessageEvent(msg))
	require.Equal(t, Delivered, outcome)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got map[string]any
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "new_message", got["type"])
	assert.Equal(t, "hello", got["message"])
	assert.Equal(t, msg.SenderID.String(), got["fromUser"])
}

func TestWSSession_InboundFrameReachesHook(t *testing.T) {
	f := newWSFixture(t, nil)
	conn, _ := f.dial(t)
	to := uuid.NewString()

	require.NoError(t, conn.WriteJSON(InboundFrame{Type: FrameSendMessage, To: to, Content: "hi"}))

	select {
	case frame := <-f.frames:
		assert.Equal(t, FrameSendMessage, frame.Type)
		assert.Equal(t, to, frame.To)
		assert.Equal(t, "hi", frame.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("frame was not handled")
	}
}

func TestWSSession_FrameErrorIsReportedToClient(t *testing.T) {
	f := newWSFixture(t, errors.New("you can only message users you are connected with"))
	conn, _ := f.dial(t)

	require.NoError(t, conn.WriteJSON(InboundFrame{Type: FrameSendMessage, To: uuid.NewString(), Content: "hi"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got map[string]any
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "error", got["type"])
	assert.Contains(t, got["message"], "connected")
}

func TestWSSession_ClientCloseUnregisters(t *testing.T) {
	f := newWSFixture(t, nil)
	conn, s := f.dial(t)
	require.True(t, f.registry.IsOnline(f.userID))

	conn.Close()

	select {
	case id := <-f.closed:
		assert.Equal(t, s.ID(), id)
	case <-time.After(2 * time.Second):
		t.Fatal("close hook did not run")
	}
	assert.False(t, f.registry.IsOnline(f.userID))

	err := s.Send(context.Background(), models.DispatchEvent{Type: models.EventNewMessage, Payload: "x"})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

// TestWSSession_ReconnectKeepsNewSession closes the first connection after a
// second one registered for the same user.
func TestWSSession_ReconnectKeepsNewSession(t *testing.T) {
	f := newWSFixture(t, nil)
	oldConn, oldSession := f.dial(t)
	_, newSession := f.dial(t)

	oldConn.Close()
	select {
	case id := <-f.closed:
		assert.Equal(t, oldSession.ID(), id)
	case <-time.After(2 * time.Second):
		t.Fatal("close hook did not run")
	}

	got, ok := f.registry.Lookup(f.userID)
	require.True(t, ok)
	assert.Equal(t, newSession.ID(), got.ID())
}

func TestWSSession_CloseIsIdempotent(t *testing.T) {
	f := newWSFixture(t, nil)
	_, s := f.dial(t)

	s.Close()
	s.Close()

	select {
	case <-f.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close hook did not run")
	}
	select {
	case <-f.closed:
		t.Fatal("close hook ran twice")
	case <-time.After(100 * time.Millisecond):
	}
}
