package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prudhvinik1/linkup/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024

	DefaultSendBuffer = 32

	FrameSendMessage = "send_message"
	frameError       = "error"
)

var ErrSessionClosed = errors.New("session closed")

// InboundFrame is a client-to-server frame.
type InboundFrame struct {
	Type    string `json:"type"`
	To      string `json:"to,omitempty"`
	Content string `json:"content,omitempty"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SessionHooks are the lifecycle callbacks of a WSSession. All are optional.
// OnClose runs exactly once, whatever ended the session.
type SessionHooks struct {
	OnClose func(s *WSSession)
	OnPong  func(s *WSSession)
	OnFrame func(ctx context.Context, s *WSSession, f InboundFrame) error
}

// WSSession is a Session backed by a gorilla websocket connection. Sends are
// enqueued on a bounded outbound queue drained by a single write pump.
type WSSession struct {
	id     string
	userID uuid.UUID
	conn   *websocket.Conn
	log    *slog.Logger
	hooks  SessionHooks

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewWSSession(conn *websocket.Conn, userID uuid.UUID, buffer int, log *slog.Logger, hooks SessionHooks) *WSSession {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	id := uuid.NewString()
	return &WSSession{
		id:     id,
		userID: userID,
		conn:   conn,
		log:    log.With("session_id", id, "user_id", userID),
		hooks:  hooks,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

func (s *WSSession) ID() string {
	return s.id
}

func (s *WSSession) UserID() uuid.UUID {
	return s.userID
}

// Done is closed once the session has shut down.
func (s *WSSession) Done() <-chan struct{} {
	return s.done
}

// Send enqueues the event payload. It fails if the session is closed or if the
// queue stays full until ctx expires.
func (s *WSSession) Send(ctx context.Context, evt models.DispatchEvent) error {
	data, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", evt.Type, err)
	}
	return s.enqueue(ctx, data)
}

func (s *WSSession) enqueue(ctx context.Context, data []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.send <- data:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return fmt.Errorf("failed to enqueue frame: %w", ctx.Err())
	}
}

// Run pumps the connection until it fails or ctx is cancelled. It always
// closes the session before returning.
func (s *WSSession) Run(ctx context.Context) {
	go s.writePump()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
	s.readPump(ctx)
}

// Close is idempotent.
func (s *WSSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		s.conn.Close()
		s.log.Debug("session closed")
		if s.hooks.OnClose != nil {
			s.hooks.OnClose(s)
		}
	})
}

func (s *WSSession) readPump(ctx context.Context) {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		if s.hooks.OnPong != nil {
			s.hooks.OnPong(s)
		}
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", "error", err)
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.reject(ctx, "malformed frame")
			continue
		}
		if s.hooks.OnFrame == nil {
			continue
		}
		if err := s.hooks.OnFrame(ctx, s, frame); err != nil {
			s.reject(ctx, err.Error())
		}
	}
}

func (s *WSSession) reject(ctx context.Context, message string) {
	data, err := json.Marshal(errorFrame{Type: frameError, Message: message})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	if err := s.enqueue(ctx, data); err != nil {
		s.log.Debug("failed to send error frame", "error", err)
	}
}

func (s *WSSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Warn("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
