package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/realtime"
	"github.com/prudhvinik1/linkup/internal/services"
	"github.com/samber/lo"
)

const presenceWriteTimeout = 2 * time.Second

var errSendFailed = errors.New("failed to send message")

func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || lo.Contains(allowed, origin)
	}
}

// serveWS upgrades an authenticated request to a live session. The token comes
// from the Authorization header or the token query parameter.
func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := h.auth.VerifyToken(r.Context(), token)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "user_id", claims.UserID, "error", err)
		return
	}

	session := realtime.NewWSSession(conn, claims.UserID, h.sessionBuffer, h.log, realtime.SessionHooks{
		OnClose: func(s *realtime.WSSession) {
			ctx, cancel := context.WithTimeout(context.Background(), presenceWriteTimeout)
			defer cancel()
			h.presence.OnSessionClosed(ctx, s)
		},
		OnPong: func(s *realtime.WSSession) {
			ctx, cancel := context.WithTimeout(context.Background(), presenceWriteTimeout)
			defer cancel()
			h.presence.Touch(ctx, s.UserID(), s)
		},
		OnFrame: h.handleFrame,
	})

	h.presence.RegisterSession(r.Context(), claims.UserID, session)
	session.Run(h.baseCtx)
}

// handleFrame runs a client frame on behalf of the session's user. The
// returned error is shown to the client, so unexpected ones are replaced.
func (h *Handler) handleFrame(ctx context.Context, s *realtime.WSSession, frame realtime.InboundFrame) error {
	switch frame.Type {
	case realtime.FrameSendMessage:
		to, err := uuid.Parse(frame.To)
		if err != nil {
			return services.ErrInvalidIdentity
		}
		_, err = h.chat.SendMessage(ctx, s.UserID(), to, frame.Content)
		if err != nil && statusFor(err) == http.StatusInternalServerError {
			h.log.Error("websocket send failed", "user_id", s.UserID(), "error", err)
			return errSendFailed
		}
		return err
	default:
		return fmt.Errorf("unknown frame type %q", frame.Type)
	}
}
