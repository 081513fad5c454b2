package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/mocks"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/prudhvinik1/linkup/internal/realtime"
	"github.com/prudhvinik1/linkup/internal/services"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSecret = "handler-test-secret"

type testServer struct {
	users         *mocks.MockUserRepository
	connections   *mocks.MockConnectionRepository
	messages      *mocks.MockMessageRepository
	notifications *mocks.MockNotificationRepository
	sessions      *mocks.MockSessionRepository
	presence      *mocks.MockPresenceRepository

	registry   *realtime.Registry
	dispatcher *realtime.Dispatcher
	handler    http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ts := &testServer{
		users:         mocks.NewMockUserRepository(ctrl),
		connections:   mocks.NewMockConnectionRepository(ctrl),
		messages:      mocks.NewMockMessageRepository(ctrl),
		notifications: mocks.NewMockNotificationRepository(ctrl),
		sessions:      mocks.NewMockSessionRepository(ctrl),
		presence:      mocks.NewMockPresenceRepository(ctrl),
		registry:      realtime.NewRegistry(),
	}
	ts.dispatcher = realtime.NewDispatcher(ts.registry, log, time.Second)
	t.Cleanup(ts.dispatcher.Wait)

	notifier := services.NewNotificationService(ts.users, ts.notifications, ts.dispatcher, log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ts.handler = New(Options{
		Auth:          services.NewAuthService(ts.users, ts.sessions, testSecret, time.Hour),
		Users:         services.NewUserService(ts.users),
		Connections:   services.NewConnectionService(ts.users, ts.connections, notifier, log),
		Notifications: notifier,
		Chat:          services.NewChatService(ts.users, ts.connections, ts.messages, ts.dispatcher, true, log),
		Presence:      services.NewPresenceService(ts.registry, ts.presence, log),
		Log:           log,
		BaseContext:   ctx,
	}).Routes()
	return ts
}

// addUser makes user resolvable and returns a token with a live session.
func (ts *testServer) addUser(t *testing.T, name string) (*models.User, string) {
	t.Helper()
	user := &models.User{ID: uuid.New(), Name: name, Email: name + "@example.com"}
	ts.users.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil).AnyTimes()

	sessionID := uuid.NewString()
	expiresAt := time.Now().Add(time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID.String(),
		"jti": sessionID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	ts.sessions.EXPECT().
		GetByID(gomock.Any(), sessionID).
		Return(&models.Session{ID: sessionID, UserID: user.ID, ExpiresAt: expiresAt}, nil).
		AnyTimes()
	return user, token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
