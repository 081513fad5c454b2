package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/prudhvinik1/linkup/internal/realtime"
	"github.com/prudhvinik1/linkup/internal/services"
)

type Options struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Connections   *services.ConnectionService
	Notifications *services.NotificationService
	Chat          *services.ChatService
	Presence      *services.PresenceService
	Log           *slog.Logger

	// AllowedOrigins restricts websocket upgrades. Empty allows any origin.
	AllowedOrigins []string
	SessionBuffer  int
	// BaseContext outlives every websocket session; cancelling it closes them all.
	BaseContext context.Context
}

type Handler struct {
	auth          *services.AuthService
	users         *services.UserService
	connections   *services.ConnectionService
	notifications *services.NotificationService
	chat          *services.ChatService
	presence      *services.PresenceService
	log           *slog.Logger

	validate      *validator.Validate
	upgrader      websocket.Upgrader
	sessionBuffer int
	baseCtx       context.Context
}

func New(opts Options) *Handler {
	baseCtx := opts.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	bufferSize := opts.SessionBuffer
	if bufferSize <= 0 {
		bufferSize = realtime.DefaultSendBuffer
	}

	return &Handler{
		auth:          opts.Auth,
		users:         opts.Users,
		connections:   opts.Connections,
		notifications: opts.Notifications,
		chat:          opts.Chat,
		presence:      opts.Presence,
		log:           opts.Log,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(opts.AllowedOrigins),
		},
		sessionBuffer: bufferSize,
		baseCtx:       baseCtx,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authenticates itself: browsers cannot set headers on a websocket handshake.
	r.Get("/ws", h.serveWS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Post("/auth/logout", h.logout)
			r.Post("/auth/logout-all", h.logoutAll)

			r.Get("/users/me", h.me)
			r.Get("/users/all", h.listUsers)
			r.Get("/users/{id}", h.getUser)

			r.Route("/connections", func(r chi.Router) {
				r.Get("/", h.listConnections)
				r.Get("/requests", h.pendingRequests)
				r.Get("/sent", h.sentRequests)
				r.Post("/request/{userId}", h.sendRequest)
				r.Delete("/request/{userId}", h.cancelRequest)
				r.Put("/accept/{fromId}", h.acceptRequest)
				r.Put("/reject/{fromId}", h.rejectRequest)
				r.Get("/notifications", h.listNotifications)
				r.Put("/notifications/read", h.markNotificationsRead)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", h.sendMessage)
				r.Get("/recent", h.recentChats)
				r.Get("/{userId}", h.conversation)
				r.Put("/{userId}/read", h.markConversationRead)
			})

			r.Get("/presence", h.bulkPresence)
		})
	})

	return r
}
