package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/prudhvinik1/linkup/internal/realtime"
	"github.com/prudhvinik1/linkup/internal/repositories"
)

// PresenceService owns session lifecycle. The in-process registry decides who
// is online; Redis holds a mirror that expires on its own if this process dies.
// Mirror failures are logged and never fail a registration or close.
type PresenceService struct {
	registry     *realtime.Registry
	presenceRepo repositories.PresenceRepository
	log          *slog.Logger
}

func NewPresenceService(registry *realtime.Registry, presenceRepo repositories.PresenceRepository, log *slog.Logger) *PresenceService {
	return &PresenceService{
		registry:     registry,
		presenceRepo: presenceRepo,
		log:          log,
	}
}

// RegisterSession makes s the live session of userID, replacing any earlier one.
func (s *PresenceService) RegisterSession(ctx context.Context, userID uuid.UUID, session realtime.Session) {
	if userID == uuid.Nil || session == nil {
		return
	}

	if replaced := s.registry.Register(userID, session); replaced != nil && replaced.ID() != session.ID() {
		s.log.Info("session replaced", "user_id", userID, "old_session_id", replaced.ID(), "session_id", session.ID())
	} else {
		s.log.Info("session registered", "user_id", userID, "session_id", session.ID())
	}
	s.mirror(ctx, userID, session)
}

// OnSessionClosed must be called once per session when it ends. A session that
// was already replaced leaves the newer registration alone.
func (s *PresenceService) OnSessionClosed(ctx context.Context, session realtime.Session) {
	if session == nil {
		return
	}
	userID, ok := s.registry.Unregister(session)
	if !ok {
		s.log.Debug("stale session closed", "session_id", session.ID())
		return
	}

	s.log.Info("session closed", "user_id", userID, "session_id", session.ID())
	if err := s.presenceRepo.DeletePresence(ctx, userID); err != nil {
		s.log.Warn("failed to clear presence", "user_id", userID, "error", err)
	}
}

// Touch refreshes the mirror's TTL while session is still the registered one.
func (s *PresenceService) Touch(ctx context.Context, userID uuid.UUID, session realtime.Session) {
	current, ok := s.registry.Lookup(userID)
	if !ok || current.ID() != session.ID() {
		return
	}
	s.mirror(ctx, userID, session)
}

func (s *PresenceService) IsOnline(userID uuid.UUID) bool {
	return s.registry.IsOnline(userID)
}

// BulkPresence reports every requested user. Users with a session in this
// process are online regardless of the mirror; if Redis is unavailable the
// answer falls back to this process alone.
func (s *PresenceService) BulkPresence(ctx context.Context, userIDs []uuid.UUID) map[uuid.UUID]models.Presence {
	result, err := s.presenceRepo.GetBulkPresence(ctx, userIDs)
	if err != nil {
		s.log.Warn("failed to read presence mirror", "error", err)
		result = make(map[uuid.UUID]models.Presence, len(userIDs))
	}

	for _, id := range userIDs {
		if session, ok := s.registry.Lookup(id); ok {
			p := result[id]
			p.UserID = id
			p.SessionID = session.ID()
			p.Status = models.StatusOnline
			result[id] = p
			continue
		}
		if _, ok := result[id]; !ok {
			result[id] = models.Presence{UserID: id, Status: models.StatusOffline}
		}
	}
	return result
}

func (s *PresenceService) mirror(ctx context.Context, userID uuid.UUID, session realtime.Session) {
	err := s.presenceRepo.SetPresence(ctx, &models.Presence{
		UserID:    userID,
		SessionID: session.ID(),
		Status:    models.StatusOnline,
	})
	if err != nil {
		s.log.Warn("failed to mirror presence", "user_id", userID, "error", err)
	}
}
