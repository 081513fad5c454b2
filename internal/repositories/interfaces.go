package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repositories_mock.go -package=mocks

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, excludeID uuid.UUID) ([]*models.User, error)
}

// ConnectionRepository owns connections and pending requests. Every method that
// changes connection state together with a notification does so in one transaction.
type ConnectionRepository interface {
	GetConnections(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListConnections(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error)
	AreConnected(ctx context.Context, a, b uuid.UUID) (bool, error)
	GetRequest(ctx context.Context, recipientID, senderID uuid.UUID) (*models.ConnectionRequest, error)
	ListPending(ctx context.Context, recipientID uuid.UUID) ([]*models.ConnectionRequest, error)
	ListSent(ctx context.Context, senderID uuid.UUID) ([]*models.ConnectionRequest, error)
	CreateRequest(ctx context.Context, req *models.ConnectionRequest, notification *models.Notification) error
	AcceptRequest(ctx context.Context, recipientID, senderID uuid.UUID, notification *models.Notification) error
	DeleteRequest(ctx context.Context, recipientID, senderID uuid.UUID) error
	CancelRequest(ctx context.Context, recipientID, senderID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetConversation(ctx context.Context, a, b uuid.UUID) ([]*models.Message, error)
	ListRecentPartners(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error)
}

type NotificationRepository interface {
	Append(ctx context.Context, notification *models.Notification) error
	Prune(ctx context.Context, userID uuid.UUID, filter models.NotificationFilter) (int64, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

type PresenceRepository interface {
	SetPresence(ctx context.Context, presence *models.Presence) error
	DeletePresence(ctx context.Context, userID uuid.UUID) error
	GetBulkPresence(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.Presence, error)
}
