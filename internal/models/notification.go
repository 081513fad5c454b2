package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationConnectionRequest  NotificationType = "connection_request"
	NotificationConnectionAccepted NotificationType = "connection_accepted"
	NotificationNewMessage         NotificationType = "new_message"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationConnectionRequest, NotificationConnectionAccepted, NotificationNewMessage:
		return true
	}
	return false
}

type Notification struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	Type       NotificationType `json:"type"`
	Message    string           `json:"message"`
	FromUserID uuid.UUID        `json:"from_user_id"`
	FromUser   *UserSummary     `json:"from_user,omitempty"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NotificationFilter selects entries of a single owner by type and origin.
type NotificationFilter struct {
	Type       NotificationType
	FromUserID uuid.UUID
}
