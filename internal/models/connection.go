package models

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionRequest is a pending request from SenderID to RecipientID.
type ConnectionRequest struct {
	RecipientID uuid.UUID    `json:"recipient_id"`
	SenderID    uuid.UUID    `json:"sender_id"`
	CreatedAt   time.Time    `json:"created_at"`
	From        *UserSummary `json:"from,omitempty"`
	To          *UserSummary `json:"to,omitempty"`
}
