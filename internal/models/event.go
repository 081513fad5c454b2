package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventNewMessage         EventType = "new_message"
	EventConnectionRequest  EventType = "connection_request"
	EventConnectionAccepted EventType = "connection_accepted"
)

// DispatchEvent is a transient push to a live session. It is never persisted.
// Payload is what goes over the wire, serialized as JSON.
type DispatchEvent struct {
	Type    EventType
	Payload any
}

type MessageEvent struct {
	Type      EventType `json:"type"`
	MessageID uuid.UUID `json:"messageId"`
	FromUser  uuid.UUID `json:"fromUser"`
	ToUser    uuid.UUID `json:"toUser"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type ConnectionEvent struct {
	Type      EventType   `json:"type"`
	Message   string      `json:"message"`
	FromUser  UserSummary `json:"fromUser"`
	CreatedAt time.Time   `json:"createdAt"`
}

func NewMessageEvent(msg *Message) DispatchEvent {
	return DispatchEvent{
		Type: EventNewMessage,
		Payload: MessageEvent{
			Type:      EventNewMessage,
			MessageID: msg.ID,
			FromUser:  msg.SenderID,
			ToUser:    msg.ReceiverID,
			Message:   msg.Content,
			CreatedAt: msg.CreatedAt,
		},
	}
}

func NewConnectionEvent(n *Notification, from UserSummary) DispatchEvent {
	t := EventType(n.Type)
	return DispatchEvent{
		Type: t,
		Payload: ConnectionEvent{
			Type:      t,
			Message:   n.Message,
			FromUser:  from,
			CreatedAt: n.CreatedAt,
		},
	}
}
