package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/prudhvinik1/linkup/internal/repositories"
	"github.com/samber/lo"
)

// LiveDispatcher starts a best-effort live delivery without waiting for it.
// *realtime.Dispatcher satisfies it.
type LiveDispatcher interface {
	Go(userID uuid.UUID, evt models.DispatchEvent)
}

type ChatService struct {
	userRepo       repositories.UserRepository
	connectionRepo repositories.ConnectionRepository
	messageRepo    repositories.MessageRepository
	dispatcher     LiveDispatcher
	echoToSender   bool
	log            *slog.Logger
}

func NewChatService(
	userRepo repositories.UserRepository,
	connectionRepo repositories.ConnectionRepository,
	messageRepo repositories.MessageRepository,
	dispatcher LiveDispatcher,
	echoToSender bool,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		userRepo:       userRepo,
		connectionRepo: connectionRepo,
		messageRepo:    messageRepo,
		dispatcher:     dispatcher,
		echoToSender:   echoToSender,
		log:            log,
	}
}

// SendMessage persists a message between two connected users and then pushes
// it live to the receiver, and to the sender when echo is enabled. Once the
// message is stored the call succeeds whatever happens to the live push.
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.requireConnected(ctx, senderID, receiverID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	evt := models.NewMessageEvent(msg)
	s.dispatcher.Go(receiverID, evt)
	if s.echoToSender {
		s.dispatcher.Go(senderID, evt)
	}

	s.log.Debug("message sent", "message_id", msg.ID, "sender_id", senderID, "receiver_id", receiverID)
	return msg, nil
}

// GetConversation returns the messages between two connected users, oldest first.
func (s *ChatService) GetConversation(ctx context.Context, userID, otherID uuid.UUID) ([]*models.Message, error) {
	if err := s.requireConnected(ctx, userID, otherID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.GetConversation(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return messages, nil
}

// RecentChats lists the connections userID has exchanged messages with, most
// recent conversation first.
func (s *ChatService) RecentChats(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error) {
	partners, err := s.messageRepo.ListRecentPartners(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent chats: %w", err)
	}
	connections, err := s.connectionRepo.ListConnections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	byID := lo.KeyBy(connections, func(u models.UserSummary) uuid.UUID { return u.ID })
	return lo.FilterMap(partners, func(id uuid.UUID, _ int) (models.UserSummary, bool) {
		u, ok := byID[id]
		return u, ok
	}), nil
}

// MarkConversationRead marks everything otherID sent to userID as read.
func (s *ChatService) MarkConversationRead(ctx context.Context, userID, otherID uuid.UUID) (int64, error) {
	if userID == uuid.Nil || otherID == uuid.Nil {
		return 0, ErrInvalidIdentity
	}
	n, err := s.messageRepo.MarkConversationRead(ctx, userID, otherID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return n, nil
}

// requireConnected checks both users exist and are mutual connections.
// A user is never connected to themselves.
func (s *ChatService) requireConnected(ctx context.Context, userID, otherID uuid.UUID) error {
	if _, err := getUser(ctx, s.userRepo, userID); err != nil {
		return err
	}
	if _, err := getUser(ctx, s.userRepo, otherID); err != nil {
		return err
	}
	if userID == otherID {
		return ErrNotConnected
	}

	connected, err := s.connectionRepo.AreConnected(ctx, userID, otherID)
	if err != nil {
		return fmt.Errorf("failed to check connection: %w", err)
	}
	if !connected {
		return ErrNotConnected
	}
	return nil
}
