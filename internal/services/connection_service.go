package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/prudhvinik1/linkup/internal/repositories"
)

// ConnectionService drives the request lifecycle:
//
//	[none] --SendRequest--> [pending] --Accept--> [connected]
//	[pending] --Reject | Cancel--> [none]
//
// Each transition that notifies someone stores the notification in the same
// transaction as the state change, then publishes it live.
type ConnectionService struct {
	userRepo       repositories.UserRepository
	connectionRepo repositories.ConnectionRepository
	notifications  *NotificationService
	log            *slog.Logger
}

func NewConnectionService(
	userRepo repositories.UserRepository,
	connectionRepo repositories.ConnectionRepository,
	notifications *NotificationService,
	log *slog.Logger,
) *ConnectionService {
	return &ConnectionService{
		userRepo:       userRepo,
		connectionRepo: connectionRepo,
		notifications:  notifications,
		log:            log,
	}
}

func (s *ConnectionService) SendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.ConnectionRequest, error) {
	if senderID == recipientID {
		return nil, ErrSelfRequest
	}
	sender, err := getUser(ctx, s.userRepo, senderID)
	if err != nil {
		return nil, err
	}
	recipient, err := getUser(ctx, s.userRepo, recipientID)
	if err != nil {
		return nil, err
	}

	connected, err := s.connectionRepo.AreConnected(ctx, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check connection: %w", err)
	}
	if connected {
		return nil, ErrAlreadyConnected
	}

	// A request the other way round is still pending: accept that one instead.
	_, err = s.connectionRepo.GetRequest(ctx, senderID, recipientID)
	if err == nil {
		return nil, ErrRequestExists
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check connection request: %w", err)
	}

	req := &models.ConnectionRequest{
		RecipientID: recipientID,
		SenderID:    senderID,
	}
	notification := &models.Notification{
		UserID:     recipientID,
		Type:       models.NotificationConnectionRequest,
		Message:    fmt.Sprintf("%s sent you a connection request.", sender.Name),
		FromUserID: senderID,
	}
	err = s.connectionRepo.CreateRequest(ctx, req, notification)
	if errors.Is(err, repositories.ErrAlreadyExists) {
		return nil, ErrRequestExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create connection request: %w", err)
	}

	s.notifications.Publish(recipientID, notification, sender.Summary())
	s.log.Info("connection request sent", "sender_id", senderID, "recipient_id", recipientID)

	summary := recipient.Summary()
	req.To = &summary
	return req, nil
}

// Accept connects recipientID with the user whose pending request it accepts.
func (s *ConnectionService) Accept(ctx context.Context, recipientID, senderID uuid.UUID) error {
	recipient, err := getUser(ctx, s.userRepo, recipientID)
	if err != nil {
		return err
	}
	if senderID == uuid.Nil {
		return ErrInvalidIdentity
	}

	notification := &models.Notification{
		UserID:     senderID,
		Type:       models.NotificationConnectionAccepted,
		Message:    fmt.Sprintf("%s accepted your connection request.", recipient.Name),
		FromUserID: recipientID,
	}
	err = s.connectionRepo.AcceptRequest(ctx, recipientID, senderID, notification)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to accept connection request: %w", err)
	}

	s.notifications.Publish(senderID, notification, recipient.Summary())
	s.log.Info("connection request accepted", "sender_id", senderID, "recipient_id", recipientID)
	return nil
}

// Reject drops a pending request. The sender is not told and the recipient
// keeps the original notification.
func (s *ConnectionService) Reject(ctx context.Context, recipientID, senderID uuid.UUID) error {
	err := s.connectionRepo.DeleteRequest(ctx, recipientID, senderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to reject connection request: %w", err)
	}
	return nil
}

// Cancel withdraws the sender's own pending request together with the
// recipient's notification about it. Nothing is pushed live.
func (s *ConnectionService) Cancel(ctx context.Context, senderID, recipientID uuid.UUID) error {
	err := s.connectionRepo.CancelRequest(ctx, recipientID, senderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to cancel connection request: %w", err)
	}
	return nil
}

func (s *ConnectionService) Pending(ctx context.Context, userID uuid.UUID) ([]*models.ConnectionRequest, error) {
	requests, err := s.connectionRepo.ListPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}

func (s *ConnectionService) Sent(ctx context.Context, userID uuid.UUID) ([]*models.ConnectionRequest, error) {
	requests, err := s.connectionRepo.ListSent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent requests: %w", err)
	}
	return requests, nil
}

func (s *ConnectionService) Connections(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error) {
	connections, err := s.connectionRepo.ListConnections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return connections, nil
}
