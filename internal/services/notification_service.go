package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/prudhvinik1/linkup/internal/repositories"
)

type NotificationService struct {
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	dispatcher       LiveDispatcher
	log              *slog.Logger
}

func NewNotificationService(
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	dispatcher LiveDispatcher,
	log *slog.Logger,
) *NotificationService {
	return &NotificationService{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		dispatcher:       dispatcher,
		log:              log,
	}
}

// NotifyConnectionEvent stores a lifecycle notification for recipientID and
// then publishes it live. The notification is stored whether or not the
// recipient is online.
func (s *NotificationService) NotifyConnectionEvent(ctx context.Context, recipientID uuid.UUID, typ models.NotificationType, originID uuid.UUID, message string) (*models.Notification, error) {
	if typ != models.NotificationConnectionRequest && typ != models.NotificationConnectionAccepted {
		return nil, ErrInvalidEventType
	}
	if recipientID == uuid.Nil {
		return nil, ErrInvalidIdentity
	}
	origin, err := getUser(ctx, s.userRepo, originID)
	if err != nil {
		return nil, err
	}

	notification := &models.Notification{
		UserID:     recipientID,
		Type:       typ,
		Message:    message,
		FromUserID: originID,
	}
	if err := s.notificationRepo.Append(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	s.Publish(recipientID, notification, origin.Summary())
	return notification, nil
}

// Publish is the live half of NotifyConnectionEvent, for callers that already
// stored the notification in their own transaction.
func (s *NotificationService) Publish(recipientID uuid.UUID, notification *models.Notification, from models.UserSummary) {
	s.dispatcher.Go(recipientID, models.NewConnectionEvent(notification, from))
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	notifications, err := s.notificationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
