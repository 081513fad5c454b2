package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/mocks"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type notificationFixture struct {
	users         *mocks.MockUserRepository
	notifications *mocks.MockNotificationRepository
	live          *liveSetup
	svc           *NotificationService
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	ctrl := gomock.NewController(t)
	f := &notificationFixture{
		users:         mocks.NewMockUserRepository(ctrl),
		notifications: mocks.NewMockNotificationRepository(ctrl),
		live:          newLiveSetup(),
	}
	f.svc = NewNotificationService(f.users, f.notifications, f.live.dispatcher, discardLogger())
	return f
}

// expectAppend captures what gets stored and fills the generated columns.
func (f *notificationFixture) expectAppend(stored *[]*models.Notification) {
	f.notifications.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *models.Notification) error {
			n.ID = uuid.New()
			n.CreatedAt = time.Now().UTC()
			*stored = append(*stored, n)
			return nil
		}).
		Times(1)
}

func TestNotificationService_NotifyConnectionEvent(t *testing.T) {
	t.Run("should store the notification for an offline recipient", func(t *testing.T) {
		f := newNotificationFixture(t)
		sender := newUser("sam")
		recipientID := uuid.New()
		f.users.EXPECT().GetByID(gomock.Any(), sender.ID).Return(sender, nil)
		var stored []*models.Notification
		f.expectAppend(&stored)

		n, err := f.svc.NotifyConnectionEvent(context.Background(), recipientID, models.NotificationConnectionRequest, sender.ID, "sam sent you a connection request.")
		f.live.dispatcher.Wait()

		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, recipientID, stored[0].UserID)
		assert.Equal(t, models.NotificationConnectionRequest, stored[0].Type)
		assert.Equal(t, sender.ID, stored[0].FromUserID)
		assert.False(t, stored[0].Read)
		assert.Equal(t, stored[0], n)
	})

	t.Run("should push the notification to a live recipient", func(t *testing.T) {
		f := newNotificationFixture(t)
		sender := newUser("sam")
		recipientID := uuid.New()
		session := f.live.connect(recipientID)
		f.users.EXPECT().GetByID(gomock.Any(), sender.ID).Return(sender, nil)
		var stored []*models.Notification
		f.expectAppend(&stored)

		_, err := f.svc.NotifyConnectionEvent(context.Background(), recipientID, models.NotificationConnectionAccepted, sender.ID, "sam accepted your connection request.")
		f.live.dispatcher.Wait()

		require.NoError(t, err)
		evt := requireSingleEvent(t, session)
		assert.Equal(t, models.EventConnectionAccepted, evt.Type)
		payload, ok := evt.Payload.(models.ConnectionEvent)
		require.True(t, ok)
		assert.Equal(t, sender.ID, payload.FromUser.ID)
		assert.Equal(t, "sam", payload.FromUser.Name)
		assert.Equal(t, "sam accepted your connection request.", payload.Message)
		assert.Equal(t, stored[0].CreatedAt, payload.CreatedAt)
	})

	t.Run("should not push when storing fails", func(t *testing.T) {
		f := newNotificationFixture(t)
		sender := newUser("sam")
		recipientID := uuid.New()
		session := f.live.connect(recipientID)
		f.users.EXPECT().GetByID(gomock.Any(), sender.ID).Return(sender, nil)
		f.notifications.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := f.svc.NotifyConnectionEvent(context.Background(), recipientID, models.NotificationConnectionRequest, sender.ID, "x")
		f.live.dispatcher.Wait()

		require.Error(t, err)
		assert.Empty(t, session.Events())
	})

	t.Run("should reject other notification types", func(t *testing.T) {
		f := newNotificationFixture(t)
		f.notifications.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.NotifyConnectionEvent(context.Background(), uuid.New(), models.NotificationNewMessage, uuid.New(), "x")

		assert.ErrorIs(t, err, ErrInvalidEventType)
	})
}

func TestNotificationService_ListAndMarkAllRead(t *testing.T) {
	f := newNotificationFixture(t)
	userID := uuid.New()
	want := []*models.Notification{{ID: uuid.New(), UserID: userID}}
	f.notifications.EXPECT().ListByUserID(gomock.Any(), userID).Return(want, nil)
	f.notifications.EXPECT().MarkAllRead(gomock.Any(), userID).Return(nil)

	got, err := f.svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, f.svc.MarkAllRead(context.Background(), userID))
}
