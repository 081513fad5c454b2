package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/linkup/internal/database"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// getTestPool connects to TEST_DATABASE_URL and applies the schema.
func getTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

// getTestRedisClient connects to TEST_REDIS_URL.
func getTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	require.NoError(t, client.Ping(context.Background()).Err(), "Failed to connect to test Redis")
	t.Cleanup(func() { client.Close() })
	return client
}

// createTestUser inserts a user that is deleted (with everything cascading
// from it) when the test ends.
func createTestUser(t *testing.T, pool *pgxpool.Pool, name string) *models.User {
	t.Helper()
	ctx := context.Background()
	user := &models.User{
		Name:         name,
		Email:        "test-" + uuid.New().String() + "@example.com",
		PasswordHash: "test-hash",
	}
	require.NoError(t, NewPostgresUserRepository(pool).Create(ctx, user), "Failed to create test user")

	t.Cleanup(func() {
		if _, err := pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID); err != nil {
			t.Logf("Warning: failed to cleanup test user: %v", err)
		}
	})
	return user
}

func requestNotification(recipient, sender *models.User) *models.Notification {
	return &models.Notification{
		UserID:     recipient.ID,
		Type:       models.NotificationConnectionRequest,
		Message:    sender.Name + " sent you a connection request.",
		FromUserID: sender.ID,
	}
}

func acceptedNotification(sender, recipient *models.User) *models.Notification {
	return &models.Notification{
		UserID:     sender.ID,
		Type:       models.NotificationConnectionAccepted,
		Message:    recipient.Name + " accepted your connection request.",
		FromUserID: recipient.ID,
	}
}
