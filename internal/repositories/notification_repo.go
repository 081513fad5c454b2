package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/linkup/internal/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresNotificationRepository(pool *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{pool: pool}
}

func (r *PostgresNotificationRepository) Append(ctx context.Context, notification *models.Notification) error {
	return insertNotification(ctx, r.pool, notification)
}

// Prune deletes every notification of userID matching filter.
func (r *PostgresNotificationRepository) Prune(ctx context.Context, userID uuid.UUID, filter models.NotificationFilter) (int64, error) {
	return pruneNotifications(ctx, r.pool, userID, filter)
}

// ListByUserID returns the notifications of userID, newest first.
func (r *PostgresNotificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	query := `SELECT n.id, n.user_id, n.type, n.message, n.from_user_id, n.read, n.created_at,
	                 u.id, u.name, u.avatar
	          FROM notifications n
	          JOIN users u ON u.id = n.from_user_id
	          WHERE n.user_id = $1
	          ORDER BY n.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		var from models.UserSummary
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Type,
			&n.Message,
			&n.FromUserID,
			&n.Read,
			&n.CreatedAt,
			&from.ID,
			&from.Name,
			&from.Avatar,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.FromUser = &from
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func insertNotification(ctx context.Context, q querier, n *models.Notification) error {
	if !n.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidNotificationType, n.Type)
	}

	query := `INSERT INTO notifications (user_id, type, message, from_user_id, read)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`

	err := q.QueryRow(ctx, query, n.UserID, n.Type, n.Message, n.FromUserID, n.Read).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append notification: %w", err)
	}
	return nil
}

func pruneNotifications(ctx context.Context, q querier, userID uuid.UUID, filter models.NotificationFilter) (int64, error) {
	query := `DELETE FROM notifications WHERE user_id = $1 AND type = $2 AND from_user_id = $3`

	result, err := q.Exec(ctx, query, userID, filter.Type, filter.FromUserID)
	if err != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}
	return result.RowsAffected(), nil
}
