package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/linkup/internal/models"
)

type PostgresConnectionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresConnectionRepository(pool *pgxpool.Pool) *PostgresConnectionRepository {
	return &PostgresConnectionRepository{pool: pool}
}

func (r *PostgresConnectionRepository) GetConnections(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT connection_id FROM connections WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan connections: %w", err)
	}
	return ids, nil
}

func (r *PostgresConnectionRepository) ListConnections(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error) {
	query := `SELECT u.id, u.name, u.avatar, u.headline
	          FROM connections c
	          JOIN users u ON u.id = c.connection_id
	          WHERE c.user_id = $1
	          ORDER BY u.name ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	var summaries []models.UserSummary
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Avatar, &s.Headline); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}
	return summaries, nil
}

// AreConnected reports whether each user appears in the other's connection set.
func (r *PostgresConnectionRepository) AreConnected(ctx context.Context, a, b uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM connections
	          WHERE (user_id = $1 AND connection_id = $2)
	             OR (user_id = $2 AND connection_id = $1)`

	var n int
	if err := r.pool.QueryRow(ctx, query, a, b).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check connection: %w", err)
	}
	return n == 2, nil
}

func (r *PostgresConnectionRepository) GetRequest(ctx context.Context, recipientID, senderID uuid.UUID) (*models.ConnectionRequest, error) {
	query := `SELECT recipient_id, sender_id, created_at
	          FROM connection_requests
	          WHERE recipient_id = $1 AND sender_id = $2`

	var req models.ConnectionRequest
	err := r.pool.QueryRow(ctx, query, recipientID, senderID).Scan(&req.RecipientID, &req.SenderID, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection request: %w", err)
	}
	return &req, nil
}

// ListPending returns requests addressed to recipientID with the sender filled in.
func (r *PostgresConnectionRepository) ListPending(ctx context.Context, recipientID uuid.UUID) ([]*models.ConnectionRequest, error) {
	query := `SELECT cr.recipient_id, cr.sender_id, cr.created_at, u.id, u.name, u.avatar, u.headline
	          FROM connection_requests cr
	          JOIN users u ON u.id = cr.sender_id
	          WHERE cr.recipient_id = $1
	          ORDER BY cr.created_at DESC`

	return r.listRequests(ctx, query, recipientID, func(req *models.ConnectionRequest, u *models.UserSummary) {
		req.From = u
	})
}

// ListSent returns requests made by senderID with the recipient filled in.
func (r *PostgresConnectionRepository) ListSent(ctx context.Context, senderID uuid.UUID) ([]*models.ConnectionRequest, error) {
	query := `SELECT cr.recipient_id, cr.sender_id, cr.created_at, u.id, u.name, u.avatar, u.headline
	          FROM connection_requests cr
	          JOIN users u ON u.id = cr.recipient_id
	          WHERE cr.sender_id = $1
	          ORDER BY cr.created_at DESC`

	return r.listRequests(ctx, query, senderID, func(req *models.ConnectionRequest, u *models.UserSummary) {
		req.To = u
	})
}

func (r *PostgresConnectionRepository) listRequests(ctx context.Context, query string, id uuid.UUID, attach func(*models.ConnectionRequest, *models.UserSummary)) ([]*models.ConnectionRequest, error) {
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query connection requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ConnectionRequest
	for rows.Next() {
		var req models.ConnectionRequest
		var u models.UserSummary
		err := rows.Scan(&req.RecipientID, &req.SenderID, &req.CreatedAt, &u.ID, &u.Name, &u.Avatar, &u.Headline)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection request: %w", err)
		}
		attach(&req, &u)
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connection requests: %w", err)
	}
	return requests, nil
}

// CreateRequest records the pending request and the recipient's notification
// in one transaction. It returns ErrAlreadyExists when the pair is already
// connected or a request between them is pending in either direction.
func (r *PostgresConnectionRepository) CreateRequest(ctx context.Context, req *models.ConnectionRequest, notification *models.Notification) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockPair(ctx, tx, req.RecipientID, req.SenderID); err != nil {
			return err
		}

		query := `INSERT INTO connection_requests (recipient_id, sender_id)
		          SELECT $1::uuid, $2::uuid
		          WHERE NOT EXISTS (
		                    SELECT 1 FROM connections WHERE user_id = $1 AND connection_id = $2)
		            AND NOT EXISTS (
		                    SELECT 1 FROM connection_requests WHERE recipient_id = $2 AND sender_id = $1)
		          RETURNING created_at`

		err := tx.QueryRow(ctx, query, req.RecipientID, req.SenderID).Scan(&req.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("failed to create connection request: %w", err)
		}

		return insertNotification(ctx, tx, notification)
	})
}

// AcceptRequest removes the pending request, connects both users and appends
// the sender's notification in one transaction. A request the recipient sent
// the other way is dropped with its notification.
func (r *PostgresConnectionRepository) AcceptRequest(ctx context.Context, recipientID, senderID uuid.UUID, notification *models.Notification) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockPair(ctx, tx, recipientID, senderID); err != nil {
			return err
		}
		if err := deleteRequest(ctx, tx, recipientID, senderID); err != nil {
			return err
		}

		err := deleteRequest(ctx, tx, senderID, recipientID)
		switch {
		case err == nil:
			_, err := pruneNotifications(ctx, tx, senderID, models.NotificationFilter{
				Type:       models.NotificationConnectionRequest,
				FromUserID: recipientID,
			})
			if err != nil {
				return err
			}
		case !errors.Is(err, ErrNotFound):
			return err
		}

		query := `INSERT INTO connections (user_id, connection_id)
		          VALUES ($1, $2), ($2, $1)
		          ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(ctx, query, recipientID, senderID); err != nil {
			return fmt.Errorf("failed to create connection: %w", err)
		}

		return insertNotification(ctx, tx, notification)
	})
}

func (r *PostgresConnectionRepository) DeleteRequest(ctx context.Context, recipientID, senderID uuid.UUID) error {
	return deleteRequest(ctx, r.pool, recipientID, senderID)
}

// CancelRequest withdraws a pending request and prunes the recipient's
// matching connection_request notification in one transaction.
func (r *PostgresConnectionRepository) CancelRequest(ctx context.Context, recipientID, senderID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := deleteRequest(ctx, tx, recipientID, senderID); err != nil {
			return err
		}

		_, err := pruneNotifications(ctx, tx, recipientID, models.NotificationFilter{
			Type:       models.NotificationConnectionRequest,
			FromUserID: senderID,
		})
		return err
	})
}

// lockPair serializes request transitions between two users. Rows are locked
// in id order so opposite requests cannot deadlock.
func lockPair(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) error {
	query := `SELECT id FROM users WHERE id IN ($1, $2) ORDER BY id FOR UPDATE`

	if _, err := tx.Exec(ctx, query, a, b); err != nil {
		return fmt.Errorf("failed to lock users: %w", err)
	}
	return nil
}

func deleteRequest(ctx context.Context, q querier, recipientID, senderID uuid.UUID) error {
	query := `DELETE FROM connection_requests WHERE recipient_id = $1 AND sender_id = $2`

	result, err := q.Exec(ctx, query, recipientID, senderID)
	if err != nil {
		return fmt.Errorf("failed to delete connection request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
