package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/linkup/internal/models"
)

type PostgresMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresMessageRepository(pool *pgxpool.Pool) *PostgresMessageRepository {
	return &PostgresMessageRepository{pool: pool}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `INSERT INTO messages (sender_id, receiver_id, content)
	          VALUES ($1, $2, $3)
	          RETURNING id, is_read, created_at`

	err := r.pool.QueryRow(ctx, query, msg.SenderID, msg.ReceiverID, msg.Content).
		Scan(&msg.ID, &msg.IsRead, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetConversation returns both directions between a and b, oldest first.
func (r *PostgresMessageRepository) GetConversation(ctx context.Context, a, b uuid.UUID) ([]*models.Message, error) {
	query := `SELECT id, sender_id, receiver_id, content, is_read, read_at, created_at
	          FROM messages
	          WHERE (sender_id = $1 AND receiver_id = $2)
	             OR (sender_id = $2 AND receiver_id = $1)
	          ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, a, b)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.Content,
			&msg.IsRead,
			&msg.ReadAt,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// ListRecentPartners returns everyone userID exchanged messages with, most
// recent conversation first.
func (r *PostgresMessageRepository) ListRecentPartners(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT partner_id FROM (
	              SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS partner_id,
	                     MAX(created_at) AS last_at
	              FROM messages
	              WHERE sender_id = $1 OR receiver_id = $1
	              GROUP BY partner_id
	          ) p
	          ORDER BY last_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent partners: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan recent partners: %w", err)
	}
	return ids, nil
}

func (r *PostgresMessageRepository) MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	query := `UPDATE messages
	          SET is_read = TRUE, read_at = NOW()
	          WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE`

	result, err := r.pool.Exec(ctx, query, receiverID, senderID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return result.RowsAffected(), nil
}
