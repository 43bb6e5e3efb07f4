package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warblerhq/warbler/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (user_id, text, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	return r.pool.QueryRow(ctx, query, msg.UserID, msg.Text, msg.CreatedAt).Scan(&msg.ID)
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT m.id, m.user_id, m.text, m.created_at, u.username, u.image_url
		FROM messages m
		JOIN users u ON m.user_id = u.id
		WHERE m.id = $1`

	var m domain.Message
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.UserID, &m.Text, &m.CreatedAt,
		&m.AuthorUsername, &m.AuthorImageURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.user_id, m.text, m.created_at, u.username, u.image_url
		FROM messages m
		JOIN users u ON m.user_id = u.id
		WHERE m.user_id = $1
		ORDER BY m.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Timeline is the one performance-relevant query: a single indexed IN-set
// filter with a limit, never one query per followee.
func (r *MessageRepo) Timeline(ctx context.Context, authorIDs []int64, limit int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.user_id, m.text, m.created_at, u.username, u.image_url
		FROM messages m
		JOIN users u ON m.user_id = u.id
		WHERE m.user_id = ANY($1)
		ORDER BY m.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, authorIDs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *MessageRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}

func scanMessages(rows pgx.Rows) ([]domain.Message, error) {
	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Text, &m.CreatedAt,
			&m.AuthorUsername, &m.AuthorImageURL,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
