package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warblerhq/warbler/internal/domain"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

// Create is idempotent: the composite primary key plus ON CONFLICT makes
// liking an already-liked message a no-op instead of a duplicate row.
func (r *LikeRepo) Create(ctx context.Context, like *domain.Like) error {
	query := `
		INSERT INTO likes (user_id, message_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, message_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, like.UserID, like.MessageID, like.CreatedAt)
	return err
}

func (r *LikeRepo) Delete(ctx context.Context, userID, messageID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND message_id = $2`,
		userID, messageID,
	)
	return err
}

func (r *LikeRepo) MessageIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT message_id FROM likes WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *LikeRepo) MessagesByUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.user_id, m.text, m.created_at, u.username, u.image_url
		FROM likes l
		JOIN messages m ON l.message_id = m.id
		JOIN users u ON m.user_id = u.id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *LikeRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM likes WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
