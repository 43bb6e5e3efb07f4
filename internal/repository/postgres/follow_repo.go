package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warblerhq/warbler/internal/domain"
)

type FollowRepo struct {
	pool *pgxpool.Pool
}

func NewFollowRepo(pool *pgxpool.Pool) *FollowRepo {
	return &FollowRepo{pool: pool}
}

// Create inserts the edge; an already-present pair is a no-op so following
// twice cannot fail or duplicate.
func (r *FollowRepo) Create(ctx context.Context, follow *domain.Follow) error {
	query := `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followee_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, follow.FollowerID, follow.FolloweeID, follow.CreatedAt)
	return err
}

func (r *FollowRepo) Delete(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	)
	return err
}

func (r *FollowRepo) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID,
	).Scan(&exists)
	return exists, err
}

func (r *FollowRepo) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	query := `
		SELECT ` + prefixedUserColumns + `
		FROM follows f
		JOIN users u ON f.follower_id = u.id
		WHERE f.followee_id = $1
		ORDER BY u.username ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *FollowRepo) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	query := `
		SELECT ` + prefixedUserColumns + `
		FROM follows f
		JOIN users u ON f.followee_id = u.id
		WHERE f.follower_id = $1
		ORDER BY u.username ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *FollowRepo) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT followee_id FROM follows WHERE follower_id = $1`, userID)
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

const prefixedUserColumns = "u.id, u.username, u.email, u.password_hash, u.image_url, u.header_image_url, u.bio, u.location, u.created_at, u.updated_at"
