package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warblerhq/warbler/internal/domain"
	"github.com/warblerhq/warbler/internal/repository"
)

const userColumns = "id, username, email, password_hash, image_url, header_image_url, bio, location, created_at, updated_at"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, image_url, header_image_url, bio, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		user.Username, user.Email, user.PasswordHash,
		user.ImageURL, user.HeaderImageURL, user.Bio, user.Location,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	return mapUniqueViolation(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
}

func (r *UserRepo) List(ctx context.Context, usernameQuery string) ([]domain.User, error) {
	query := "SELECT " + userColumns + " FROM users ORDER BY username ASC"
	args := []any{}
	if usernameQuery != "" {
		query = "SELECT " + userColumns + " FROM users WHERE username ILIKE '%' || $1 || '%' ORDER BY username ASC"
		args = append(args, usernameQuery)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, image_url = $4, header_image_url = $5,
			bio = $6, location = $7, updated_at = $8
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email,
		user.ImageURL, user.HeaderImageURL, user.Bio, user.Location,
		user.UpdatedAt,
	)
	return mapUniqueViolation(err)
}

// Delete removes the user row; messages, follow edges in both directions and
// likes go with it via ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.ImageURL, &u.HeaderImageURL, &u.Bio, &u.Location,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.ImageURL, &u.HeaderImageURL, &u.Bio, &u.Location,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// mapUniqueViolation translates Postgres unique-violation errors (SQLSTATE
// 23505) into repository sentinels by constraint name.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return repository.ErrDuplicateUsername
		case "users_email_key":
			return repository.ErrDuplicateEmail
		}
	}
	return err
}
