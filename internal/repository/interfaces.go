package repository

import (
	"context"

	"github.com/warblerhq/warbler/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, usernameQuery string) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Message, error)
	Timeline(ctx context.Context, authorIDs []int64, limit int) ([]domain.Message, error)
	Delete(ctx context.Context, id int64) error
}

type FollowRepository interface {
	Create(ctx context.Context, follow *domain.Follow) error
	Delete(ctx context.Context, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	Followers(ctx context.Context, userID int64) ([]domain.User, error)
	Following(ctx context.Context, userID int64) ([]domain.User, error)
	FollowingIDs(ctx context.Context, userID int64) ([]int64, error)
}

type LikeRepository interface {
	Create(ctx context.Context, like *domain.Like) error
	Delete(ctx context.Context, userID, messageID int64) error
	MessageIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	MessagesByUser(ctx context.Context, userID int64) ([]domain.Message, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
}
