package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warblerhq/warbler/internal/domain"
	"github.com/warblerhq/warbler/internal/repository"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow adds the directed edge from follower to followee. Following someone
// you already follow is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}

	target, err := s.userRepo.GetByID(ctx, followeeID)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if target == nil {
		return ErrUserNotFound
	}

	follow := &domain.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	}
	return s.followRepo.Create(ctx, follow)
}

// Unfollow removes the edge if present, no-op otherwise.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	return s.followRepo.Delete(ctx, followerID, followeeID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followeeID)
}

func (s *FollowService) IsFollowedBy(ctx context.Context, userID, followerID int64) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, userID)
}

func (s *FollowService) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	users, err := s.followRepo.Followers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *FollowService) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	users, err := s.followRepo.Following(ctx, userID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *FollowService) requireUser(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return nil
}
