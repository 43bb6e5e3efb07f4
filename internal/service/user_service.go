package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warblerhq/warbler/internal/domain"
	"github.com/warblerhq/warbler/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	userRepo repository.UserRepository
	likeRepo repository.LikeRepository
	auth     *AuthService
}

func NewUserService(userRepo repository.UserRepository, likeRepo repository.LikeRepository, auth *AuthService) *UserService {
	return &UserService{
		userRepo: userRepo,
		likeRepo: likeRepo,
		auth:     auth,
	}
}

type Profile struct {
	User      *domain.User `json:"user"`
	LikeCount int          `json:"like_count"`
}

type UpdateProfileInput struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	// Password is the current password, re-verified before any change lands.
	Password string `json:"password"`
}

// List returns all users, or users whose username contains q.
func (s *UserService) List(ctx context.Context, q string) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	count, err := s.likeRepo.CountByUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, LikeCount: count}, nil
}

// UpdateProfile applies profile changes after re-verifying the caller's
// password against their current username.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	verified, err := s.auth.Authenticate(ctx, user.Username, input.Password)
	if err != nil {
		return nil, err
	}
	if verified == nil {
		return nil, ErrInvalidCreds
	}

	user.Username = input.Username
	user.Email = input.Email
	user.ImageURL = input.ImageURL
	if user.ImageURL == "" {
		user.ImageURL = domain.DefaultImageURL
	}
	user.HeaderImageURL = input.HeaderImageURL
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = domain.DefaultHeaderImageURL
	}
	user.Bio = input.Bio
	user.Location = input.Location
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return user, nil
}

// Delete removes the account. Messages, follow edges in both directions and
// likes disappear with it through the storage cascades, one atomic statement.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	return s.userRepo.Delete(ctx, userID)
}
