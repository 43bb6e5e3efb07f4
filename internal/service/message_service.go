package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/warblerhq/warbler/internal/domain"
	"github.com/warblerhq/warbler/internal/repository"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotMessageAuthor = errors.New("only the author can delete a message")
	ErrMessageEmpty     = errors.New("message text is empty")
	ErrMessageTooLong   = errors.New("message text is too long")
)

// timelineLimit caps the home timeline at the most recent entries.
const timelineLimit = 100

// Notifier pushes real-time feed events to connected clients.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
	NotifyDeletedMessage(authorID, messageID int64)
}

type MessageService struct {
	messageRepo repository.MessageRepository
	followRepo  repository.FollowRepository
	likeRepo    repository.LikeRepository
	notifier    Notifier
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	followRepo repository.FollowRepository,
	likeRepo repository.LikeRepository,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

type TimelineResponse struct {
	Messages        []domain.Message `json:"messages"`
	LikedMessageIDs []int64          `json:"liked_message_ids"`
}

// Compose creates a message owned by the acting user. Messages are never
// edited afterwards.
func (s *MessageService) Compose(ctx context.Context, userID int64, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMessageEmpty
	}
	if len([]rune(text)) > domain.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	msg := &domain.Message{
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	// Reload with author info for the response and feed event.
	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}

	return full, nil
}

func (s *MessageService) Get(ctx context.Context, id int64) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}

func (s *MessageService) Delete(ctx context.Context, userID, messageID int64) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.UserID != userID {
		return ErrNotMessageAuthor
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyDeletedMessage(msg.UserID, messageID)
	}

	return nil
}

// Timeline returns the 100 most recent messages authored by the user or
// anyone they follow, newest first, together with the viewer's liked ids.
func (s *MessageService) Timeline(ctx context.Context, userID int64) (*TimelineResponse, error) {
	followingIDs, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authorIDs := append(followingIDs, userID)

	messages, err := s.messageRepo.Timeline(ctx, authorIDs, timelineLimit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	likedIDs, err := s.likeRepo.MessageIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if likedIDs == nil {
		likedIDs = []int64{}
	}

	return &TimelineResponse{Messages: messages, LikedMessageIDs: likedIDs}, nil
}

// Like marks a message as liked; liking it again is a no-op.
func (s *MessageService) Like(ctx context.Context, userID, messageID int64) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}

	like := &domain.Like{
		UserID:    userID,
		MessageID: messageID,
		CreatedAt: time.Now(),
	}
	return s.likeRepo.Create(ctx, like)
}

// Unlike removes the like if present, no-op otherwise.
func (s *MessageService) Unlike(ctx context.Context, userID, messageID int64) error {
	return s.likeRepo.Delete(ctx, userID, messageID)
}

// MessagesByUser lists one user's messages, newest first, for their profile
// page.
func (s *MessageService) MessagesByUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	msgs, err := s.messageRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

func (s *MessageService) LikedMessages(ctx context.Context, userID int64) ([]domain.Message, error) {
	msgs, err := s.likeRepo.MessagesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

func (s *MessageService) LikedMessageIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.likeRepo.MessageIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
