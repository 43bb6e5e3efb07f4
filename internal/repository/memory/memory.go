// Package memory holds in-memory repository implementations that mirror the
// relational schema's semantics (unique constraints, delete cascades). The
// service and handler tests run against it instead of a live database.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/warblerhq/warbler/internal/domain"
	"github.com/warblerhq/warbler/internal/repository"
)

type Store struct {
	mu sync.Mutex

	users      map[int64]domain.User
	nextUserID int64

	messages      map[int64]domain.Message
	nextMessageID int64

	follows map[[2]int64]domain.Follow // (follower, followee)
	likes   map[[2]int64]domain.Like   // (user, message)
}

func NewStore() *Store {
	return &Store{
		users:    make(map[int64]domain.User),
		messages: make(map[int64]domain.Message),
		follows:  make(map[[2]int64]domain.Follow),
		likes:    make(map[[2]int64]domain.Like),
	}
}

func (s *Store) Users() repository.UserRepository       { return &userRepo{s: s} }
func (s *Store) Messages() repository.MessageRepository { return &messageRepo{s: s} }
func (s *Store) Follows() repository.FollowRepository   { return &followRepo{s: s} }
func (s *Store) Likes() repository.LikeRepository       { return &likeRepo{s: s} }

// --- UserRepository ---

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	r.s.nextUserID++
	user.ID = r.s.nextUserID
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) List(ctx context.Context, usernameQuery string) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var users []domain.User
	q := strings.ToLower(usernameQuery)
	for _, u := range r.s.users {
		if q == "" || strings.Contains(strings.ToLower(u.Username), q) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, u := range r.s.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.users, id)

	// Emulate ON DELETE CASCADE.
	for msgID, m := range r.s.messages {
		if m.UserID == id {
			delete(r.s.messages, msgID)
			for key := range r.s.likes {
				if key[1] == msgID {
					delete(r.s.likes, key)
				}
			}
		}
	}
	for key := range r.s.follows {
		if key[0] == id || key[1] == id {
			delete(r.s.follows, key)
		}
	}
	for key := range r.s.likes {
		if key[0] == id {
			delete(r.s.likes, key)
		}
	}
	return nil
}

// --- MessageRepository ---

type messageRepo struct {
	s *Store
}

func (r *messageRepo) Create(ctx context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextMessageID++
	msg.ID = r.s.nextMessageID
	r.s.messages[msg.ID] = *msg
	return nil
}

func (r *messageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, nil
	}
	r.joinAuthor(&m)
	return &m, nil
}

func (r *messageRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	return r.Timeline(ctx, []int64{userID}, math.MaxInt)
}

func (r *messageRepo) Timeline(ctx context.Context, authorIDs []int64, limit int) ([]domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	authors := make(map[int64]struct{}, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = struct{}{}
	}

	var msgs []domain.Message
	for _, m := range r.s.messages {
		if _, ok := authors[m.UserID]; !ok {
			continue
		}
		r.joinAuthor(&m)
		msgs = append(msgs, m)
	}

	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID > msgs[j].ID
		}
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (r *messageRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.messages, id)
	for key := range r.s.likes {
		if key[1] == id {
			delete(r.s.likes, key)
		}
	}
	return nil
}

// joinAuthor fills the fields the SQL queries join in. Callers hold the lock.
func (r *messageRepo) joinAuthor(m *domain.Message) {
	if u, ok := r.s.users[m.UserID]; ok {
		m.AuthorUsername = u.Username
		m.AuthorImageURL = u.ImageURL
	}
}

// --- FollowRepository ---

type followRepo struct {
	s *Store
}

func (r *followRepo) Create(ctx context.Context, follow *domain.Follow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]int64{follow.FollowerID, follow.FolloweeID}
	if _, exists := r.s.follows[key]; !exists {
		r.s.follows[key] = *follow
	}
	return nil
}

func (r *followRepo) Delete(ctx context.Context, followerID, followeeID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.follows, [2]int64{followerID, followeeID})
	return nil
}

func (r *followRepo) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.follows[[2]int64{followerID, followeeID}]
	return ok, nil
}

func (r *followRepo) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var users []domain.User
	for key := range r.s.follows {
		if key[1] == userID {
			if u, ok := r.s.users[key[0]]; ok {
				users = append(users, u)
			}
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *followRepo) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var users []domain.User
	for key := range r.s.follows {
		if key[0] == userID {
			if u, ok := r.s.users[key[1]]; ok {
				users = append(users, u)
			}
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *followRepo) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []int64
	for key := range r.s.follows {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	return ids, nil
}

// --- LikeRepository ---

type likeRepo struct {
	s *Store
}

func (r *likeRepo) Create(ctx context.Context, like *domain.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]int64{like.UserID, like.MessageID}
	if _, exists := r.s.likes[key]; !exists {
		r.s.likes[key] = *like
	}
	return nil
}

func (r *likeRepo) Delete(ctx context.Context, userID, messageID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.likes, [2]int64{userID, messageID})
	return nil
}

func (r *likeRepo) MessageIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.messageIDsLocked(userID), nil
}

func (r *likeRepo) MessagesByUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	mr := &messageRepo{s: r.s}
	var msgs []domain.Message
	for _, id := range r.messageIDsLocked(userID) {
		if m, ok := r.s.messages[id]; ok {
			mr.joinAuthor(&m)
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

func (r *likeRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.messageIDsLocked(userID)), nil
}

func (r *likeRepo) messageIDsLocked(userID int64) []int64 {
	var ids []int64
	for key := range r.s.likes {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
