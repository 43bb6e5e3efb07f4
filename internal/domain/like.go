package domain

import (
	"time"
)

// Like marks a message as liked by a user. The (user, message) pair exists
// at most once.
type Like struct {
	UserID    int64     `json:"user_id"`
	MessageID int64     `json:"message_id"`
	CreatedAt time.Time `json:"created_at"`
}
