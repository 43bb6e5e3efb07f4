package domain

import (
	"time"
)

// MaxMessageLength bounds the text of a single warble.
const MaxMessageLength = 140

type Message struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	// Joined fields
	AuthorUsername string `json:"author_username,omitempty"`
	AuthorImageURL string `json:"author_image_url,omitempty"`
}
