package domain

import (
	"time"
)

// Follow is a directed edge: the follower observes the followee's posts.
// "A follows B" says nothing about whether B follows A.
type Follow struct {
	FollowerID int64     `json:"follower_id"`
	FolloweeID int64     `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
