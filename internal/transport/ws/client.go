package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warblerhq/warbler/internal/repository"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64

	// subscribedFeeds tracks which authors' feeds this client listens to.
	subscribedFeeds map[int64]struct{}
	mu              sync.RWMutex

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:             hub,
		conn:            conn,
		userID:          userID,
		subscribedFeeds: make(map[int64]struct{}),
		send:            make(chan []byte, sendBufSize),
		done:            make(chan struct{}),
	}
}

// SubscribeFollowees seeds the feed subscriptions with everyone the user
// already follows, so a connected follower hears new messages without an
// explicit feed.subscribe. Follows made later can be picked up with one.
func (c *Client) SubscribeFollowees(ctx context.Context, follows repository.FollowRepository) error {
	ids, err := follows.FollowingIDs(ctx, c.userID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		c.Subscribe(id)
	}
	return nil
}

// IsSubscribed checks if this client is subscribed to an author's feed.
func (c *Client) IsSubscribed(authorID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscribedFeeds[authorID]
	return ok
}

// Subscribe adds a feed subscription.
func (c *Client) Subscribe(authorID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribedFeeds[authorID] = struct{}{}
}

// Unsubscribe removes a feed subscription.
func (c *Client) Unsubscribe(authorID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribedFeeds, authorID)
}

// ReadPump reads messages from the WebSocket and routes them to the Hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				logrus.WithField("user_id", c.userID).Info("ws: client disconnected")
			} else {
				logrus.WithField("user_id", c.userID).WithError(err).Warn("ws: read error")
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				logrus.WithField("user_id", c.userID).WithError(err).Warn("ws: write error")
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				logrus.WithField("user_id", c.userID).WithError(err).Warn("ws: ping error")
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeFeedSubscribe:
		var p FeedPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid feed.subscribe payload")
			return
		}
		c.Subscribe(p.AuthorID)

	case EventTypeFeedUnsubscribe:
		var p FeedPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid feed.unsubscribe payload")
			return
		}
		c.Unsubscribe(p.AuthorID)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
