package ws

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Hub manages all active WebSocket clients and routes feed events.
type Hub struct {
	// clients maps userID → client.
	clients map[int64]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
}

type broadcastMsg struct {
	authorID int64
	data     []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.userID] = client
			logrus.WithField("user_id", client.userID).Infof("ws hub: user connected (%d total)", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				// Only done is closed; send stays open so the read
				// goroutine's pong/error sends can never hit a closed
				// channel.
				close(client.done)
				logrus.WithField("user_id", client.userID).Infof("ws hub: user disconnected (%d total)", len(h.clients))
			}

		case msg := <-h.broadcast:
			for _, client := range h.clients {
				// A client hears an author's feed when they subscribed to it
				// or when it is their own.
				if client.userID != msg.authorID && !client.IsSubscribed(msg.authorID) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect
					delete(h.clients, client.userID)
					close(client.done)
				}
			}
		}
	}
}

// BroadcastToFeed sends an event to everyone subscribed to an author's feed.
func (h *Hub) BroadcastToFeed(authorID int64, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("ws hub: marshal error")
		return
	}
	h.broadcast <- &broadcastMsg{
		authorID: authorID,
		data:     data,
	}
}
