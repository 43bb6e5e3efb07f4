package ws

import (
	"github.com/sirupsen/logrus"
	"github.com/warblerhq/warbler/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageNew, &msg.UserID, MessagePayload{Message: *msg})
	if err != nil {
		logrus.WithError(err).Error("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToFeed(msg.UserID, evt)
}

func (n *HubNotifier) NotifyDeletedMessage(authorID, messageID int64) {
	evt, err := NewEvent(EventTypeMessageDeleted, &authorID, MessageDeletedPayload{ID: messageID})
	if err != nil {
		logrus.WithError(err).Error("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToFeed(authorID, evt)
}
