package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/warblerhq/warbler/internal/domain"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/transport/http/middleware"
)

type TimelineHandler struct {
	messageService *service.MessageService
}

func NewTimelineHandler(messageService *service.MessageService) *TimelineHandler {
	return &TimelineHandler{messageService: messageService}
}

type timelineResponse struct {
	Authenticated   bool             `json:"authenticated"`
	Messages        []domain.Message `json:"messages"`
	LikedMessageIDs []int64          `json:"liked_message_ids"`
}

// Home handles GET /api/v1/timeline. Authenticated viewers get the 100 most
// recent messages from themselves and their followees; anonymous viewers get
// the empty landing payload.
func (h *TimelineHandler) Home(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, timelineResponse{
			Authenticated:   false,
			Messages:        []domain.Message{},
			LikedMessageIDs: []int64{},
		})
		return
	}

	timeline, err := h.messageService.Timeline(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("building timeline failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, timelineResponse{
		Authenticated:   true,
		Messages:        timeline.Messages,
		LikedMessageIDs: timeline.LikedMessageIDs,
	})
}
