package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/warblerhq/warbler/internal/monitoring"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/transport/http/middleware"
	"github.com/warblerhq/warbler/pkg/validator"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

type composeInput struct {
	Text string `json:"text"`
}

func (h *MessageHandler) Compose(w http.ResponseWriter, r *http.Request) {
	var input composeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateMessage(input.Text); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	msg, err := h.messageService.Compose(r.Context(), userID, input.Text)
	if err != nil {
		logrus.WithError(err).Error("composing message failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	monitoring.MessagesPosted.Inc()
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	msg, err := h.messageService.Get(r.Context(), id)
	if err != nil {
		h.writeMessageError(w, err, "fetching message")
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.messageService.Delete(r.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		case errors.Is(err, service.ErrNotMessageAuthor):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the author can delete a message")
		default:
			logrus.WithError(err).Error("deleting message failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Message deleted"})
}

func (h *MessageHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.messageService.Like(r.Context(), userID, id); err != nil {
		h.writeMessageError(w, err, "liking message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Liked"})
}

func (h *MessageHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.messageService.Unlike(r.Context(), userID, id); err != nil {
		logrus.WithError(err).Error("unliking message failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Unliked"})
}

func (h *MessageHandler) writeMessageError(w http.ResponseWriter, err error, action string) {
	if errors.Is(err, service.ErrMessageNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		return
	}
	logrus.WithError(err).Error(action + " failed")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
}
