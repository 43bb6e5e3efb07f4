package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/warblerhq/warbler/internal/monitoring"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/transport/http/middleware"
	"github.com/warblerhq/warbler/pkg/validator"
)

type UserHandler struct {
	userService    *service.UserService
	followService  *service.FollowService
	messageService *service.MessageService
}

func NewUserHandler(
	userService *service.UserService,
	followService *service.FollowService,
	messageService *service.MessageService,
) *UserHandler {
	return &UserHandler{
		userService:    userService,
		followService:  followService,
		messageService: messageService,
	}
}

// List handles GET /api/v1/users with an optional ?q= username filter.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		logrus.WithError(err).Error("listing users failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	profile, err := h.userService.Get(r.Context(), id)
	if err != nil {
		h.writeUserError(w, err, "fetching profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	users, err := h.followService.Following(r.Context(), id)
	if err != nil {
		h.writeUserError(w, err, "listing following")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	users, err := h.followService.Followers(r.Context(), id)
	if err != nil {
		h.writeUserError(w, err, "listing followers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Messages handles GET /api/v1/users/{id}/messages: that user's own
// messages, newest first.
func (h *UserHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	msgs, err := h.messageService.MessagesByUser(r.Context(), id)
	if err != nil {
		h.writeUserError(w, err, "listing messages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// Likes handles GET /api/v1/users/{id}/likes: the messages that user liked.
func (h *UserHandler) Likes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	msgs, err := h.messageService.LikedMessages(r.Context(), id)
	if err != nil {
		h.writeUserError(w, err, "listing likes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.followService.Follow(r.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			writeError(w, http.StatusBadRequest, "SELF_FOLLOW", "You cannot follow yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			logrus.WithError(err).Error("follow failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	monitoring.FollowsCreated.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Following"})
}

func (h *UserHandler) StopFollowing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.followService.Unfollow(r.Context(), userID, id); err != nil {
		logrus.WithError(err).Error("unfollow failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Unfollowed"})
}

// GetProfile returns the acting user's own profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		h.writeUserError(w, err, "fetching own profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile applies profile changes after the service re-verifies the
// supplied password.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateProfile(input.Username, input.Email, input.Bio, input.Location); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	user, err := h.userService.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCreds):
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid password")
		case errors.Is(err, service.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username already taken")
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			logrus.WithError(err).Error("profile update failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteAccount removes the acting user and invalidates their session in the
// same response.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.userService.Delete(r.Context(), userID); err != nil {
		logrus.WithError(err).Error("account deletion failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, err error, action string) {
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	logrus.WithError(err).Error(action + " failed")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
}

// pathID parses the {id} path segment; on failure it writes a 404 and
// reports false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return 0, false
	}
	return id, true
}
