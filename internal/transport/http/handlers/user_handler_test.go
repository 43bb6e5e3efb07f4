package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"
)

func TestFollowRequiresAuth(t *testing.T) {
	app := newTestApp(t)
	targetID, _ := app.signup(t, "kestrel")

	resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/follow/%d", targetID), nil, nil)
	mustStatus(t, resp.Code, http.StatusUnauthorized)

	ok, err := app.store.Follows().Exists(context.Background(), 0, targetID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatal("anonymous request must not create a follow edge")
	}
}

func TestFollowAndListFollowing(t *testing.T) {
	app := newTestApp(t)
	targetID, _ := app.signup(t, "kestrel")
	_, session := app.signup(t, "wren")

	resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/follow/%d", targetID), nil, session)
	mustStatus(t, resp.Code, http.StatusOK)

	// Repeating the follow is a no-op, not an error.
	resp = app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/follow/%d", targetID), nil, session)
	mustStatus(t, resp.Code, http.StatusOK)

	resp = app.do(t, http.MethodGet, "/api/v1/users/profile", nil, session)
	mustStatus(t, resp.Code, http.StatusOK)
	var profile struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	decodeJSON(t, resp, &profile)

	resp = app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/following", profile.User.ID), nil, session)
	mustStatus(t, resp.Code, http.StatusOK)
	var out struct {
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	}
	decodeJSON(t, resp, &out)
	if len(out.Users) != 1 || out.Users[0].Username != "kestrel" {
		t.Fatalf("expected following [kestrel], got %+v", out.Users)
	}
}

func TestFollowSelfRejected(t *testing.T) {
	app := newTestApp(t)
	id, session := app.signup(t, "kestrel")

	resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/follow/%d", id), nil, session)
	mustStatus(t, resp.Code, http.StatusBadRequest)
	if code := errorCode(t, resp); code != "SELF_FOLLOW" {
		t.Fatalf("expected SELF_FOLLOW, got %q", code)
	}
}

func TestFollowUnknownUser(t *testing.T) {
	app := newTestApp(t)
	_, session := app.signup(t, "kestrel")

	resp := app.do(t, http.MethodPost, "/api/v1/users/follow/9999", nil, session)
	mustStatus(t, resp.Code, http.StatusNotFound)
}

func TestStopFollowing(t *testing.T) {
	app := newTestApp(t)
	targetID, _ := app.signup(t, "kestrel")
	followerID, session := app.signup(t, "wren")

	resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/follow/%d", targetID), nil, session)
	mustStatus(t, resp.Code, http.StatusOK)

	resp = app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/stop-following/%d", targetID), nil, session)
	mustStatus(t, resp.Code, http.StatusOK)

	ok, err := app.store.Follows().Exists(context.Background(), followerID, targetID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatal("edge should be gone after stop-following")
	}
}

func TestListUsersWithSearch(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "kestrel")
	app.signup(t, "wren")

	resp := app.do(t, http.MethodGet, "/api/v1/users?q=kes", nil, nil)
	mustStatus(t, resp.Code, http.StatusOK)
	var out struct {
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	}
	decodeJSON(t, resp, &out)
	if len(out.Users) != 1 || out.Users[0].Username != "kestrel" {
		t.Fatalf("expected [kestrel], got %+v", out.Users)
	}
}

func TestUserMessagesPubliclyListable(t *testing.T) {
	app := newTestApp(t)
	id, session := app.signup(t, "kestrel")
	postMessage(t, app, session, "older")
	postMessage(t, app, session, "newer")

	resp := app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/messages", id), nil, nil)
	mustStatus(t, resp.Code, http.StatusOK)
	var out struct {
		Messages []struct {
			Text string `json:"text"`
		} `json:"messages"`
	}
	decodeJSON(t, resp, &out)
	if len(out.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %+v", out.Messages)
	}
}

func TestUpdateProfileWrongPassword(t *testing.T) {
	app := newTestApp(t)
	_, session := app.signup(t, "kestrel")

	resp := app.do(t, http.MethodPatch, "/api/v1/users/profile", map[string]string{
		"username": "kestrel",
		"email":    "kestrel@example.com",
		"bio":      "birdwatcher",
		"password": "WrongSecret",
	}, session)
	mustStatus(t, resp.Code, http.StatusUnauthorized)
	if code := errorCode(t, resp); code != "INVALID_CREDENTIALS" {
		t.Fatalf("expected INVALID_CREDENTIALS, got %q", code)
	}
}

func TestUpdateProfile(t *testing.T) {
	app := newTestApp(t)
	id, session := app.signup(t, "kestrel")

	resp := app.do(t, http.MethodPatch, "/api/v1/users/profile", map[string]string{
		"username": "kestrel",
		"email":    "kestrel@example.com",
		"bio":      "birdwatcher",
		"location": "Helsinki",
		"password": "Secret123",
	}, session)
	mustStatus(t, resp.Code, http.StatusOK)

	resp = app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id), nil, nil)
	mustStatus(t, resp.Code, http.StatusOK)
	var out struct {
		User struct {
			Bio      string `json:"bio"`
			Location string `json:"location"`
		} `json:"user"`
	}
	decodeJSON(t, resp, &out)
	if out.User.Bio != "birdwatcher" || out.User.Location != "Helsinki" {
		t.Fatalf("profile changes not applied: %+v", out.User)
	}
}

func TestDeleteAccountInvalidatesSession(t *testing.T) {
	app := newTestApp(t)
	id, session := app.signup(t, "kestrel")

	resp := app.do(t, http.MethodPost, "/api/v1/users/delete", nil, session)
	mustStatus(t, resp.Code, http.StatusOK)

	cleared := sessionCookie(resp)
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatal("account deletion should expire the session cookie")
	}

	// The old token now names a user that no longer exists.
	resp = app.do(t, http.MethodGet, "/api/v1/users/profile", nil, session)
	mustStatus(t, resp.Code, http.StatusNotFound)

	resp = app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id), nil, nil)
	mustStatus(t, resp.Code, http.StatusNotFound)
}
