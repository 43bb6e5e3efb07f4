package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func postMessage(t *testing.T, app *testApp, session *http.Cookie, text string) int64 {
	t.Helper()
	resp := app.do(t, http.MethodPost, "/api/v1/messages", map[string]string{"text": text}, session)
	mustStatus(t, resp.Code, http.StatusCreated)
	var out struct {
		ID int64 `json:"id"`
	}
	decodeJSON(t, resp, &out)
	if out.ID == 0 {
		t.Fatal("expected the created message to have an id")
	}
	return out.ID
}

func TestComposeRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodPost, "/api/v1/messages", map[string]string{"text": "hello"}, nil)
	mustStatus(t, resp.Code, http.StatusUnauthorized)
}

func TestComposeAndFetch(t *testing.T) {
	app := newTestApp(t)
	_, session := app.signup(t, "kestrel")

	id := postMessage(t, app, session, "first warble")

	resp := app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/messages/%d", id), nil, nil)
	mustStatus(t, resp.Code, http.StatusOK)
	var out struct {
		Text           string `json:"text"`
		AuthorUsername string `json:"author_username"`
	}
	decodeJSON(t, resp, &out)
	if out.Text != "first warble" || out.AuthorUsername != "kestrel" {
		t.Fatalf("unexpected message payload: %+v", out)
	}
}

func TestComposeRejectsOverlongText(t *testing.T) {
	app := newTestApp(t)
	_, session := app.signup(t, "kestrel")

	resp := app.do(t, http.MethodPost, "/api/v1/messages", map[string]string{
		"text": strings.Repeat("a", 141),
	}, session)
	mustStatus(t, resp.Code, http.StatusBadRequest)
	if code := errorCode(t, resp); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %q", code)
	}
}

func TestDeleteMessageOnlyByAuthor(t *testing.T) {
	app := newTestApp(t)
	_, authorSession := app.signup(t, "kestrel")
	_, otherSession := app.signup(t, "wren")

	id := postMessage(t, app, authorSession, "mine alone")

	resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/messages/%d/delete", id), nil, otherSession)
	mustStatus(t, resp.Code, http.StatusForbidden)
	if code := errorCode(t, resp); code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got %q", code)
	}

	resp = app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/messages/%d/delete", id), nil, authorSession)
	mustStatus(t, resp.Code, http.StatusOK)

	resp = app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/messages/%d", id), nil, nil)
	mustStatus(t, resp.Code, http.StatusNotFound)
}

func TestLikeAndUnlike(t *testing.T) {
	app := newTestApp(t)
	_, authorSession := app.signup(t, "kestrel")
	likerID, likerSession := app.signup(t, "wren")

	id := postMessage(t, app, authorSession, "like me")

	resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/messages/%d/like", id), nil, likerSession)
	mustStatus(t, resp.Code, http.StatusOK)

	// A second like is absorbed silently.
	resp = app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/messages/%d/like", id), nil, likerSession)
	mustStatus(t, resp.Code, http.StatusOK)

	resp = app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/likes", likerID), nil, likerSession)
	mustStatus(t, resp.Code, http.StatusOK)
	var out struct {
		Messages []struct {
			ID int64 `json:"id"`
		} `json:"messages"`
	}
	decodeJSON(t, resp, &out)
	if len(out.Messages) != 1 || out.Messages[0].ID != id {
		t.Fatalf("expected exactly one liked message %d, got %+v", id, out.Messages)
	}

	resp = app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/messages/%d/unlike", id), nil, likerSession)
	mustStatus(t, resp.Code, http.StatusOK)

	resp = app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/likes", likerID), nil, likerSession)
	decodeJSON(t, resp, &out)
	if len(out.Messages) != 0 {
		t.Fatalf("expected no liked messages after unlike, got %+v", out.Messages)
	}
}

func TestLikeUnknownMessage(t *testing.T) {
	app := newTestApp(t)
	_, session := app.signup(t, "kestrel")

	resp := app.do(t, http.MethodPost, "/api/v1/messages/9999/like", nil, session)
	mustStatus(t, resp.Code, http.StatusNotFound)
}
