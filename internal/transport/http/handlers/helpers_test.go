package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/warblerhq/warbler/internal/repository/memory"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/transport/http/middleware"
)

const testJWTSecret = "warbler_test_jwt_secret_key_1234567890"

// testApp wires the handlers against the in-memory store through the same
// route table the server uses, auth middleware included.
type testApp struct {
	store *memory.Store
	mux   *http.ServeMux
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := memory.NewStore()

	authService := service.NewAuthService(store.Users(), testJWTSecret)
	userService := service.NewUserService(store.Users(), store.Likes(), authService)
	followService := service.NewFollowService(store.Follows(), store.Users())
	messageService := service.NewMessageService(store.Messages(), store.Follows(), store.Likes())

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService, followService, messageService)
	messageHandler := NewMessageHandler(messageService)
	timelineHandler := NewTimelineHandler(messageService)

	auth := middleware.Auth(testJWTSecret)
	optionalAuth := middleware.OptionalAuth(testJWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/v1/users", userHandler.List)
	mux.HandleFunc("GET /api/v1/users/{id}", userHandler.Get)
	mux.HandleFunc("GET /api/v1/users/{id}/messages", userHandler.Messages)
	mux.HandleFunc("GET /api/v1/messages/{id}", messageHandler.Get)
	mux.Handle("GET /api/v1/timeline", optionalAuth(http.HandlerFunc(timelineHandler.Home)))
	mux.Handle("GET /api/v1/users/{id}/following", auth(http.HandlerFunc(userHandler.Following)))
	mux.Handle("GET /api/v1/users/{id}/followers", auth(http.HandlerFunc(userHandler.Followers)))
	mux.Handle("GET /api/v1/users/{id}/likes", auth(http.HandlerFunc(userHandler.Likes)))
	mux.Handle("POST /api/v1/users/follow/{id}", auth(http.HandlerFunc(userHandler.Follow)))
	mux.Handle("POST /api/v1/users/stop-following/{id}", auth(http.HandlerFunc(userHandler.StopFollowing)))
	mux.Handle("GET /api/v1/users/profile", auth(http.HandlerFunc(userHandler.GetProfile)))
	mux.Handle("PATCH /api/v1/users/profile", auth(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("POST /api/v1/users/delete", auth(http.HandlerFunc(userHandler.DeleteAccount)))
	mux.Handle("POST /api/v1/messages", auth(http.HandlerFunc(messageHandler.Compose)))
	mux.Handle("POST /api/v1/messages/{id}/delete", auth(http.HandlerFunc(messageHandler.Delete)))
	mux.Handle("POST /api/v1/messages/{id}/like", auth(http.HandlerFunc(messageHandler.Like)))
	mux.Handle("POST /api/v1/messages/{id}/unlike", auth(http.HandlerFunc(messageHandler.Unlike)))

	return &testApp{store: store, mux: mux}
}

// do issues a request against the test routes. A nil session leaves the
// request anonymous.
func (a *testApp) do(t *testing.T, method, path string, body any, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(session)
	}

	resp := httptest.NewRecorder()
	a.mux.ServeHTTP(resp, req)
	return resp
}

// signup registers a user through the endpoint and returns their id along
// with the session cookie the server set.
func (a *testApp) signup(t *testing.T, username string) (int64, *http.Cookie) {
	t.Helper()

	resp := a.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "Secret123",
	}, nil)
	mustStatus(t, resp.Code, http.StatusCreated)

	var out struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	decodeJSON(t, resp, &out)

	session := sessionCookie(resp)
	if session == nil {
		t.Fatalf("signup did not set the %s cookie", middleware.SessionCookie)
	}
	return out.User.ID, session
}

func sessionCookie(resp *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func decodeJSON(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), out); err != nil {
		t.Fatalf("json.Unmarshal: %v (body %q)", err, resp.Body.String())
	}
}

func mustStatus(t *testing.T, actual, expected int) {
	t.Helper()
	if actual != expected {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeJSON(t, resp, &out)
	return out.Error.Code
}
