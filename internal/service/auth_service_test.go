package service

import (
	"context"
	"errors"
	"testing"

	"github.com/warblerhq/warbler/internal/domain"
	"github.com/warblerhq/warbler/internal/repository/memory"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

func newAuthService(store *memory.Store) *AuthService {
	return NewAuthService(store.Users(), testJWTSecret)
}

func TestSignupStoresHashNotPlaintext(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store)

	resp, err := svc.Signup(context.Background(), SignupInput{
		Username: "alice",
		Email:    "a@x.com",
		Password: "longpassword",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected a session token")
	}

	user := resp.User
	if user.PasswordHash == "longpassword" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longpassword")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if user.ImageURL != domain.DefaultImageURL {
		t.Fatalf("expected default image url, got %q", user.ImageURL)
	}
	if user.HeaderImageURL != domain.DefaultHeaderImageURL {
		t.Fatalf("expected default header image url, got %q", user.HeaderImageURL)
	}
}

func TestSignupDuplicateIdentity(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "a@x.com", Password: "longpassword"}); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	_, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "other@x.com", Password: "longpassword2"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	_, err = svc.Signup(ctx, SignupInput{Username: "bob", Email: "a@x.com", Password: "longpassword2"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "a@x.com", Password: "longpassword"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	user, err := svc.Authenticate(ctx, "alice", "longpassword")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Fatalf("expected alice, got %+v", user)
	}

	// Wrong password and unknown user look identical to the caller.
	user, err = svc.Authenticate(ctx, "alice", "wrongpassword")
	if err != nil || user != nil {
		t.Fatalf("expected no-match sentinel, got user=%+v err=%v", user, err)
	}

	user, err = svc.Authenticate(ctx, "nobody", "longpassword")
	if err != nil || user != nil {
		t.Fatalf("expected no-match sentinel, got user=%+v err=%v", user, err)
	}
}

func TestLoginInvalidCreds(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "a@x.com", Password: "longpassword"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "wrong"}); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("expected ErrInvalidCreds, got %v", err)
	}

	resp, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "longpassword"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected a session token")
	}
}
