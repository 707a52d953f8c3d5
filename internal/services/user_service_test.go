package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/justsurfingit/lead-labeler/internal/auth"
	"github.com/justsurfingit/lead-labeler/internal/services"
)

func newUserService(t *testing.T) (*services.UserService, *auth.TokenManager) {
	t.Helper()
	tm := auth.NewTokenManager("test-secret", time.Hour)
	return services.NewUserService(newTestDB(t), tm), tm
}

// ── Signup ─────────────────────────────────────────────────────────────────

func TestUserService_Signup(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, "Ada Lovelace", "  Ada@Example.com ", "pa55word")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Errorf("Email = %q, want normalized address", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "pa55word" {
		t.Error("password must be stored hashed")
	}

	if _, err := svc.Signup(ctx, "Other", "ADA@example.com", "x"); !errors.Is(err, services.ErrUserExists) {
		t.Errorf("duplicate signup: expected ErrUserExists, got %v", err)
	}
}

// ── Login ──────────────────────────────────────────────────────────────────

func TestUserService_Login(t *testing.T) {
	svc, tm := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Ada", "ada@example.com", "pa55word"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	token, err := svc.Login(ctx, "ADA@example.com", "pa55word")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	email, err := tm.Verify(token)
	if err != nil || email != "ada@example.com" {
		t.Errorf("token subject = %q, %v", email, err)
	}

	cases := []struct {
		name, email, password string
	}{
		{"wrong password", "ada@example.com", "nope"},
		{"unknown user", "bob@example.com", "pa55word"},
		{"empty password", "ada@example.com", ""},
	}
	for _, c := range cases {
		if _, err := svc.Login(ctx, c.email, c.password); !errors.Is(err, services.ErrInvalidCredentials) {
			t.Errorf("%s: expected ErrInvalidCredentials, got %v", c.name, err)
		}
	}
}
