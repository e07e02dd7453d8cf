package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIssueAndVerify(t *testing.T) {
	t.Parallel()

	tokens := NewTokenService("super-secret", time.Hour)

	tok, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	userID, err := tokens.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", userID, "user-123")
	}
}

func TestTokenVerify_Expired(t *testing.T) {
	t.Parallel()

	tokens := &TokenService{secret: []byte("secret"), ttl: -time.Second}

	tok, err := tokens.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = tokens.Verify(tok)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestTokenVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService("right-secret", time.Hour).Issue("u2")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewTokenService("wrong-secret", time.Hour).Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenVerify_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService("k", time.Hour).Verify("not.a.jwt")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenDefaultTTL(t *testing.T) {
	t.Parallel()

	tokens := NewTokenService("k", 0)
	if tokens.TTL() != 7*24*time.Hour {
		t.Fatalf("expected 7 day default TTL, got %v", tokens.TTL())
	}
}
