package auth_test

import (
	"testing"
	"time"

	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/infrastructure/auth"
)

func TestTokenVerifierRoundTrip(t *testing.T) {
	t.Parallel()

	verifier := auth.NewTokenVerifier("super-secret")
	owner := domain.Ownership{UID: "user-123", Email: "user@example.com"}

	token, err := verifier.Generate(owner, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	got := verifier.Verify(token)
	if got == nil {
		t.Fatal("expected ownership, got nil")
	}
	if got.UID != owner.UID || got.Email != owner.Email {
		t.Fatalf("expected ownership to match, got %+v", got)
	}
}

func TestTokenVerifierNilOnFailure(t *testing.T) {
	t.Parallel()

	verifier := auth.NewTokenVerifier("super-secret")

	expired, err := verifier.Generate(domain.Ownership{UID: "user-123"}, -time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	foreign, err := auth.NewTokenVerifier("other-secret").Generate(domain.Ownership{UID: "user-123"}, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "not.a.jwt"},
		{"expired token", expired},
		{"foreign signature", foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := verifier.Verify(tt.token); got != nil {
				t.Fatalf("expected nil ownership, got %+v", got)
			}
		})
	}
}

func TestTokenVerifierDisabled(t *testing.T) {
	t.Parallel()

	signer := auth.NewTokenVerifier("super-secret")
	token, err := signer.Generate(domain.Ownership{UID: "user-123"}, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	disabled := auth.NewTokenVerifier("")
	if got := disabled.Verify(token); got != nil {
		t.Fatalf("expected nil ownership with no secret, got %+v", got)
	}
}
