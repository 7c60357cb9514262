package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dashfin/finmirror/internal/adapter/http/middleware"
	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/infrastructure/auth"
)

func TestIdentityResolvesBearerToken(t *testing.T) {
	verifier := auth.NewTokenVerifier("secret")
	token, err := verifier.Generate(domain.Ownership{UID: "u-1", Email: "u@example.com"}, time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var got *domain.Ownership
	handler := middleware.Identity(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.UID != "u-1" {
		t.Fatalf("expected resolved identity, got %+v", got)
	}
}

func TestIdentityNeverRejects(t *testing.T) {
	verifier := auth.NewTokenVerifier("secret")

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *domain.Ownership
			handler := middleware.Identity(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = middleware.IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("anonymous request must pass through, got %d", rec.Code)
			}
			if got != nil {
				t.Fatalf("expected nil identity, got %+v", got)
			}
		})
	}
}
