package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

// IdentityContextKey is the context key for the resolved ownership.
const IdentityContextKey ContextKey = "identity"

// Identity resolves an optional bearer token into record ownership and
// stores it on the request context. Identity is opaque and nullable:
// requests without a valid token proceed anonymously, never with a 401.
func Identity(verifier *auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := verifier.Verify(bearerToken(r))
			if owner != nil {
				ctx := context.WithValue(r.Context(), IdentityContextKey, owner)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the ownership resolved for the request,
// nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *domain.Ownership {
	owner, _ := ctx.Value(IdentityContextKey).(*domain.Ownership)
	return owner
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// ContextIdentity adapts IdentityFromContext to usecase.IdentityProvider.
type ContextIdentity struct{}

// Identity returns the ownership stored on the context, nil when absent.
func (ContextIdentity) Identity(ctx context.Context) *domain.Ownership {
	return IdentityFromContext(ctx)
}
