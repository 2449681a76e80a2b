package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/quire/pkg/handlers"
)

// Guard wraps route handlers with bearer token and role checks.
type Guard struct {
	verifier *Verifier
	logger   *slog.Logger
}

// NewGuard creates a Guard that verifies tokens with verifier.
func NewGuard(verifier *Verifier, logger *slog.Logger) *Guard {
	return &Guard{
		verifier: verifier,
		logger:   logger.With("module", "auth"),
	}
}

// Protect rejects requests without a valid bearer token with 401.
// Verified claims are available to next through FromContext.
func (g *Guard) Protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			handlers.RespondError(w, g.logger, MapHTTPStatus(err), err)
			return
		}

		claims, err := g.verifier.Verify(token)
		if err != nil {
			g.logger.Debug("token rejected", "error", err)
			handlers.RespondError(w, g.logger, http.StatusUnauthorized, ErrInvalidToken)
			return
		}

		next(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

// Authorize is Protect followed by a 403 unless the token carries one of roles.
func (g *Guard) Authorize(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return g.Protect(func(w http.ResponseWriter, r *http.Request) {
		claims := FromContext(r.Context())
		for _, role := range roles {
			if claims.Role == role {
				next(w, r)
				return
			}
		}

		err := fmt.Errorf("User role %s is %w", claims.Role, ErrForbidden)
		handlers.RespondError(w, g.logger, http.StatusForbidden, err)
	})
}

// Admin is Authorize restricted to RoleAdmin.
func (g *Guard) Admin(next http.HandlerFunc) http.HandlerFunc {
	return g.Authorize(next, RoleAdmin)
}
