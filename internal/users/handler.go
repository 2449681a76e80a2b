package users

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/quire/pkg/auth"
	"github.com/JaimeStill/quire/pkg/handlers"
	"github.com/JaimeStill/quire/pkg/routes"
)

// Handler provides the account endpoint for the authenticated caller.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "users"),
	}
}

// Routes returns the /auth route group. Every route requires a bearer token via protect.
func (h *Handler) Routes(protect routes.Guard) routes.Group {
	return routes.Group{
		Prefix: "/auth",
		Guard:  protect,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/me", Handler: h.Me},
		},
	}
}

// Me returns the account named by the bearer token subject.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if claims == nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return
	}

	id, err := claims.UserID()
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrInvalidToken)
		return
	}

	u, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, u, "")
}
