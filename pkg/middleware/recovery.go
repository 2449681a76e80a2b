package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/JaimeStill/quire/pkg/handlers"
)

// Recover returns middleware that converts a handler panic into a 500 envelope.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logger.Error(
						"panic recovered",
						"error", v,
						"method", r.Method,
						"uri", r.URL.RequestURI(),
						"stack", string(debug.Stack()),
					)
					handlers.RespondJSON(w, http.StatusInternalServerError, handlers.Envelope{
						Success: false,
						Message: "Server error",
						Error:   fmt.Sprint(v),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
