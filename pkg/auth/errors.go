package auth

import (
	"errors"
	"net/http"
)

var (
	ErrMissingToken = errors.New("Not authorized, no token")
	ErrInvalidToken = errors.New("Not authorized, token failed")
	ErrForbidden    = errors.New("not authorized to access this route")
)

// MapHTTPStatus maps auth errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrMissingToken), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
