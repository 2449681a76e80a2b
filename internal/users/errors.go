package users

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound  = errors.New("User not found")
	ErrDuplicate = errors.New("User already exists")
)

// MapHTTPStatus maps user errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
