package publications

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/quire/internal/media"
	"github.com/JaimeStill/quire/pkg/repository"
	"github.com/JaimeStill/quire/pkg/validation"
)

// Domain errors for publication operations.
var (
	ErrNotFound  = errors.New("Publication not found")
	ErrDuplicate = errors.New("Publication already exists")
)

// MapHTTPStatus maps publication and attachment errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, validation.ErrInvalid), errors.Is(err, repository.ErrConstraint):
		return http.StatusBadRequest
	default:
		return media.MapHTTPStatus(err)
	}
}
