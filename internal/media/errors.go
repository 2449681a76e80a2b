package media

import (
	"errors"
	"net/http"
)

var (
	ErrUnsupportedType = errors.New("Invalid file type. Only images, PDFs, and Word documents are allowed.")
	ErrImageRequired   = errors.New("Thumbnail must be an image")
	ErrFileTooLarge    = errors.New("File too large")
	ErrEmptyFile       = errors.New("Please upload a file")
	ErrNotFound        = errors.New("File not found")
	ErrStorage         = errors.New("remote file store failure")
)

// MapHTTPStatus maps media errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnsupportedType),
		errors.Is(err, ErrImageRequired),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
