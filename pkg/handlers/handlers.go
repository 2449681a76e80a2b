// Package handlers provides JSON envelope responders shared by every domain handler.
//
// Every response body has the shape:
//
//	{"success": bool, "message": "...", "data": ..., "error": "...", "errors": [...]}
//
// with empty members omitted. Paged lists add count, total, pages and currentPage.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/quire/pkg/pagination"
)

// Envelope is the response body written by every responder.
type Envelope struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	Data        any    `json:"data,omitempty"`
	Error       string `json:"error,omitempty"`
	Errors      any    `json:"errors,omitempty"`
	Count       *int   `json:"count,omitempty"`
	Total       *int   `json:"total,omitempty"`
	Pages       *int   `json:"pages,omitempty"`
	CurrentPage *int   `json:"currentPage,omitempty"`
}

// Detailer is implemented by errors that carry structured per-field details.
type Detailer interface {
	Details() any
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondOK writes a successful envelope with optional data and message.
func RespondOK(w http.ResponseWriter, status int, data any, message string) {
	RespondJSON(w, status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondMessage writes a successful envelope that carries only a message.
func RespondMessage(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusOK, Envelope{Success: true, Message: message})
}

// RespondList writes a successful envelope with data and its element count.
func RespondList[T any](w http.ResponseWriter, data []T) {
	if data == nil {
		data = []T{}
	}
	count := len(data)
	RespondJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Count:   &count,
	})
}

// RespondPage writes a page of results with its pagination metadata.
func RespondPage[T any](w http.ResponseWriter, page pagination.PageResult[T]) {
	RespondJSON(w, http.StatusOK, Envelope{
		Success:     true,
		Data:        page.Data,
		Count:       &page.Count,
		Total:       &page.Total,
		Pages:       &page.Pages,
		CurrentPage: &page.CurrentPage,
	})
}

// RespondError logs err and writes a failure envelope.
// Internal server errors hide err behind a generic message and report it in the error member.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	env := Envelope{Success: false, Message: err.Error()}

	var d Detailer
	if errors.As(err, &d) {
		env.Errors = d.Details()
	}

	switch {
	case status == http.StatusInternalServerError:
		logger.Error("handler error", "error", err, "status", status)
		env.Message = "Server error"
		env.Error = err.Error()
	case status >= 500:
		logger.Error("handler error", "error", err, "status", status)
	default:
		logger.Warn("handler error", "error", err, "status", status)
	}

	RespondJSON(w, status, env)
}

// NotFound responds to requests that matched no route.
// The message names the URI as received, before any module prefix was stripped.
func NotFound(w http.ResponseWriter, r *http.Request) {
	uri := r.RequestURI
	if uri == "" {
		uri = r.URL.RequestURI()
	}
	RespondJSON(w, http.StatusNotFound, Envelope{
		Success: false,
		Message: fmt.Sprintf("Route %s not found", uri),
	})
}
