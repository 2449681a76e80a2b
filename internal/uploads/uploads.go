// Package uploads exposes the remote file store directly: standalone uploads,
// removals that also scrub publication references, and direct upload credentials.
package uploads

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/quire/internal/media"
	"github.com/JaimeStill/quire/pkg/handlers"
	"github.com/JaimeStill/quire/pkg/routes"
)

// multipartMemory bounds the in-memory portion of a parsed upload form.
const multipartMemory = 1 << 20

// ErrNoImage reports a thumbnail upload without an image part.
var ErrNoImage = errors.New("Please upload an image")

// Scrubber removes every record reference to a destroyed file.
type Scrubber interface {
	Scrub(ctx context.Context, publicID string) (int64, error)
}

// Handler provides HTTP endpoints for standalone file operations.
type Handler struct {
	files  media.System
	refs   Scrubber
	logger *slog.Logger
}

// NewHandler creates a Handler over files whose removals are scrubbed from refs.
func NewHandler(files media.System, refs Scrubber, logger *slog.Logger) *Handler {
	return &Handler{
		files:  files,
		refs:   refs,
		logger: logger.With("handler", "uploads"),
	}
}

// Routes returns the route group for upload endpoints, all behind guard.
func (h *Handler) Routes(guard routes.Guard) routes.Group {
	return routes.Group{
		Prefix: "/upload",
		Guard:  guard,
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/file", Handler: h.UploadFile},
			{Method: "POST", Pattern: "/thumbnail", Handler: h.UploadThumbnail},
			{Method: "GET", Pattern: "/signature", Handler: h.Signature},
			{Method: "DELETE", Pattern: "/{public_id...}", Handler: h.Delete},
		},
	}
}

// UploadFile stores any supported file sent as the "file" part.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "file", media.ErrEmptyFile, "File uploaded successfully")
}

// UploadThumbnail stores an image sent as the "thumbnail" part.
func (h *Handler) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "thumbnail", ErrNoImage, "Thumbnail uploaded successfully", media.KindImage)
}

func (h *Handler) upload(
	w http.ResponseWriter,
	r *http.Request,
	part string,
	missing error,
	message string,
	kinds ...media.Kind,
) {
	r.Body = http.MaxBytesReader(w, r.Body, h.files.MaxFileSize()+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, media.ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, missing)
		return
	}
	defer r.MultipartForm.RemoveAll()

	up, err := media.FormUpload(r.MultipartForm, part)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if up == nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, missing)
		return
	}

	file, err := h.files.Store(r.Context(), *up, kinds...)
	if err != nil {
		handlers.RespondError(w, h.logger, media.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, file, message)
}

// Delete destroys a stored file and clears every publication reference to it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("public_id")

	if err := h.files.Destroy(r.Context(), publicID); err != nil {
		handlers.RespondError(w, h.logger, media.MapHTTPStatus(err), err)
		return
	}

	if _, err := h.refs.Scrub(r.Context(), publicID); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondMessage(w, "File deleted successfully")
}

// Signature issues a short-lived direct upload credential.
func (h *Handler) Signature(w http.ResponseWriter, r *http.Request) {
	sig, err := h.files.Signature(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, media.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, sig, "")
}
