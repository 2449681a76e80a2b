package publications

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/quire/internal/media"
	"github.com/JaimeStill/quire/pkg/auth"
	"github.com/JaimeStill/quire/pkg/handlers"
	"github.com/JaimeStill/quire/pkg/pagination"
	"github.com/JaimeStill/quire/pkg/routes"
	"github.com/JaimeStill/quire/pkg/validation"
)

// multipartOverhead bounds the non-file parts of a multipart body.
const multipartOverhead = 1 << 20

// Handler provides HTTP endpoints for publication operations.
type Handler struct {
	sys         System
	logger      *slog.Logger
	pagination  pagination.Config
	maxFileSize int64
}

// NewHandler creates a Handler with the given system, logger, pagination config, and per-file size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxFileSize int64,
) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "publications"),
		pagination:  pagination,
		maxFileSize: maxFileSize,
	}
}

// Routes returns the route group definition for publication endpoints.
// Reads are public; writes require the admin role via admin.
func (h *Handler) Routes(admin routes.Guard) routes.Group {
	return routes.Group{
		Prefix: "/publications",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Get},
			{Method: "POST", Pattern: "", Handler: h.Create, Guard: admin},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, Guard: admin},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, Guard: admin},
		},
	}
}

// List returns a page of published records filtered by category and search.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondPage(w, *result)
}

// Get returns a single publication and counts the download.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	p, err := h.sys.Get(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, p, "")
}

// Create accepts JSON or a multipart form with optional file and thumbnail parts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if claims == nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrInvalidToken)
		return
	}

	fields, files, err := h.decode(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	p, err := h.sys.Create(r.Context(), CreateCommand{
		Fields:      fields,
		Attachments: files,
		CreatedBy:   userID,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusCreated, p, "")
}

// Update merges the submitted fields and files into an existing publication.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	fields, files, err := h.decode(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	p, err := h.sys.Update(r.Context(), id, UpdateCommand{Fields: fields, Attachments: files})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, p, "")
}

// Delete removes a publication and its files.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondMessage(w, "Publication deleted successfully")
}

// pathID parses the id path value. Malformed ids cannot name a record and are reported as not found.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Fields, Attachments, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		return h.decodeMultipart(w, r)
	default:
		var f Fields
		r.Body = http.MaxBytesReader(w, r.Body, multipartOverhead)
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			return f, Attachments{}, validation.Field("body", "Invalid request body")
		}
		return f, Attachments{}, nil
	}
}

func (h *Handler) decodeMultipart(w http.ResponseWriter, r *http.Request) (Fields, Attachments, error) {
	var (
		f     Fields
		files Attachments
	)

	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return f, files, media.ErrFileTooLarge
		}
		return f, files, validation.Field("body", "Invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	form := r.MultipartForm.Value
	f.Title = formString(form, "title")
	f.Description = formString(form, "description")
	f.Authors = formList(form, "authors")
	f.PublishDate = formString(form, "publishDate")
	f.Publisher = formString(form, "publisher")
	f.Category = formString(form, "category")
	f.Tags = formList(form, "tags")

	if s := formString(form, "isPublished"); s != nil {
		b, err := strconv.ParseBool(*s)
		if err != nil {
			return f, files, validation.Field("isPublished", "isPublished must be true or false")
		}
		f.IsPublished = &b
	}

	var err error
	if files.File, err = media.FormUpload(r.MultipartForm, "file"); err != nil {
		return f, files, err
	}
	if files.Thumbnail, err = media.FormUpload(r.MultipartForm, "thumbnail"); err != nil {
		return f, files, err
	}

	return f, files, nil
}

func formString(form map[string][]string, key string) *string {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// formList reads a list field sent as repeated parts or as a single JSON array.
func formList(form map[string][]string, key string) *[]string {
	values, ok := form[key]
	if !ok {
		values, ok = form[key+"[]"]
	}
	if !ok {
		return nil
	}

	if len(values) == 1 {
		var items []string
		v := strings.TrimSpace(values[0])
		if strings.HasPrefix(v, "[") && json.Unmarshal([]byte(v), &items) == nil {
			return &items
		}
	}

	items := append([]string(nil), values...)
	return &items
}
