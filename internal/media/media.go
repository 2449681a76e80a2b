// Package media is the remote file store client for publication attachments.
// It classifies and validates uploads, stores them as blobs keyed by a stable
// public id, and removes them again by that id.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JaimeStill/quire/pkg/formatting"
	"github.com/JaimeStill/quire/pkg/storage"
)

var uploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quire_media_uploads_total",
		Help: "Remote file store uploads by kind and outcome.",
	},
	[]string{"kind", "outcome"},
)

// System stores and removes publication attachments.
type System interface {
	// Validate checks an upload against the size ceiling and the allowed kinds
	// without contacting the remote store. No kinds means any supported kind.
	Validate(up Upload, kinds ...Kind) error
	// Store validates and uploads up, returning the stored file description.
	Store(ctx context.Context, up Upload, kinds ...Kind) (*File, error)
	// Destroy removes the blob named by publicID. Returns ErrNotFound when absent.
	Destroy(ctx context.Context, publicID string) error
	// Signature issues a direct upload credential for the storage folder.
	Signature(ctx context.Context) (*Signature, error)
	// MaxFileSize returns the per-file upload ceiling in bytes.
	MaxFileSize() int64
}

type client struct {
	store   storage.System
	folder  string
	maxSize int64
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a media System over the given blob store.
func New(store storage.System, cfg *Config, logger *slog.Logger) System {
	return &client{
		store:   store,
		folder:  cfg.Folder,
		maxSize: cfg.MaxFileSizeBytes(),
		ttl:     cfg.SignatureTTLDuration(),
		logger:  logger.With("system", "media"),
		now:     time.Now,
	}
}

func (c *client) MaxFileSize() int64 {
	return c.maxSize
}

func (c *client) Validate(up Upload, kinds ...Kind) error {
	_, _, err := c.validate(up, kinds)
	return err
}

func (c *client) validate(up Upload, kinds []Kind) (Kind, string, error) {
	if len(up.Data) == 0 {
		return "", "", ErrEmptyFile
	}
	if int64(len(up.Data)) > c.maxSize {
		return "", "", fmt.Errorf("%w: %s exceeds %s", ErrFileTooLarge,
			formatting.FormatBytes(int64(len(up.Data))), formatting.FormatBytes(c.maxSize))
	}

	kind, format, err := Classify(up.ContentType)
	if err != nil {
		return "", "", err
	}
	if len(kinds) > 0 && !slices.Contains(kinds, kind) {
		if slices.Equal(kinds, []Kind{KindImage}) {
			return "", "", ErrImageRequired
		}
		return "", "", ErrUnsupportedType
	}

	return kind, format, nil
}

func (c *client) Store(ctx context.Context, up Upload, kinds ...Kind) (*File, error) {
	kind, format, err := c.validate(up, kinds)
	if err != nil {
		return nil, err
	}

	suffix := uuid.NewString()[:8]
	publicID := PublicID(c.folder, up.Filename, suffix, format, c.now())

	if err := c.store.Upload(ctx, publicID, bytes.NewReader(up.Data), up.ContentType); err != nil {
		uploadsTotal.WithLabelValues(string(kind), "error").Inc()
		c.logger.Error("upload failed", "public_id", publicID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	uploadsTotal.WithLabelValues(string(kind), "ok").Inc()

	file := &File{
		PublicID:     publicID,
		URL:          c.store.URL(publicID),
		Format:       format,
		Size:         int64(len(up.Data)),
		ContentType:  up.ContentType,
		OriginalName: up.Filename,
	}

	if format == "pdf" {
		file.PageCount = c.pageCount(up.Data, publicID)
	}

	c.logger.Info("file stored", "public_id", publicID, "kind", kind, "size", file.Size)
	return file, nil
}

func (c *client) pageCount(data []byte, publicID string) *int {
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		c.logger.Warn("pdf page count failed", "public_id", publicID, "error", err)
		return nil
	}
	return &n
}

func (c *client) Destroy(ctx context.Context, publicID string) error {
	err := c.store.Delete(ctx, publicID)
	switch {
	case err == nil:
		c.logger.Info("file destroyed", "public_id", publicID)
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrEmptyKey), errors.Is(err, storage.ErrInvalidKey):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
}

func (c *client) Signature(ctx context.Context) (*Signature, error) {
	sig, err := c.store.SignUpload(ctx, c.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return &Signature{
		URL:       sig.URL,
		Container: sig.Container,
		Folder:    c.folder,
		ExpiresAt: sig.ExpiresAt,
	}, nil
}
