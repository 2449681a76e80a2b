package publications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JaimeStill/quire/internal/media"
	"github.com/JaimeStill/quire/pkg/pagination"
)

var (
	downloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quire_publication_downloads_total",
		Help: "Publication fetches by id, each of which increments a download counter.",
	})
	cleanupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quire_file_cleanup_failures_total",
			Help: "Remote file removals that failed and were abandoned.",
		},
		[]string{"operation"},
	)
)

// System defines the public contract for publication operations.
// Every operation that touches remote files keeps record references and stored
// blobs consistent: a record never points at a file known to be destroyed.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Publication], error)
	// Get returns a publication and counts the fetch as a download.
	Get(ctx context.Context, id uuid.UUID) (*Publication, error)
	Create(ctx context.Context, cmd CreateCommand) (*Publication, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Publication, error)
	// Delete removes a publication after a best-effort removal of its files.
	Delete(ctx context.Context, id uuid.UUID) error
	// Scrub clears every reference to a remote file that no longer exists.
	Scrub(ctx context.Context, publicID string) (int64, error)

	Recent(ctx context.Context, n int) ([]Publication, error)
	Stats(ctx context.Context) (Stats, error)
}

type manager struct {
	store      Store
	files      media.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a publication System over the given record store and remote file store.
func New(
	store Store,
	files media.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &manager{
		store:      store,
		files:      files,
		logger:     logger.With("system", "publications"),
		pagination: pagination,
	}
}

func (m *manager) Handler() *Handler {
	return NewHandler(m, m.logger, m.pagination, m.files.MaxFileSize())
}

func (m *manager) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Publication], error) {
	page.Normalize(m.pagination)
	return m.store.List(ctx, page, filters)
}

func (m *manager) Get(ctx context.Context, id uuid.UUID) (*Publication, error) {
	p, err := m.store.Increment(ctx, id)
	if err != nil {
		return nil, err
	}
	downloadsTotal.Inc()
	return p, nil
}

func (m *manager) Recent(ctx context.Context, n int) ([]Publication, error) {
	return m.store.Recent(ctx, n)
}

func (m *manager) Stats(ctx context.Context) (Stats, error) {
	return m.store.Stats(ctx)
}

func (m *manager) Scrub(ctx context.Context, publicID string) (int64, error) {
	n, err := m.store.Scrub(ctx, publicID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.logger.Info("file references scrubbed", "public_id", publicID, "records", n)
	}
	return n, nil
}

func (m *manager) Create(ctx context.Context, cmd CreateCommand) (*Publication, error) {
	draft := Publication{IsPublished: true}
	if err := cmd.Fields.Apply(&draft); err != nil {
		return nil, err
	}
	if err := m.validate(cmd.Attachments); err != nil {
		return nil, err
	}

	var uploaded []string
	err := cmd.Attachments.each(func(slot Slot, up media.Upload) error {
		f, err := m.files.Store(ctx, up, slot.Kinds()...)
		if err != nil {
			return err
		}
		uploaded = append(uploaded, f.PublicID)
		draft.Attach(slot, f)
		return nil
	})
	if err != nil {
		m.discard(ctx, "create", uploaded)
		return nil, err
	}

	createdBy := cmd.CreatedBy
	draft.CreatedBy = &createdBy

	p, err := m.store.Insert(ctx, &draft)
	if err != nil {
		m.discard(ctx, "create", uploaded)
		return nil, err
	}

	m.logger.Info("publication created", "id", p.ID, "title", p.Title)
	return p, nil
}

func (m *manager) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Publication, error) {
	current, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := current.clone()
	if err := cmd.Fields.Apply(&merged); err != nil {
		return nil, err
	}
	if err := m.validate(cmd.Attachments); err != nil {
		return nil, err
	}

	var (
		uploaded  []string
		destroyed []Slot
	)

	err = cmd.Attachments.each(func(slot Slot, up media.Upload) error {
		if old := merged.PublicID(slot); old != nil {
			if err := m.files.Destroy(ctx, *old); err != nil && !errors.Is(err, media.ErrNotFound) {
				return fmt.Errorf("replace %s: %w", slot, err)
			}
			destroyed = append(destroyed, slot)
			merged.Clear(slot)
		}

		f, err := m.files.Store(ctx, up, slot.Kinds()...)
		if err != nil {
			return err
		}
		uploaded = append(uploaded, f.PublicID)
		merged.Attach(slot, f)
		return nil
	})
	if err != nil {
		m.discard(ctx, "update", uploaded)
		m.clearSlots(ctx, id, destroyed)
		return nil, err
	}

	p, err := m.store.Update(ctx, &merged)
	if err != nil {
		m.discard(ctx, "update", uploaded)
		m.clearSlots(ctx, id, destroyed)
		return nil, err
	}

	m.logger.Info("publication updated", "id", p.ID)
	return p, nil
}

func (m *manager) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := m.store.Find(ctx, id)
	if err != nil {
		return err
	}

	for _, slot := range []Slot{SlotFile, SlotThumbnail} {
		if publicID := p.PublicID(slot); publicID != nil {
			m.destroy(ctx, "delete", *publicID)
		}
	}

	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	m.logger.Info("publication deleted", "id", id)
	return nil
}

func (m *manager) validate(a Attachments) error {
	return a.each(func(slot Slot, up media.Upload) error {
		return m.files.Validate(up, slot.Kinds()...)
	})
}

// discard destroys files uploaded by a request that did not complete.
func (m *manager) discard(ctx context.Context, operation string, publicIDs []string) {
	for _, publicID := range publicIDs {
		m.destroy(ctx, operation, publicID)
	}
}

func (m *manager) destroy(ctx context.Context, operation, publicID string) {
	err := m.files.Destroy(ctx, publicID)
	if err == nil || errors.Is(err, media.ErrNotFound) {
		return
	}
	cleanupFailures.WithLabelValues(operation).Inc()
	m.logger.Warn("file cleanup failed", "operation", operation, "public_id", publicID, "error", err)
}

// clearSlots removes references to files destroyed by a failed update.
func (m *manager) clearSlots(ctx context.Context, id uuid.UUID, slots []Slot) {
	for _, slot := range slots {
		if err := m.store.Clear(ctx, id, slot); err != nil {
			m.logger.Error("clear destroyed file reference failed", "id", id, "slot", slot, "error", err)
		}
	}
}
