// Package admin serves catalogue-wide reports for administrators.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/quire/internal/publications"
	"github.com/JaimeStill/quire/internal/users"
	"github.com/JaimeStill/quire/pkg/handlers"
	"github.com/JaimeStill/quire/pkg/routes"
)

// recentCount is the number of newest publications on the dashboard.
const recentCount = 5

// Dashboard summarizes the catalogue.
type Dashboard struct {
	TotalUsers         int                        `json:"totalUsers"`
	TotalPublications  int                        `json:"totalPublications"`
	TotalDownloads     int64                      `json:"totalDownloads"`
	RecentPublications []publications.Publication `json:"recentPublications"`
}

// System defines the administrator reports.
type System interface {
	Handler() *Handler

	Dashboard(ctx context.Context) (*Dashboard, error)
	Users(ctx context.Context) ([]users.User, error)
}

type reports struct {
	pubs   publications.System
	users  users.System
	logger *slog.Logger
}

// New creates an admin System reading from the publication and user systems.
func New(pubs publications.System, accounts users.System, logger *slog.Logger) System {
	return &reports{
		pubs:   pubs,
		users:  accounts,
		logger: logger.With("system", "admin"),
	}
}

func (r *reports) Handler() *Handler {
	return NewHandler(r, r.logger)
}

// Dashboard runs its independent aggregate reads concurrently.
func (r *reports) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		d     Dashboard
		stats publications.Stats
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := r.users.Count(gctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		d.TotalUsers = n
		return nil
	})

	g.Go(func() error {
		st, err := r.pubs.Stats(gctx)
		if err != nil {
			return fmt.Errorf("publication stats: %w", err)
		}
		stats = st
		return nil
	})

	g.Go(func() error {
		recent, err := r.pubs.Recent(gctx, recentCount)
		if err != nil {
			return fmt.Errorf("recent publications: %w", err)
		}
		d.RecentPublications = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.TotalPublications = stats.Total
	d.TotalDownloads = stats.Downloads
	if d.RecentPublications == nil {
		d.RecentPublications = []publications.Publication{}
	}

	return &d, nil
}

func (r *reports) Users(ctx context.Context) ([]users.User, error) {
	return r.users.List(ctx)
}

// Handler provides HTTP endpoints for administrator reports.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "admin"),
	}
}

// Routes returns the /admin route group, all behind guard.
func (h *Handler) Routes(guard routes.Guard) routes.Group {
	return routes.Group{
		Prefix: "/admin",
		Guard:  guard,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/dashboard", Handler: h.Dashboard},
			{Method: "GET", Pattern: "/users", Handler: h.Users},
		},
	}
}

// Dashboard returns the catalogue summary.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.sys.Dashboard(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, d, "")
}

// Users lists every account, newest first, with a count.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	list, err := h.sys.Users(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondList(w, list)
}
