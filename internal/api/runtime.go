package api

import (
	"github.com/JaimeStill/quire/internal/config"
	"github.com/JaimeStill/quire/internal/infrastructure"
	"github.com/JaimeStill/quire/internal/media"
	"github.com/JaimeStill/quire/pkg/auth"
	"github.com/JaimeStill/quire/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// remote file store client shared by the publication and upload domains.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Media      media.System
	Guard      *auth.Guard
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Media:      media.New(infra.Storage, &cfg.API.Media, logger),
		Guard:      auth.NewGuard(auth.NewVerifier(&cfg.API.Auth), logger),
	}
}
