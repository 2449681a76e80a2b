// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/quire/internal/config"
	"github.com/JaimeStill/quire/internal/infrastructure"
	"github.com/JaimeStill/quire/pkg/middleware"
	"github.com/JaimeStill/quire/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(
		middleware.CORS(&cfg.API.CORS),
		middleware.RateLimit(infra.Lifecycle.Context(), &cfg.API.RateLimit),
		middleware.Logger(runtime.Logger),
	)

	return m, nil
}
