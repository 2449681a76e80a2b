package api

import (
	"net/http"

	"github.com/JaimeStill/quire/internal/uploads"
	"github.com/JaimeStill/quire/pkg/handlers"
	"github.com/JaimeStill/quire/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	admin := runtime.Guard.Admin

	routes.Register(
		mux,
		domain.Publications.Handler().Routes(admin),
		uploads.NewHandler(runtime.Media, domain.Publications, runtime.Logger).Routes(admin),
		domain.Admin.Handler().Routes(admin),
		domain.Users.Handler().Routes(runtime.Guard.Protect),
	)

	mux.HandleFunc("/", handlers.NotFound)
}
