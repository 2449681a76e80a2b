package api

import (
	"github.com/JaimeStill/quire/internal/admin"
	"github.com/JaimeStill/quire/internal/publications"
	"github.com/JaimeStill/quire/internal/users"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Publications publications.System
	Users        users.System
	Admin        admin.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	pubsSystem := publications.New(
		publications.NewStore(db),
		runtime.Media,
		runtime.Logger,
		runtime.Pagination,
	)

	usersSystem := users.New(db, runtime.Logger)

	return &Domain{
		Publications: pubsSystem,
		Users:        usersSystem,
		Admin:        admin.New(pubsSystem, usersSystem, runtime.Logger),
	}
}
