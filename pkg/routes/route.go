package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
// Guard, when set, wraps Handler inside any group guards.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	Guard   Guard
}
