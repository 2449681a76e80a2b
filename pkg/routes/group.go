package routes

import "net/http"

// Guard wraps a route handler with an access check.
type Guard func(http.HandlerFunc) http.HandlerFunc

// Group organizes routes under a common prefix.
// Guard, when set, wraps every route in the group and its children.
type Group struct {
	Prefix   string
	Guard    Guard
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", nil, group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, guards []Guard, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	if group.Guard != nil {
		guards = append(guards[:len(guards):len(guards)], group.Guard)
	}

	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern
		handler := route.Handler
		if route.Guard != nil {
			handler = route.Guard(handler)
		}
		for i := len(guards) - 1; i >= 0; i-- {
			handler = guards[i](handler)
		}
		mux.HandleFunc(pattern, handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, guards, child)
	}
}
