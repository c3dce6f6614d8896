// internal/app/features/events/routes.go
package events

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted under /events.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Get("/{id}", h.ServeGet)
	r.Delete("/{id}", h.ServeDelete)
	return r
}
