// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted under /users. The check routes are
// registered ahead of /{email} so "check" is never read as an email.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/check/admin/{email}", h.ServeIsAdmin)
	r.Get("/check/organizer/{email}", h.ServeIsOrganizer)

	r.Get("/", h.ServeList)
	r.Get("/{email}", h.ServeGet)
	r.Put("/{email}", h.ServeUpsert)
	r.Delete("/{email}", h.ServeDelete)
	r.Patch("/{email}/role", h.ServeUpdateRole)
	r.Patch("/{email}/status", h.ServeUpdateStatus)
	return r
}
