// internal/app/features/groups/routes.go
package groups

import (
	"github.com/anisham/contribhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /groups subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/active", h.Active)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleAdmin))
		r.Post("/", h.Create)
		r.Put("/{groupID}", h.Update)
		r.Delete("/{groupID}", h.Delete)
	})
	return r
}
