// internal/app/features/members/routes.go
package members

import (
	"github.com/anisham/contribhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /members subrouter. All member management is admin
// territory.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(auth.RoleAdmin))
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Put("/{memberID}", h.Update)
	r.Delete("/{memberID}", h.Delete)
	return r
}
