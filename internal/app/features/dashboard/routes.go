// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/anisham/contribhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /dashboard subrouter. Members see the same group
// dashboard the admin does.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.Serve)
	return r
}
