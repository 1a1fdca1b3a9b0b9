// internal/app/features/payments/routes.go
package payments

import (
	"github.com/anisham/contribhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /payments subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleMember, auth.RoleAdmin))
		r.Post("/", h.Submit)
		r.Get("/latest", h.Latest)
		r.Get("/stream", h.Stream)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleAdmin))
		r.Get("/", h.ListAll)
		r.Get("/pending", h.ListPending)
		r.Post("/{requestID}/decide", h.Decide)
		r.Delete("/{requestID}", h.Delete)
	})

	return r
}
