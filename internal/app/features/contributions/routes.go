// internal/app/features/contributions/routes.go
package contributions

import (
	"github.com/anisham/contribhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /contributions subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleMember, auth.RoleAdmin))
		r.Get("/me", h.Mine)
		r.Get("/amount-due", h.AmountDue)
		r.Get("/total-due", h.TotalDue)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleAdmin))
		r.Get("/month/{month}", h.ByMonth)
	})

	return r
}
