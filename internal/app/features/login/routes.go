// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes returns the /auth subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/change-password", h.ChangePassword)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)
	return r
}
