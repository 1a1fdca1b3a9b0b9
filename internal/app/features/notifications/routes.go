// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/anisham/contribhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /notifications subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.List)
	r.Get("/unread-count", h.UnreadCount)
	r.Get("/stream", h.Stream)
	r.Post("/read-all", h.MarkAllRead)
	r.Post("/{notificationID}/read", h.MarkRead)
	return r
}
