// internal/app/features/notifications/handler.go
package notifications

import (
	"encoding/json"
	"net/http"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	notifstore "github.com/anisham/contribhub/internal/app/store/notifications"
	"github.com/anisham/contribhub/internal/app/system/auth"
	"github.com/anisham/contribhub/internal/app/system/timeouts"
	"github.com/anisham/contribhub/internal/app/system/watch"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves a user's in-app notifications and a live SSE stream of
// new ones.
type Handler struct {
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Notifs *notifstore.Store
	DB     *mongo.Database
}

func NewHandler(db *mongo.Database, notifs *notifstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:    logger,
		ErrLog: errLog,
		Notifs: notifs,
		DB:     db,
	}
}

// List handles GET /notifications.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	notifs, err := h.Notifs.ListForUser(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list notifications failed", err, "Unable to load notifications.")
		return
	}
	if notifs == nil {
		notifs = []models.Notification{}
	}
	uierrors.JSON(w, http.StatusOK, notifs)
}

// UnreadCount handles GET /notifications/unread-count.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	count, err := h.Notifs.UnreadCount(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "unread count failed", err, "Unable to load notifications.")
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]int64{"count": count})
}

// MarkRead handles POST /notifications/{notificationID}/read. Scoped to
// the session user; you cannot mark someone else's notification.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid notification id.")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Notifs.MarkRead(ctx, u.ID, id); err != nil {
		h.ErrLog.LogServerError(w, r, "mark notification read failed", err, "Unable to update notification.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /notifications/read-all.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	updated, err := h.Notifs.MarkAllRead(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mark all notifications read failed", err, "Unable to update notifications.")
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

// Stream handles GET /notifications/stream: an SSE feed of the user's new
// notifications, backed by a Mongo change stream. The stream ends when the
// client disconnects or the change stream drops; clients re-connect and
// re-fetch, and may see a notification both in the list and on the stream.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.ErrLog.BadRequest(w, r, "Streaming is not supported on this connection.")
		return
	}

	stream, err := watch.Collection(r.Context(), h.DB.Collection("notifications"), h.Log)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "open notification change stream failed", err, "Unable to open stream.")
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range stream.Events() {
		if ev.Operation != "insert" || ev.Document == nil {
			continue
		}
		var n models.Notification
		if err := bson.Unmarshal(ev.Document, &n); err != nil {
			h.Log.Warn("decode streamed notification failed", zap.Error(err))
			continue
		}
		if n.UserID != u.ID {
			continue
		}
		payload, err := json.Marshal(n)
		if err != nil {
			continue
		}
		if _, err := w.Write([]byte("event: notification\ndata: " + string(payload) + "\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}
