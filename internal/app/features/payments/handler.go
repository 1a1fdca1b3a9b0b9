// internal/app/features/payments/handler.go
package payments

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	contribstore "github.com/anisham/contribhub/internal/app/store/contributions"
	memberstore "github.com/anisham/contribhub/internal/app/store/members"
	paymentstore "github.com/anisham/contribhub/internal/app/store/paymentrequests"
	"github.com/anisham/contribhub/internal/app/system/auth"
	"github.com/anisham/contribhub/internal/app/system/inputval"
	"github.com/anisham/contribhub/internal/app/system/notify"
	"github.com/anisham/contribhub/internal/app/system/receipts"
	"github.com/anisham/contribhub/internal/app/system/timeouts"
	"github.com/anisham/contribhub/internal/app/system/txn"
	"github.com/anisham/contribhub/internal/app/system/watch"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler runs the payment request workflow: members submit claims of
// payment, admins accept or reject them. Accepting also reconciles the
// contribution ledger, in the same transaction when the deployment
// supports one.
type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	DB       *mongo.Database
	Client   *mongo.Client
	Payments *paymentstore.Store
	Contribs *contribstore.Store
	Members  *memberstore.Store
	Notifier *notify.Notifier
	Val      *inputval.Validator

	// Now is the clock for receipt codes and paid dates; tests override it.
	Now func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewHandler(db *mongo.Database, payments *paymentstore.Store, contribs *contribstore.Store, members *memberstore.Store, notifier *notify.Notifier, val *inputval.Validator, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		ErrLog:   errLog,
		DB:       db,
		Client:   db.Client(),
		Payments: payments,
		Contribs: contribs,
		Members:  members,
		Notifier: notifier,
		Val:      val,
		Now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type submitRequest struct {
	Month      string `json:"month" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	UPIID      string `json:"upiId"`
	Screenshot string `json:"screenshot" validate:"required"`
}

// Submit handles POST /payments. The screenshot is the member's proof of
// payment; without it nothing is persisted.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid request body.")
		return
	}
	if req.Screenshot == "" {
		h.ErrLog.BadRequest(w, r, "A payment screenshot is required.")
		return
	}
	if err := h.Val.Struct(req); err != nil {
		h.ErrLog.BadRequest(w, r, err.Error())
		return
	}
	if _, err := time.Parse("2006-01", req.Month); err != nil {
		h.ErrLog.BadRequest(w, r, "Month must be YYYY-MM.")
		return
	}

	now := h.Now().UTC()
	h.rngMu.Lock()
	code := receipts.Code(now, h.rng)
	h.rngMu.Unlock()

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	created, err := h.Payments.Create(ctx, models.PaymentRequest{
		Username:   u.Username,
		Month:      req.Month,
		Amount:     req.Amount,
		UPIID:      req.UPIID,
		Screenshot: req.Screenshot,
		PaymentID:  code,
	}, now)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create payment request failed", err, "Unable to submit payment.")
		return
	}

	h.Notifier.PaymentSubmitted(ctx, created)

	h.Log.Info("payment request submitted",
		zap.String("request_id", created.ID.Hex()),
		zap.String("username", created.Username),
		zap.String("month", created.Month),
		zap.Int64("amount", created.Amount),
		zap.String("payment_id", created.PaymentID))
	uierrors.JSON(w, http.StatusCreated, created)
}

// Latest handles GET /payments/latest?month=YYYY-MM: the member's most
// recent request for the month. After a rejection a member resubmits, and
// only the newest request drives what they see.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	month := r.URL.Query().Get("month")
	if month == "" {
		month = h.Now().UTC().Format("2006-01")
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	req, err := h.Payments.Latest(ctx, u.Username, month)
	if err == paymentstore.ErrNotFound {
		h.ErrLog.NotFound(w, r, "No payment request for this month.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load latest payment request failed", err, "Unable to load payment request.")
		return
	}
	uierrors.JSON(w, http.StatusOK, req)
}

// ListPending handles GET /payments/pending (admin).
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	reqs, err := h.Payments.ListPending(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list pending payment requests failed", err, "Unable to load payment requests.")
		return
	}
	if reqs == nil {
		reqs = []models.PaymentRequest{}
	}
	uierrors.JSON(w, http.StatusOK, reqs)
}

// ListAll handles GET /payments (admin history view).
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	reqs, err := h.Payments.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list payment requests failed", err, "Unable to load payment requests.")
		return
	}
	if reqs == nil {
		reqs = []models.PaymentRequest{}
	}
	uierrors.JSON(w, http.StatusOK, reqs)
}

type decideRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=accepted rejected"`
	Reason  string `json:"reason"`
}

// Decide handles POST /payments/{requestID}/decide (admin).
//
// Accepting flips the request to accepted AND reconciles the member's
// ledger row to paid, both inside one transaction where supported. The
// status-pinned filter in the store makes a second decision on the same
// request come back as a conflict whichever admin got there first.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	admin, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "requestID"))
	if err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid payment request id.")
		return
	}

	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid request body.")
		return
	}
	if err := h.Val.Struct(req); err != nil {
		h.ErrLog.BadRequest(w, r, err.Error())
		return
	}

	ctx, cancel := timeouts.WithLong(r.Context())
	defer cancel()

	now := h.Now().UTC()
	var decided models.PaymentRequest
	err = txn.Run(ctx, h.Client, h.Log, func(txnCtx context.Context) error {
		var terr error
		decided, terr = h.Payments.Decide(txnCtx, id, req.Outcome)
		if terr != nil {
			return terr
		}
		if req.Outcome == models.PaymentAccepted {
			return h.Contribs.ReconcileAcceptance(txnCtx, decided, now)
		}
		return nil
	})
	if err == paymentstore.ErrAlreadyDecided {
		h.ErrLog.Conflict(w, r, "This payment request has already been decided.")
		return
	}
	if err == paymentstore.ErrNotFound {
		h.ErrLog.NotFound(w, r, "Payment request not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "decide payment request failed", err, "Unable to decide payment request.")
		return
	}

	h.notifyDecision(ctx, decided, admin.Username, req.Reason)

	h.Log.Info("payment request decided",
		zap.String("request_id", decided.ID.Hex()),
		zap.String("username", decided.Username),
		zap.String("month", decided.Month),
		zap.String("outcome", decided.Status),
		zap.String("admin", admin.Username))
	uierrors.JSON(w, http.StatusOK, decided)
}

// Delete handles DELETE /payments/{requestID} (admin). Removing a request
// is bookkeeping only; the ledger keeps whatever state acceptance gave it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "requestID"))
	if err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid payment request id.")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	deleted, err := h.Payments.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete payment request failed", err, "Unable to delete payment request.")
		return
	}
	if deleted == 0 {
		h.ErrLog.NotFound(w, r, "Payment request not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stream handles GET /payments/stream: an SSE feed of payment request
// changes, backed by a Mongo change stream. Members see only their own
// requests; the admin sees everything. Clients that drop re-connect and
// re-fetch, so duplicate events are fine.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.ErrLog.BadRequest(w, r, "Streaming is not supported on this connection.")
		return
	}

	stream, err := watch.Collection(r.Context(), h.DB.Collection("payment_requests"), h.Log)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "open payment change stream failed", err, "Unable to open stream.")
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range stream.Events() {
		if ev.Document == nil {
			continue
		}
		var pr models.PaymentRequest
		if err := bson.Unmarshal(ev.Document, &pr); err != nil {
			h.Log.Warn("decode streamed payment request failed", zap.Error(err))
			continue
		}
		if u.Role != auth.RoleAdmin && pr.Username != u.Username {
			continue
		}
		payload, err := json.Marshal(pr)
		if err != nil {
			continue
		}
		if _, err := w.Write([]byte("event: payment\ndata: " + string(payload) + "\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}

// notifyDecision fires the member-facing notification. Member lookup
// failures only cost the notification, never the decision.
func (h *Handler) notifyDecision(ctx context.Context, decided models.PaymentRequest, adminUsername, reason string) {
	member, err := h.Members.GetByUsername(ctx, decided.Username)
	if err != nil {
		h.Log.Warn("member lookup for notification failed",
			zap.String("username", decided.Username), zap.Error(err))
		return
	}
	switch decided.Status {
	case models.PaymentAccepted:
		h.Notifier.PaymentApproved(ctx, decided, member, adminUsername)
	case models.PaymentRejected:
		h.Notifier.PaymentRejected(ctx, decided, member, adminUsername, reason)
	}
}
