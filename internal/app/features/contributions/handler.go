// internal/app/features/contributions/handler.go
package contributions

import (
	"net/http"
	"time"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	contribstore "github.com/anisham/contribhub/internal/app/store/contributions"
	groupstore "github.com/anisham/contribhub/internal/app/store/groups"
	"github.com/anisham/contribhub/internal/app/system/auth"
	"github.com/anisham/contribhub/internal/app/system/fines"
	"github.com/anisham/contribhub/internal/app/system/receipts"
	"github.com/anisham/contribhub/internal/app/system/timeouts"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves a member's own contribution ledger and the live amount
// due. Stored ledger amounts are historical; what a member owes TODAY is
// always recomputed from the group's fine rules.
type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Contribs *contribstore.Store
	Groups   *groupstore.Store

	// Now is the clock used for fine evaluation; tests override it.
	Now func() time.Time
}

func NewHandler(contribs *contribstore.Store, groups *groupstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		ErrLog:   errLog,
		Contribs: contribs,
		Groups:   groups,
		Now:      time.Now,
	}
}

// Mine handles GET /contributions/me: the member's full ledger plus which
// row is the current month.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	rows, err := h.Contribs.ListByUsername(ctx, u.Username)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list contributions failed", err, "Unable to load contributions.")
		return
	}
	if rows == nil {
		rows = []models.Contribution{}
	}

	uierrors.JSON(w, http.StatusOK, map[string]any{
		"contributions": rows,
		"currentMonth":  h.Now().UTC().Format("2006-01"),
	})
}

type amountDueResponse struct {
	Month     string             `json:"month"`
	Amount    int64              `json:"amount"`
	Breakdown receipts.Breakdown `json:"breakdown"`
	Paid      bool               `json:"paid"`
}

// AmountDue handles GET /contributions/amount-due: the fine-inclusive
// amount the member owes for the current month as of today.
func (h *Handler) AmountDue(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	now := h.Now().UTC()
	month := now.Format("2006-01")

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	group, err := h.Groups.Active(ctx)
	if err != nil && err != groupstore.ErrNoGroup {
		h.ErrLog.LogServerError(w, r, "load active group failed", err, "Unable to compute amount due.")
		return
	}
	var gp *models.Group
	if err == nil {
		gp = &group
	}
	amount := fines.AmountDue(gp, now)

	resp := amountDueResponse{
		Month:     month,
		Amount:    amount,
		Breakdown: receipts.Split(amount),
	}
	row, err := h.Contribs.GetByUsernameMonth(ctx, u.Username, month)
	if err == nil && row.Paid() {
		resp.Paid = true
		resp.Amount = row.Amount
		resp.Breakdown = receipts.Split(row.Amount)
	} else if err != nil && err != contribstore.ErrNotFound {
		h.ErrLog.LogServerError(w, r, "load ledger row failed", err, "Unable to compute amount due.")
		return
	}

	uierrors.JSON(w, http.StatusOK, resp)
}

// TotalDue handles GET /contributions/total-due: the sum a member owes
// across all pending months. The current month uses the live fine-inclusive
// amount; earlier months keep their recorded amount.
func (h *Handler) TotalDue(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	now := h.Now().UTC()
	month := now.Format("2006-01")

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	rows, err := h.Contribs.ListByUsername(ctx, u.Username)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list contributions failed", err, "Unable to compute total due.")
		return
	}

	group, err := h.Groups.Active(ctx)
	var gp *models.Group
	if err == nil {
		gp = &group
	} else if err != groupstore.ErrNoGroup {
		h.ErrLog.LogServerError(w, r, "load active group failed", err, "Unable to compute total due.")
		return
	}

	var total int64
	var pendingMonths []string
	for _, row := range rows {
		if row.Paid() {
			continue
		}
		if row.Month == month {
			total += fines.AmountDue(gp, now)
		} else {
			total += row.Amount
		}
		pendingMonths = append(pendingMonths, row.Month)
	}
	if pendingMonths == nil {
		pendingMonths = []string{}
	}

	uierrors.JSON(w, http.StatusOK, map[string]any{
		"total":         total,
		"pendingMonths": pendingMonths,
	})
}

// ByMonth handles GET /contributions/month/{month} (admin): every ledger
// row for one month.
func (h *Handler) ByMonth(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if !validMonth(month) {
		h.ErrLog.BadRequest(w, r, "Month must be YYYY-MM.")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	rows, err := h.Contribs.ListByMonth(ctx, month)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list contributions by month failed", err, "Unable to load contributions.")
		return
	}
	if rows == nil {
		rows = []models.Contribution{}
	}
	uierrors.JSON(w, http.StatusOK, rows)
}

func validMonth(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}
