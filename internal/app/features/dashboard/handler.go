// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"
	"sort"
	"time"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	contribstore "github.com/anisham/contribhub/internal/app/store/contributions"
	groupstore "github.com/anisham/contribhub/internal/app/store/groups"
	memberstore "github.com/anisham/contribhub/internal/app/store/members"
	"github.com/anisham/contribhub/internal/app/system/fines"
	"github.com/anisham/contribhub/internal/app/system/timeouts"
	"github.com/anisham/contribhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler assembles the group dashboard: collection totals and the current
// month's per-member status. Amounts still owed are always recomputed from
// the fine rules as of today; stored ledger amounts only speak for months
// already paid.
type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Groups   *groupstore.Store
	Members  *memberstore.Store
	Contribs *contribstore.Store

	// Now is the dashboard's clock; tests override it.
	Now func() time.Time
}

func NewHandler(groups *groupstore.Store, members *memberstore.Store, contribs *contribstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		ErrLog:   errLog,
		Groups:   groups,
		Members:  members,
		Contribs: contribs,
		Now:      time.Now,
	}
}

type monthTotal struct {
	Month string `json:"month"`
	Total int64  `json:"total"`
}

type memberTotal struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Total    int64  `json:"total"`
}

type memberStatus struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
}

type dashboardResponse struct {
	Group                models.Group   `json:"group"`
	PreviousContribution int64          `json:"previousContribution"`
	Collected            int64          `json:"collected"`
	Overall              int64          `json:"overall"`
	ByMonth              []monthTotal   `json:"byMonth"`
	ByMember             []memberTotal  `json:"byMember"`
	CurrentMonth         string         `json:"currentMonth"`
	AmountDueToday       int64          `json:"amountDueToday"`
	Members              []memberStatus `json:"members"`
}

// Serve handles GET /dashboard.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	now := h.Now().UTC()
	month := now.Format("2006-01")

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	group, err := h.Groups.Active(ctx)
	if err == groupstore.ErrNoGroup {
		h.ErrLog.NotFound(w, r, "No group has been created yet.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load active group failed", err, "Unable to load dashboard.")
		return
	}

	members, err := h.Members.ListByGroup(ctx, group.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list members failed", err, "Unable to load dashboard.")
		return
	}

	paid, err := h.Contribs.ListPaid(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list paid contributions failed", err, "Unable to load dashboard.")
		return
	}

	monthRows, err := h.Contribs.ListByMonth(ctx, month)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list current month failed", err, "Unable to load dashboard.")
		return
	}

	resp := dashboardResponse{
		Group:                group,
		PreviousContribution: group.PreviousContribution,
		CurrentMonth:         month,
		AmountDueToday:       fines.AmountDue(&group, now),
	}

	nameByUsername := make(map[string]string, len(members))
	for _, m := range members {
		nameByUsername[m.Username] = m.Name
	}

	byMonth := map[string]int64{}
	byMember := map[string]int64{}
	for _, row := range paid {
		resp.Collected += row.Amount
		byMonth[row.Month] += row.Amount
		byMember[row.Username] += row.Amount
	}
	resp.Overall = resp.Collected + group.PreviousContribution

	for m, total := range byMonth {
		resp.ByMonth = append(resp.ByMonth, monthTotal{Month: m, Total: total})
	}
	sort.Slice(resp.ByMonth, func(i, j int) bool { return resp.ByMonth[i].Month < resp.ByMonth[j].Month })

	for _, m := range members {
		resp.ByMember = append(resp.ByMember, memberTotal{
			Username: m.Username,
			Name:     m.Name,
			Total:    byMember[m.Username],
		})
	}

	rowByUsername := make(map[string]models.Contribution, len(monthRows))
	for _, row := range monthRows {
		rowByUsername[row.Username] = row
	}
	for _, m := range members {
		ms := memberStatus{Username: m.Username, Name: m.Name}
		if row, ok := rowByUsername[m.Username]; ok && row.Paid() {
			ms.Status = models.ContributionPaid
			ms.Amount = row.Amount
		} else {
			ms.Status = models.ContributionPending
			ms.Amount = resp.AmountDueToday
		}
		resp.Members = append(resp.Members, ms)
	}

	if resp.ByMonth == nil {
		resp.ByMonth = []monthTotal{}
	}
	if resp.ByMember == nil {
		resp.ByMember = []memberTotal{}
	}
	if resp.Members == nil {
		resp.Members = []memberStatus{}
	}

	uierrors.JSON(w, http.StatusOK, resp)
}
