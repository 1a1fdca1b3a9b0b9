package contributions_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/anisham/contribhub/internal/app/features/contributions"
	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	contribstore "github.com/anisham/contribhub/internal/app/store/contributions"
	groupstore "github.com/anisham/contribhub/internal/app/store/groups"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/anisham/contribhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database, now time.Time) *contributions.Handler {
	t.Helper()
	logger := zap.NewNop()
	h := contributions.NewHandler(
		contribstore.New(db),
		groupstore.New(db),
		uierrors.NewErrorLogger(logger),
		logger,
	)
	h.Now = func() time.Time { return now }
	return h
}

func TestAmountDue_FineInclusiveLive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	fx.CreateGroup(ctx, "Family Fund", 1000, []models.FineRule{
		{FromDate: "2024-01-06", ToDate: "2024-01-10", Amount: 100},
		{FromDate: "2024-01-11", ToDate: "2024-01-15", Amount: 500},
	})

	// The 12th: both rules have started, so 1000 + 100 + 500.
	now := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)
	h := newTestHandler(t, db, now)

	req := testutil.NewAuthenticatedRequest("GET", "/contributions/amount-due", testutil.MemberUser("ravi"))
	rec := testutil.NewRecorder()

	h.AmountDue(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Month     string `json:"month"`
		Amount    int64  `json:"amount"`
		Paid      bool   `json:"paid"`
		Breakdown struct {
			Base int64 `json:"base"`
			Fine int64 `json:"fine"`
		} `json:"breakdown"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Amount != 1600 {
		t.Errorf("amount: got %d, want 1600", resp.Amount)
	}
	if resp.Month != "2026-08" {
		t.Errorf("month: got %q, want 2026-08", resp.Month)
	}
	if resp.Paid {
		t.Error("expected unpaid month")
	}
	if resp.Breakdown.Base != 1000 || resp.Breakdown.Fine != 600 {
		t.Errorf("breakdown: got base %d fine %d, want 1000/600", resp.Breakdown.Base, resp.Breakdown.Fine)
	}
}

func TestAmountDue_PaidMonthUsesRecordedAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	fx.CreateGroup(ctx, "Family Fund", 1000, []models.FineRule{
		{FromDate: "2024-01-06", Amount: 100},
	})
	fx.CreateContribution(ctx, "ravi", "2026-08", 1000, models.ContributionPaid)

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	h := newTestHandler(t, db, now)

	req := testutil.NewAuthenticatedRequest("GET", "/contributions/amount-due", testutil.MemberUser("ravi"))
	rec := testutil.NewRecorder()

	h.AmountDue(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Amount int64 `json:"amount"`
		Paid   bool  `json:"paid"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if !resp.Paid {
		t.Error("expected paid month")
	}
	if resp.Amount != 1000 {
		t.Errorf("amount: got %d, want the recorded 1000, not the live fine-inclusive value", resp.Amount)
	}
}

func TestAmountDue_NoGroupFallsBackToTiers(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cases := []struct {
		day  int
		want int64
	}{
		{3, 1000},
		{7, 1100},
		{25, 1600},
	}
	for _, tc := range cases {
		now := time.Date(2026, 8, tc.day, 10, 0, 0, 0, time.UTC)
		h := newTestHandler(t, db, now)

		req := testutil.NewAuthenticatedRequest("GET", "/contributions/amount-due", testutil.MemberUser("ravi"))
		rec := testutil.NewRecorder()
		h.AmountDue(rec, req)

		rec.AssertStatus(t, http.StatusOK)
		var resp struct {
			Amount int64 `json:"amount"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("day %d: parse response: %v", tc.day, err)
		}
		if resp.Amount != tc.want {
			t.Errorf("day %d: amount got %d, want %d", tc.day, resp.Amount, tc.want)
		}
	}
}

func TestTotalDue_SumsPendingMonths(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	fx.CreateGroup(ctx, "Family Fund", 1000, []models.FineRule{
		{FromDate: "2024-01-06", Amount: 100},
	})
	fx.CreateContribution(ctx, "ravi", "2026-06", 1000, models.ContributionPaid)
	fx.CreateContribution(ctx, "ravi", "2026-07", 1600, models.ContributionPending)
	fx.CreateContribution(ctx, "ravi", "2026-08", 1000, models.ContributionPending)

	// The 10th: current month owes 1000 + 100.
	now := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
	h := newTestHandler(t, db, now)

	req := testutil.NewAuthenticatedRequest("GET", "/contributions/total-due", testutil.MemberUser("ravi"))
	rec := testutil.NewRecorder()

	h.TotalDue(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Total         int64    `json:"total"`
		PendingMonths []string `json:"pendingMonths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Total != 1600+1100 {
		t.Errorf("total: got %d, want %d", resp.Total, 1600+1100)
	}
	if len(resp.PendingMonths) != 2 {
		t.Errorf("pending months: got %v, want two entries", resp.PendingMonths)
	}
}
