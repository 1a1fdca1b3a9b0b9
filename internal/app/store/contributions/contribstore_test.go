package contribstore_test

import (
	"context"
	"testing"
	"time"

	contribstore "github.com/anisham/contribhub/internal/app/store/contributions"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/anisham/contribhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureLedgerIndex creates the unique (username, month) index the store
// relies on for duplicate detection.
func ensureLedgerIndex(t *testing.T, db *mongo.Database) {
	t.Helper()
	_, err := db.Collection("contribution").Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}, {Key: "month", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("create ledger index: %v", err)
	}
}

func TestCreateInitial_DuplicateMonthRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ensureLedgerIndex(t, db)
	store := contribstore.New(db)
	ctx := context.Background()

	if _, err := store.CreateInitial(ctx, "ravi", "2026-08", 1000); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := store.CreateInitial(ctx, "ravi", "2026-08", 1000)
	if err != contribstore.ErrExists {
		t.Fatalf("second insert: got %v, want ErrExists", err)
	}
}

func TestReconcileAcceptance_FlipsExistingRowKeepingAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := contribstore.New(db)
	ctx := context.Background()

	fx.CreateContribution(ctx, "ravi", "2026-08", 1000, models.ContributionPending)
	req := fx.CreatePaymentRequest(ctx, "ravi", "2026-08", 1600, models.PaymentAccepted, time.Now())

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	if err := store.ReconcileAcceptance(ctx, req, now); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	row, err := store.GetByUsernameMonth(ctx, "ravi", "2026-08")
	if err != nil {
		t.Fatalf("load row: %v", err)
	}
	if !row.Paid() {
		t.Errorf("status: got %q, want paid", row.Status)
	}
	// The stored amount predates the request and stays as recorded.
	if row.Amount != 1000 {
		t.Errorf("amount: got %d, want 1000", row.Amount)
	}
	if row.PaymentID != req.PaymentID {
		t.Errorf("paymentID: got %q, want %q", row.PaymentID, req.PaymentID)
	}
	if row.PaidDate == nil || *row.PaidDate != now.Format(time.RFC3339) {
		t.Errorf("paidDate: got %v, want %s", row.PaidDate, now.Format(time.RFC3339))
	}
}

func TestReconcileAcceptance_CreatesRowWhenMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := contribstore.New(db)
	ctx := context.Background()

	req := fx.CreatePaymentRequest(ctx, "mina", "2026-07", 1100, models.PaymentAccepted, time.Now())

	if err := store.ReconcileAcceptance(ctx, req, time.Now()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	row, err := store.GetByUsernameMonth(ctx, "mina", "2026-07")
	if err != nil {
		t.Fatalf("load row: %v", err)
	}
	if !row.Paid() {
		t.Errorf("status: got %q, want paid", row.Status)
	}
	// No prior row existed, so the request's amount is recorded.
	if row.Amount != 1100 {
		t.Errorf("amount: got %d, want 1100", row.Amount)
	}
}

func TestReconcileAcceptance_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := contribstore.New(db)
	ctx := context.Background()

	req := fx.CreatePaymentRequest(ctx, "ravi", "2026-08", 1000, models.PaymentAccepted, time.Now())
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	if err := store.ReconcileAcceptance(ctx, req, now); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	if err := store.ReconcileAcceptance(ctx, req, now); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}

	n, err := db.Collection("contribution").CountDocuments(ctx, bson.M{"username": "ravi", "month": "2026-08"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("rows: got %d, want 1", n)
	}
	row, _ := store.GetByUsernameMonth(ctx, "ravi", "2026-08")
	if !row.Paid() {
		t.Errorf("status: got %q, want paid", row.Status)
	}
}

func TestReconcileAcceptance_NeverLeavesPaid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := contribstore.New(db)
	ctx := context.Background()

	fx.CreateContribution(ctx, "ravi", "2026-08", 1000, models.ContributionPaid)
	req := fx.CreatePaymentRequest(ctx, "ravi", "2026-08", 1600, models.PaymentAccepted, time.Now())

	if err := store.ReconcileAcceptance(ctx, req, time.Now()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	row, err := store.GetByUsernameMonth(ctx, "ravi", "2026-08")
	if err != nil {
		t.Fatalf("load row: %v", err)
	}
	if !row.Paid() {
		t.Errorf("status: got %q, want paid", row.Status)
	}
	if row.Amount != 1000 {
		t.Errorf("amount: got %d, want the original 1000", row.Amount)
	}
}

func TestListByUsername_SortedByMonth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := contribstore.New(db)
	ctx := context.Background()

	fx.CreateContribution(ctx, "ravi", "2026-08", 1000, models.ContributionPending)
	fx.CreateContribution(ctx, "ravi", "2026-06", 1000, models.ContributionPaid)
	fx.CreateContribution(ctx, "ravi", "2026-07", 1000, models.ContributionPaid)
	fx.CreateContribution(ctx, "mina", "2026-08", 1000, models.ContributionPending)

	rows, err := store.ListByUsername(ctx, "ravi")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	for i, want := range []string{"2026-06", "2026-07", "2026-08"} {
		if rows[i].Month != want {
			t.Errorf("rows[%d].Month: got %q, want %q", i, rows[i].Month, want)
		}
	}
}
