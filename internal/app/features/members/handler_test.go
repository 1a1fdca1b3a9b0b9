package members_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	"github.com/anisham/contribhub/internal/app/features/members"
	contribstore "github.com/anisham/contribhub/internal/app/store/contributions"
	groupstore "github.com/anisham/contribhub/internal/app/store/groups"
	memberstore "github.com/anisham/contribhub/internal/app/store/members"
	"github.com/anisham/contribhub/internal/app/system/inputval"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/anisham/contribhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func memberUsernameIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "username_ci", Value: 1}},
		Options: options.Index().SetName("uniq_username_ci").SetUnique(true),
	}
}

func newTestHandler(t *testing.T, db *mongo.Database) *members.Handler {
	t.Helper()
	logger := zap.NewNop()
	return members.NewHandler(
		memberstore.New(db),
		groupstore.New(db),
		contribstore.New(db),
		inputval.New(),
		uierrors.NewErrorLogger(logger),
		logger,
	)
}

func TestCreate_SeedsCurrentMonthLedgerRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	fx.CreateGroup(ctx, "Family Fund", 1000, nil)

	h := newTestHandler(t, db)
	body := `{"name":"Ravi","username":"ravi","password":"temp-pass"}`
	req := testutil.NewAuthenticatedJSONRequest("POST", "/members", body, testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.Create(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var created models.Member
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if !created.MustChangePassword {
		t.Error("expected new member to carry the must-change flag")
	}

	month := time.Now().UTC().Format("2006-01")
	row, err := contribstore.New(db).GetByUsernameMonth(ctx, "ravi", month)
	if err != nil {
		t.Fatalf("load seeded ledger row: %v", err)
	}
	if row.Status != models.ContributionPending {
		t.Errorf("seeded status: got %q, want %q", row.Status, models.ContributionPending)
	}
	if row.Amount != 1000 {
		t.Errorf("seeded amount: got %d, want 1000 (base amount, not fine-inclusive)", row.Amount)
	}
}

func TestCreate_DuplicateUsernameConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	group := fx.CreateGroup(ctx, "Family Fund", 1000, nil)
	fx.CreateMember(ctx, group.ID, "Ravi", "ravi", "hunter22")

	// Ensure the unique index backs the duplicate check.
	if _, err := db.Collection("members").Indexes().CreateOne(ctx, memberUsernameIndex()); err != nil {
		t.Fatalf("create index: %v", err)
	}

	h := newTestHandler(t, db)
	body := `{"name":"Other Ravi","username":"RAVI","password":"temp-pass"}`
	req := testutil.NewAuthenticatedJSONRequest("POST", "/members", body, testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.Create(rec, req)

	rec.AssertStatus(t, http.StatusConflict)
}

func TestCreate_NoGroupYet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	body := `{"name":"Ravi","username":"ravi","password":"temp-pass"}`
	req := testutil.NewAuthenticatedJSONRequest("POST", "/members", body, testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.Create(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestDelete_LeavesLedgerRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	group := fx.CreateGroup(ctx, "Family Fund", 1000, nil)
	member := fx.CreateMember(ctx, group.ID, "Ravi", "ravi", "hunter22")
	fx.CreateContribution(ctx, "ravi", "2026-07", 1000, models.ContributionPaid)

	h := newTestHandler(t, db)
	req := testutil.NewAuthenticatedRequest("DELETE", "/members/"+member.ID.Hex(), testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "memberID", member.ID.Hex())
	rec := testutil.NewRecorder()

	h.Delete(rec, req)

	rec.AssertStatus(t, http.StatusNoContent)

	row, err := contribstore.New(db).GetByUsernameMonth(ctx, "ravi", "2026-07")
	if err != nil {
		t.Fatalf("ledger row should survive member deletion: %v", err)
	}
	if row.Status != models.ContributionPaid {
		t.Errorf("ledger status after delete: got %q, want paid", row.Status)
	}
}
