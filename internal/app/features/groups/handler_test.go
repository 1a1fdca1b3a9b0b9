package groups_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	"github.com/anisham/contribhub/internal/app/features/groups"
	groupstore "github.com/anisham/contribhub/internal/app/store/groups"
	memberstore "github.com/anisham/contribhub/internal/app/store/members"
	"github.com/anisham/contribhub/internal/app/system/inputval"
	"github.com/anisham/contribhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database) *groups.Handler {
	t.Helper()
	logger := zap.NewNop()
	return groups.NewHandler(
		groupstore.New(db),
		memberstore.New(db),
		inputval.New(),
		uierrors.NewErrorLogger(logger),
		logger,
	)
}

func TestCreate_DropsIncompleteFineRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	body := `{
		"name": "Family Fund",
		"baseAmount": 1000,
		"fineRules": [
			{"fromDate": "2024-01-06", "toDate": "2024-01-10", "amount": 100},
			{"fromDate": "", "toDate": "2024-01-15", "amount": 500},
			{"fromDate": "2024-01-11", "toDate": "", "amount": 0}
		]
	}`
	req := testutil.NewAuthenticatedJSONRequest("POST", "/groups", body, testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.Create(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	var g struct {
		FineRules []struct {
			FromDate string `json:"fromDate"`
		} `json:"fineRules"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(g.FineRules) != 1 {
		t.Fatalf("fine rules kept: got %d, want 1", len(g.FineRules))
	}
	if g.FineRules[0].FromDate != "2024-01-06" {
		t.Errorf("kept rule fromDate: got %q", g.FineRules[0].FromDate)
	}
}

func TestCreate_RejectsMissingBaseAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	req := testutil.NewAuthenticatedJSONRequest("POST", "/groups", `{"name":"Family Fund"}`, testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.Create(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestDelete_CascadesToMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	group := fx.CreateGroup(ctx, "Family Fund", 1000, nil)
	fx.CreateMember(ctx, group.ID, "Ravi", "ravi", "hunter22")
	fx.CreateMember(ctx, group.ID, "Mina", "mina", "hunter22")
	fx.CreateContribution(ctx, "ravi", "2026-07", 1000, "paid")

	h := newTestHandler(t, db)
	req := testutil.NewAuthenticatedRequest("DELETE", "/groups/"+group.ID.Hex(), testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "groupID", group.ID.Hex())
	rec := testutil.NewRecorder()

	h.Delete(rec, req)

	rec.AssertStatus(t, http.StatusNoContent)

	members, err := memberstore.New(db).List(ctx)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("members after cascade: got %d, want 0", len(members))
	}

	// Ledger history survives the cascade.
	n, err := db.Collection("contribution").CountDocuments(ctx, bson.M{"username": "ravi"})
	if err != nil {
		t.Fatalf("count contributions: %v", err)
	}
	if n != 1 {
		t.Errorf("ledger rows after cascade: got %d, want 1", n)
	}
}

func TestActive_NoGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	req := testutil.NewAuthenticatedRequest("GET", "/groups/active", testutil.MemberUser("ravi"))
	rec := testutil.NewRecorder()

	h.Active(rec, req)

	rec.AssertStatus(t, http.StatusNotFound)
}
