package indexes_test

import (
	"context"
	"testing"
	"time"

	"github.com/anisham/contribhub/internal/app/system/indexes"
	"github.com/anisham/contribhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func indexNames(t *testing.T, ctx context.Context, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes on %s: %v", coll, err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll: %v", err)
	}
}

func TestEnsureAll_CreatesExpectedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	checks := map[string][]string{
		"groups":           {"uniq_name_ci", "created_at"},
		"members":          {"uniq_username_ci", "group_id"},
		"contribution":     {"uniq_username_month", "month_status"},
		"payment_requests": {"username_month_created", "status_created"},
		"notifications":    {"user_read", "user_created"},
	}
	for coll, expected := range checks {
		names := indexNames(t, ctx, db, coll)
		for _, name := range expected {
			if !names[name] {
				t.Errorf("expected index %q on %s", name, coll)
			}
		}
	}
}

func TestEnsureAll_LedgerUniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	coll := db.Collection("contribution")
	if _, err := coll.InsertOne(ctx, bson.M{"username": "ravi", "month": "2026-08", "amount": 1000, "status": "pending"}); err != nil {
		t.Fatalf("insert ledger row: %v", err)
	}
	if _, err := coll.InsertOne(ctx, bson.M{"username": "ravi", "month": "2026-08", "amount": 1600, "status": "pending"}); err == nil {
		t.Error("expected duplicate key error for second (username, month) row")
	}
}
