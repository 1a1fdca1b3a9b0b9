package notifications_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	"github.com/anisham/contribhub/internal/app/features/notifications"
	notifstore "github.com/anisham/contribhub/internal/app/store/notifications"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/anisham/contribhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database) *notifications.Handler {
	t.Helper()
	logger := zap.NewNop()
	return notifications.NewHandler(db, notifstore.New(db), uierrors.NewErrorLogger(logger), logger)
}

func TestList_OnlyOwnNotifications(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	user := testutil.MemberUser("ravi")
	fx.CreateNotification(ctx, user.ID, "ravi", models.NotifyPaymentApproved, "approved")
	fx.CreateNotification(ctx, "someone-else", "mina", models.NotifyPaymentApproved, "approved")

	h := newTestHandler(t, db)
	req := testutil.NewAuthenticatedRequest("GET", "/notifications", user)
	rec := testutil.NewRecorder()

	h.List(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var notifs []models.Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &notifs); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("notifications: got %d, want 1", len(notifs))
	}
	if notifs[0].UserID != user.ID {
		t.Errorf("notification owner: got %q, want %q", notifs[0].UserID, user.ID)
	}
}

func TestMarkRead_ScopedToOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	owner := testutil.MemberUser("ravi")
	n := fx.CreateNotification(ctx, owner.ID, "ravi", models.NotifyPaymentApproved, "approved")

	h := newTestHandler(t, db)

	// Another user marking it read is a silent no-op.
	other := testutil.MemberUser("mina")
	req := testutil.NewAuthenticatedRequest("POST", "/notifications/"+n.ID.Hex()+"/read", other)
	req = testutil.WithChiURLParam(req, "notificationID", n.ID.Hex())
	rec := testutil.NewRecorder()
	h.MarkRead(rec, req)
	rec.AssertStatus(t, http.StatusNoContent)

	count, err := notifstore.New(db).UnreadCount(ctx, owner.ID)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Errorf("unread after foreign mark: got %d, want 1", count)
	}

	// The owner marking it read sticks.
	req = testutil.NewAuthenticatedRequest("POST", "/notifications/"+n.ID.Hex()+"/read", owner)
	req = testutil.WithChiURLParam(req, "notificationID", n.ID.Hex())
	rec = testutil.NewRecorder()
	h.MarkRead(rec, req)
	rec.AssertStatus(t, http.StatusNoContent)

	count, err = notifstore.New(db).UnreadCount(ctx, owner.ID)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 0 {
		t.Errorf("unread after owner mark: got %d, want 0", count)
	}
}

func TestMarkAllRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	user := testutil.MemberUser("ravi")
	fx.CreateNotification(ctx, user.ID, "ravi", models.NotifyPaymentApproved, "one")
	fx.CreateNotification(ctx, user.ID, "ravi", models.NotifyPaymentRejected, "two")

	h := newTestHandler(t, db)
	req := testutil.NewAuthenticatedRequest("POST", "/notifications/read-all", user)
	rec := testutil.NewRecorder()

	h.MarkAllRead(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Updated int64 `json:"updated"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Updated != 2 {
		t.Errorf("updated: got %d, want 2", resp.Updated)
	}
}
