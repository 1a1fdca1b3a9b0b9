package notify_test

import (
	"context"
	"strings"
	"testing"
	"time"

	notifstore "github.com/anisham/contribhub/internal/app/store/notifications"
	"github.com/anisham/contribhub/internal/app/system/notify"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/anisham/contribhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestPaymentSubmitted_NotifiesAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifstore.New(db)
	n := notify.New(store, nil, "Family Fund", zap.NewNop())

	n.PaymentSubmitted(context.Background(), models.PaymentRequest{
		Username:  "ravi",
		Month:     "2026-08",
		Amount:    1600,
		PaymentID: "PI090820261234",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	n.Flush()

	got, err := store.ListForUser(context.Background(), models.AdminUserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("notifications: got %d, want 1", len(got))
	}
	if got[0].Type != models.NotifyPaymentSubmitted {
		t.Errorf("type: got %q, want payment_submitted", got[0].Type)
	}
	if !strings.Contains(got[0].Message, "ravi") || !strings.Contains(got[0].Message, "2026-08") {
		t.Errorf("message %q should name the member and month", got[0].Message)
	}
	if got[0].Data == nil || got[0].Data.PaymentID != "PI090820261234" {
		t.Errorf("data should carry the receipt code, got %+v", got[0].Data)
	}
}

func TestPaymentRejected_MessageCarriesReason(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifstore.New(db)
	n := notify.New(store, nil, "Family Fund", zap.NewNop())

	member := models.Member{ID: primitive.NewObjectID(), Username: "ravi"}
	n.PaymentRejected(context.Background(), models.PaymentRequest{
		Username: "ravi",
		Month:    "2026-08",
		Amount:   1000,
	}, member, "admin", "screenshot unreadable")
	n.Flush()

	got, err := store.ListForUser(context.Background(), member.ID.Hex())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("notifications: got %d, want 1", len(got))
	}
	if !strings.Contains(got[0].Message, "Reason: screenshot unreadable") {
		t.Errorf("message %q should carry the rejection reason", got[0].Message)
	}
}

func TestPaymentApproved_NoEmailConfigured(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifstore.New(db)
	// nil mailer: in-app notification still lands, email is skipped.
	n := notify.New(store, nil, "Family Fund", zap.NewNop())

	member := models.Member{ID: primitive.NewObjectID(), Username: "mina", Email: "mina@example.com"}
	n.PaymentApproved(context.Background(), models.PaymentRequest{
		Username:  "mina",
		Month:     "2026-08",
		Amount:    1100,
		PaymentID: "PI090820265678",
	}, member, "admin")
	n.Flush()

	count, err := store.UnreadCount(context.Background(), member.ID.Hex())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("unread: got %d, want 1", count)
	}
}
