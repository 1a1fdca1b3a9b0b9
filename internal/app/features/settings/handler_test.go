package settings_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	"github.com/anisham/contribhub/internal/app/features/settings"
	settingsstore "github.com/anisham/contribhub/internal/app/store/settings"
	"github.com/anisham/contribhub/internal/app/system/inputval"
	"github.com/anisham/contribhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database) *settings.Handler {
	t.Helper()
	logger := zap.NewNop()
	return settings.NewHandler(
		settingsstore.New(db),
		inputval.New(),
		uierrors.NewErrorLogger(logger),
		"Family Fund",
		logger,
	)
}

func TestGet_DefaultsWhenUnset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	req := testutil.NewAuthenticatedRequest("GET", "/settings/payment", testutil.MemberUser("ravi"))
	rec := testutil.NewRecorder()

	h.Get(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		GatewayEnabled bool   `json:"gatewayEnabled"`
		UPIID          string `json:"upiId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.GatewayEnabled {
		t.Error("gateway should default to disabled")
	}
	if resp.UPIID != "" {
		t.Errorf("upiId should default empty, got %q", resp.UPIID)
	}
}

func TestSave_GatewayOffRequiresUPI(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	req := testutil.NewAuthenticatedJSONRequest("PUT", "/settings/payment",
		`{"gatewayEnabled":false,"upiId":""}`, testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.Save(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestSave_ThenGetRoundTrips(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	req := testutil.NewAuthenticatedJSONRequest("PUT", "/settings/payment",
		`{"gatewayEnabled":false,"upiId":"fund@upi"}`, testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.Save(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	got, err := settingsstore.New(db).Get(context.Background())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if got.UPIID != "fund@upi" {
		t.Errorf("upiId: got %q, want fund@upi", got.UPIID)
	}
}

func TestPayLink_BuildsUPIDeepLink(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	fx.SavePaymentSettings(context.Background(), false, "fund@upi")

	h := newTestHandler(t, db)
	req := testutil.NewAuthenticatedRequest("GET", "/settings/payment/link?amount=1100", testutil.MemberUser("ravi"))
	rec := testutil.NewRecorder()

	h.PayLink(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if !strings.HasPrefix(resp.Link, "upi://pay?") {
		t.Errorf("link: got %q, want upi://pay? prefix", resp.Link)
	}
	for _, frag := range []string{"pa=fund%40upi", "am=1100", "cu=INR"} {
		if !strings.Contains(resp.Link, frag) {
			t.Errorf("link %q missing %q", resp.Link, frag)
		}
	}
}
