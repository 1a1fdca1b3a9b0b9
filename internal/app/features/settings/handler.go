// internal/app/features/settings/handler.go
package settings

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	settingsstore "github.com/anisham/contribhub/internal/app/store/settings"
	"github.com/anisham/contribhub/internal/app/system/inputval"
	"github.com/anisham/contribhub/internal/app/system/timeouts"
	"github.com/anisham/contribhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler manages the singleton payment settings document. With the
// gateway disabled, members pay the configured UPI id directly and upload
// a screenshot; the UPI id is therefore mandatory in that mode.
type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Settings *settingsstore.Store
	Val      *inputval.Validator

	// PayeeName appears in generated UPI payment links.
	PayeeName string
}

func NewHandler(settings *settingsstore.Store, val *inputval.Validator, errLog *uierrors.ErrorLogger, payeeName string, logger *zap.Logger) *Handler {
	return &Handler{
		Log:       logger,
		ErrLog:    errLog,
		Settings:  settings,
		Val:       val,
		PayeeName: payeeName,
	}
}

// Get handles GET /settings/payment.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	s, err := h.Settings.Get(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load payment settings failed", err, "Unable to load settings.")
		return
	}
	uierrors.JSON(w, http.StatusOK, s)
}

type saveRequest struct {
	GatewayEnabled bool   `json:"gatewayEnabled"`
	UPIID          string `json:"upiId"`
}

// Save handles PUT /settings/payment (admin only).
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid request body.")
		return
	}
	req.UPIID = h.Val.Clean(req.UPIID)
	if !req.GatewayEnabled && req.UPIID == "" {
		h.ErrLog.BadRequest(w, r, "A UPI id is required while the payment gateway is disabled.")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	settings := models.PaymentSettings{
		ID:             models.SettingsDocID,
		GatewayEnabled: req.GatewayEnabled,
		UPIID:          req.UPIID,
	}
	if err := h.Settings.Save(ctx, settings); err != nil {
		h.ErrLog.LogServerError(w, r, "save payment settings failed", err, "Unable to save settings.")
		return
	}

	h.Log.Info("payment settings saved",
		zap.Bool("gateway_enabled", req.GatewayEnabled),
		zap.Bool("upi_configured", req.UPIID != ""))
	uierrors.JSON(w, http.StatusOK, settings)
}

// PayLink handles GET /settings/payment/link?amount=1100: the UPI deep
// link a member's phone opens to pay the configured id.
func (h *Handler) PayLink(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if err != nil || amount <= 0 {
		h.ErrLog.BadRequest(w, r, "A positive amount is required.")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	s, err := h.Settings.Get(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load payment settings failed", err, "Unable to build payment link.")
		return
	}
	if s.UPIID == "" {
		h.ErrLog.NotFound(w, r, "No UPI id has been configured.")
		return
	}

	q := url.Values{}
	q.Set("pa", s.UPIID)
	q.Set("pn", h.PayeeName)
	q.Set("am", strconv.FormatInt(amount, 10))
	q.Set("cu", "INR")

	uierrors.JSON(w, http.StatusOK, map[string]string{
		"link": "upi://pay?" + q.Encode(),
	})
}
