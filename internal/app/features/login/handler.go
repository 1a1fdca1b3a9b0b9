// internal/app/features/login/handler.go
package login

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	memberstore "github.com/anisham/contribhub/internal/app/store/members"
	"github.com/anisham/contribhub/internal/app/system/auth"
	"github.com/anisham/contribhub/internal/app/system/authutil"
	"github.com/anisham/contribhub/internal/app/system/inputval"
	"github.com/anisham/contribhub/internal/app/system/ratelimit"
	"github.com/anisham/contribhub/internal/app/system/timeouts"
	"github.com/anisham/contribhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves login, logout, and password changes for members and the
// admin. The admin is not a member document; its credentials come from
// configuration (username plus a bcrypt hash).
type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Sessions *auth.SessionManager
	Members  *memberstore.Store
	Val      *inputval.Validator
	Limiter  *ratelimit.LoginLimiter

	AdminUsername     string
	AdminPasswordHash string
}

func NewHandler(members *memberstore.Store, sessions *auth.SessionManager, val *inputval.Validator, errLog *uierrors.ErrorLogger, adminUsername, adminPasswordHash string, logger *zap.Logger) *Handler {
	return &Handler{
		Log:               logger,
		ErrLog:            errLog,
		Sessions:          sessions,
		Members:           members,
		Val:               val,
		Limiter:           ratelimit.NewLoginLimiter(),
		AdminUsername:     adminUsername,
		AdminPasswordHash: adminPasswordHash,
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Username           string `json:"username"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

// Login handles POST /auth/login.
//
// Members whose document still carries the must-change flag are refused with
// 409 change_required until they change their password; no session is
// established for them.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid request body.")
		return
	}
	if err := h.Val.Struct(req); err != nil {
		h.ErrLog.BadRequest(w, r, err.Error())
		return
	}

	if allowed, reason := h.Limiter.Check(r, req.Username); !allowed {
		h.Log.Warn("login rate limited",
			zap.String("username", req.Username), zap.String("ip", ratelimit.ClientIP(r)))
		uierrors.JSON(w, http.StatusTooManyRequests, map[string]string{"error": reason})
		return
	}

	if h.isAdmin(req.Username) {
		if !authutil.VerifyPassword(h.AdminPasswordHash, req.Password) {
			h.unauthorized(w)
			return
		}
		u := auth.SessionUser{ID: models.AdminUserID, Name: "Admin", Username: h.AdminUsername, Role: auth.RoleAdmin}
		if err := h.Sessions.SignIn(w, r, u); err != nil {
			h.ErrLog.LogServerError(w, r, "admin sign-in failed", err, "Unable to sign in.")
			return
		}
		h.Limiter.ResetUsername(req.Username)
		uierrors.JSON(w, http.StatusOK, loginResponse{
			ID: u.ID, Name: u.Name, Username: u.Username, Role: u.Role,
		})
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	member, err := h.Members.GetByUsername(ctx, req.Username)
	if err == memberstore.ErrNotFound {
		h.unauthorized(w)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "member lookup failed", err, "Unable to sign in.")
		return
	}

	if !h.verifyMemberPassword(r, member, req.Password) {
		h.unauthorized(w)
		return
	}

	if member.MustChangePassword {
		uierrors.JSON(w, http.StatusConflict, map[string]any{
			"error":              "change_required",
			"mustChangePassword": true,
		})
		return
	}

	u := auth.SessionUser{
		ID:       member.ID.Hex(),
		Name:     member.Name,
		Username: member.Username,
		Role:     auth.RoleMember,
	}
	if err := h.Sessions.SignIn(w, r, u); err != nil {
		h.ErrLog.LogServerError(w, r, "member sign-in failed", err, "Unable to sign in.")
		return
	}
	h.Limiter.ResetUsername(req.Username)
	uierrors.JSON(w, http.StatusOK, loginResponse{
		ID: u.ID, Name: u.Name, Username: u.Username, Role: u.Role,
	})
}

type changePasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// ChangePassword handles POST /auth/change-password. It is deliberately
// unauthenticated: members with must-change set cannot log in yet, so the
// old password is the proof of identity.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid request body.")
		return
	}
	if err := h.Val.Struct(req); err != nil {
		h.ErrLog.BadRequest(w, r, err.Error())
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	member, err := h.Members.GetByUsername(ctx, req.Username)
	if err == memberstore.ErrNotFound {
		h.unauthorized(w)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "member lookup failed", err, "Unable to change password.")
		return
	}
	if !h.verifyMemberPassword(r, member, req.OldPassword) {
		h.unauthorized(w)
		return
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err == authutil.ErrPasswordTooShort {
		h.ErrLog.BadRequest(w, r, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "password hash failed", err, "Unable to change password.")
		return
	}
	if err := h.Members.SetPassword(ctx, member.ID, hash, false); err != nil {
		h.ErrLog.LogServerError(w, r, "password update failed", err, "Unable to change password.")
		return
	}

	h.Log.Info("member password changed", zap.String("username", member.Username))
	uierrors.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.ErrLog.LogServerError(w, r, "sign-out failed", err, "Unable to sign out.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me and echoes the session user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		h.unauthorized(w)
		return
	}
	uierrors.JSON(w, http.StatusOK, loginResponse{
		ID: u.ID, Name: u.Name, Username: u.Username, Role: u.Role,
	})
}

func (h *Handler) isAdmin(username string) bool {
	return h.AdminUsername != "" && strings.EqualFold(username, h.AdminUsername)
}

// verifyMemberPassword checks the password against the bcrypt hash, or
// against the legacy plaintext field for documents written before hashing
// existed. A successful legacy match upgrades the document to a hash and
// drops the plaintext.
func (h *Handler) verifyMemberPassword(r *http.Request, member models.Member, password string) bool {
	if member.PasswordHash != "" {
		return authutil.VerifyPassword(member.PasswordHash, password)
	}
	if member.LegacyPassword == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(member.LegacyPassword), []byte(password)) != 1 {
		return false
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		// Legacy password shorter than the current minimum; let the login
		// through and leave migration to the next password change.
		h.Log.Warn("legacy password migration skipped",
			zap.String("username", member.Username), zap.Error(err))
		return true
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()
	if err := h.Members.SetPassword(ctx, member.ID, hash, member.MustChangePassword); err != nil {
		h.Log.Error("legacy password migration failed",
			zap.String("username", member.Username), zap.Error(err))
	} else {
		h.Log.Info("legacy password migrated to hash",
			zap.String("username", member.Username))
	}
	return true
}

func (h *Handler) unauthorized(w http.ResponseWriter) {
	uierrors.JSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password."})
}
