// internal/app/features/members/handler.go
package members

import (
	"encoding/json"
	"net/http"
	"time"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	contribstore "github.com/anisham/contribhub/internal/app/store/contributions"
	groupstore "github.com/anisham/contribhub/internal/app/store/groups"
	memberstore "github.com/anisham/contribhub/internal/app/store/members"
	"github.com/anisham/contribhub/internal/app/system/authutil"
	"github.com/anisham/contribhub/internal/app/system/inputval"
	"github.com/anisham/contribhub/internal/app/system/timeouts"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler manages group members (admin only). Creating a member also seeds
// the current month's ledger row so the new member immediately shows up as
// pending.
type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Members  *memberstore.Store
	Groups   *groupstore.Store
	Contribs *contribstore.Store
	Val      *inputval.Validator
}

func NewHandler(members *memberstore.Store, groups *groupstore.Store, contribs *contribstore.Store, val *inputval.Validator, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		ErrLog:   errLog,
		Members:  members,
		Groups:   groups,
		Contribs: contribs,
		Val:      val,
	}
}

type createRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type updateRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

// Create handles POST /members.
//
// The supplied password is a temporary one issued by the admin, so the
// member document is created with the must-change flag set.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid request body.")
		return
	}
	if err := h.Val.Struct(req); err != nil {
		h.ErrLog.BadRequest(w, r, err.Error())
		return
	}

	ctx, cancel := timeouts.WithLong(r.Context())
	defer cancel()

	group, err := h.Groups.Active(ctx)
	if err == groupstore.ErrNoGroup {
		h.ErrLog.BadRequest(w, r, "Create a group before adding members.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load active group failed", err, "Unable to create member.")
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.ErrLog.BadRequest(w, r, err.Error())
		return
	}

	member, err := h.Members.Create(ctx, models.Member{
		GroupID:            group.ID,
		Name:               h.Val.Clean(req.Name),
		Username:           req.Username,
		PasswordHash:       hash,
		MustChangePassword: true,
		Email:              req.Email,
	})
	if err == memberstore.ErrDuplicateUsername {
		h.ErrLog.Conflict(w, r, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create member failed", err, "Unable to create member.")
		return
	}

	// Seed the current month's ledger row with the base amount. A duplicate
	// means the username held a ledger row from an earlier membership; that
	// row stays authoritative.
	month := time.Now().UTC().Format("2006-01")
	if _, err := h.Contribs.CreateInitial(ctx, member.Username, month, group.BaseAmount); err != nil && err != contribstore.ErrExists {
		h.ErrLog.LogServerError(w, r, "seed initial contribution failed", err, "Member created, but seeding the ledger failed.")
		return
	}

	h.Log.Info("member created",
		zap.String("member_id", member.ID.Hex()),
		zap.String("username", member.Username),
		zap.String("month", month))
	uierrors.JSON(w, http.StatusCreated, member)
}

// List handles GET /members.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	members, err := h.Members.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list members failed", err, "Unable to load members.")
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	uierrors.JSON(w, http.StatusOK, members)
}

// Update handles PUT /members/{memberID}. A non-empty password resets the
// member's password to a new temporary one and re-arms the must-change flag.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberID"))
	if err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid member id.")
		return
	}

	var req updateRequest
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

	if err := h.Members.UpdateInfo(ctx, id, h.Val.Clean(req.Name), req.Email); err == memberstore.ErrNotFound {
		h.ErrLog.NotFound(w, r, "Member not found.")
		return
	} else if err != nil {
		h.ErrLog.LogServerError(w, r, "update member failed", err, "Unable to update member.")
		return
	}

	if req.Password != "" {
		hash, err := authutil.HashPassword(req.Password)
		if err != nil {
			h.ErrLog.BadRequest(w, r, err.Error())
			return
		}
		if err := h.Members.SetPassword(ctx, id, hash, true); err != nil {
			h.ErrLog.LogServerError(w, r, "reset member password failed", err, "Unable to reset password.")
			return
		}
		h.Log.Info("member password reset", zap.String("member_id", id.Hex()))
	}

	member, err := h.Members.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "reload member failed", err, "Unable to load member.")
		return
	}
	uierrors.JSON(w, http.StatusOK, member)
}

// Delete handles DELETE /members/{memberID}. Ledger rows for the username
// are kept; paid history outlives membership.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberID"))
	if err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid member id.")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	deleted, err := h.Members.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete member failed", err, "Unable to delete member.")
		return
	}
	if deleted == 0 {
		h.ErrLog.NotFound(w, r, "Member not found.")
		return
	}

	h.Log.Info("member deleted", zap.String("member_id", id.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
