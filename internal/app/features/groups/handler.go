// internal/app/features/groups/handler.go
package groups

import (
	"encoding/json"
	"net/http"

	uierrors "github.com/anisham/contribhub/internal/app/features/errors"
	groupstore "github.com/anisham/contribhub/internal/app/store/groups"
	memberstore "github.com/anisham/contribhub/internal/app/store/members"
	"github.com/anisham/contribhub/internal/app/system/inputval"
	"github.com/anisham/contribhub/internal/app/system/timeouts"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler manages the single contribution group.
type Handler struct {
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Groups  *groupstore.Store
	Members *memberstore.Store
	Val     *inputval.Validator
}

func NewHandler(groups *groupstore.Store, members *memberstore.Store, val *inputval.Validator, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:     logger,
		ErrLog:  errLog,
		Groups:  groups,
		Members: members,
		Val:     val,
	}
}

type groupRequest struct {
	Name                 string            `json:"name" validate:"required,max=100"`
	BaseAmount           int64             `json:"baseAmount" validate:"required,gt=0"`
	FineRules            []models.FineRule `json:"fineRules"`
	PreviousContribution int64             `json:"previousContribution" validate:"gte=0"`
}

// Active handles GET /groups/active. Any signed-in user may read the group;
// dashboards and the member contribution view both need it.
func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	g, err := h.Groups.Active(ctx)
	if err == groupstore.ErrNoGroup {
		h.ErrLog.NotFound(w, r, "No group has been created yet.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load active group failed", err, "Unable to load group.")
		return
	}
	uierrors.JSON(w, http.StatusOK, g)
}

// Create handles POST /groups (admin only).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
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

	g, err := h.Groups.Create(ctx, models.Group{
		Name:                 h.Val.Clean(req.Name),
		BaseAmount:           req.BaseAmount,
		FineRules:            req.FineRules,
		PreviousContribution: req.PreviousContribution,
	})
	if err == groupstore.ErrDuplicateGroup {
		h.ErrLog.Conflict(w, r, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create group failed", err, "Unable to create group.")
		return
	}

	h.Log.Info("group created",
		zap.String("group_id", g.ID.Hex()),
		zap.String("name", g.Name),
		zap.Int64("base_amount", g.BaseAmount))
	uierrors.JSON(w, http.StatusCreated, g)
}

// Update handles PUT /groups/{groupID} (admin only).
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid group id.")
		return
	}

	var req groupRequest
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

	err = h.Groups.Update(ctx, id, h.Val.Clean(req.Name), req.BaseAmount, req.FineRules, req.PreviousContribution)
	if err == groupstore.ErrNoGroup {
		h.ErrLog.NotFound(w, r, "Group not found.")
		return
	}
	if err == groupstore.ErrDuplicateGroup {
		h.ErrLog.Conflict(w, r, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update group failed", err, "Unable to update group.")
		return
	}

	g, err := h.Groups.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "reload group failed", err, "Unable to load group.")
		return
	}
	uierrors.JSON(w, http.StatusOK, g)
}

// Delete handles DELETE /groups/{groupID} (admin only). Members of the
// group are removed with it; contribution history stays.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		h.ErrLog.BadRequest(w, r, "Invalid group id.")
		return
	}

	ctx, cancel := timeouts.WithLong(r.Context())
	defer cancel()

	deleted, err := h.Groups.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete group failed", err, "Unable to delete group.")
		return
	}
	if deleted == 0 {
		h.ErrLog.NotFound(w, r, "Group not found.")
		return
	}

	removed, err := h.Members.DeleteByGroup(ctx, id)
	if err != nil {
		// Group is gone; report the partial cascade rather than pretending
		// it did not happen.
		h.ErrLog.LogServerError(w, r, "member cascade delete failed", err, "Group deleted, but removing its members failed.")
		return
	}

	h.Log.Info("group deleted",
		zap.String("group_id", id.Hex()),
		zap.Int64("members_removed", removed))
	w.WriteHeader(http.StatusNoContent)
}
