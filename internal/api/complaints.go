package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/mkamran/campushub/internal/lifecycle"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/roles"
	"github.com/mkamran/campushub/internal/store"
)

// ComplaintsHandler handles maintenance ticket endpoints.
type ComplaintsHandler struct {
	DB     *sql.DB
	Engine *lifecycle.Engine
	Roles  roles.Resolver

	// DeletePolicy is the policy the self-service delete endpoint applies;
	// the moderation endpoint is always admin-only.
	DeletePolicy lifecycle.ComplaintDeletePolicy
}

type complaintRequest struct {
	Campus      string `json:"campus"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Version     int64  `json:"version"`
}

// List handles GET /api/complaints. Non-admins always see only their own
// tickets; admins see everything with all=1.
func (h *ComplaintsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := identity(r.Context())
	if r.URL.Query().Get("all") == "1" {
		admin, err := h.Roles.IsAdmin(r.Context(), owner)
		if err != nil {
			rejectError(w, err)
			return
		}
		if !admin {
			jsonError(w, http.StatusForbidden, "restricted to administrators")
			return
		}
		owner = ""
	}

	complaints, err := store.ListComplaints(r.Context(), h.DB, owner)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list complaints")
		return
	}
	if complaints == nil {
		complaints = []model.Complaint{}
	}
	jsonResponse(w, http.StatusOK, complaints)
}

// Create handles POST /api/complaints.
func (h *ComplaintsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req complaintRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Engine.CreateComplaint(r.Context(), identity(r.Context()), lifecycle.ComplaintInput{
		Campus:      req.Campus,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, c)
}

// Update handles PUT /api/complaints/{id}: the owner edits ticket fields
// while the ticket is still open.
func (h *ComplaintsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	var req complaintRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Engine.UpdateComplaint(r.Context(), identity(r.Context()), id, req.Version, lifecycle.ComplaintInput{
		Campus:      req.Campus,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// SetStatus handles PUT /api/complaints/{id}/status (moderation).
func (h *ComplaintsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Engine.SetComplaintStatus(r.Context(), identity(r.Context()), id, req.Version, req.Status)
	if err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Delete handles DELETE /api/complaints/{id} (self-service view).
func (h *ComplaintsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteWithPolicy(w, r, h.DeletePolicy)
}

// ModerationDelete handles DELETE /api/admin/complaints/{id}.
func (h *ComplaintsHandler) ModerationDelete(w http.ResponseWriter, r *http.Request) {
	h.deleteWithPolicy(w, r, lifecycle.ComplaintDeleteAdminOnly)
}

func (h *ComplaintsHandler) deleteWithPolicy(w http.ResponseWriter, r *http.Request, policy lifecycle.ComplaintDeletePolicy) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	if err := h.Engine.DeleteComplaint(r.Context(), identity(r.Context()), id, policy); err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "complaint deleted"})
}
