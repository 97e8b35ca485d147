package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/mkamran/campushub/internal/lifecycle"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/store"
)

// AnnouncementsHandler handles broadcast notice endpoints.
type AnnouncementsHandler struct {
	DB     *sql.DB
	Engine *lifecycle.Engine
}

type announcementRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// List handles GET /api/announcements.
func (h *AnnouncementsHandler) List(w http.ResponseWriter, r *http.Request) {
	notices, err := store.ListAnnouncements(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list announcements")
		return
	}
	if notices == nil {
		notices = []model.Announcement{}
	}
	jsonResponse(w, http.StatusOK, notices)
}

// Latest handles GET /api/announcements/latest, used by the banner.
func (h *AnnouncementsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	notice, err := store.LatestAnnouncement(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get latest announcement")
		return
	}
	if notice == nil {
		jsonError(w, http.StatusNotFound, "no announcements")
		return
	}
	jsonResponse(w, http.StatusOK, notice)
}

// Create handles POST /api/admin/announcements.
func (h *AnnouncementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	notice, err := h.Engine.PostAnnouncement(r.Context(), identity(r.Context()), req.Title, req.Message)
	if err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, notice)
}

// Delete handles DELETE /api/admin/announcements/{id}.
func (h *AnnouncementsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid announcement id")
		return
	}

	if err := h.Engine.DeleteAnnouncement(r.Context(), identity(r.Context()), id); err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "announcement deleted"})
}
