package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/mkamran/campushub/internal/lifecycle"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/store"
)

// VolunteersHandler handles event-volunteer registration endpoints.
type VolunteersHandler struct {
	DB     *sql.DB
	Engine *lifecycle.Engine
}

// List handles GET /api/volunteers. mine=1 scopes to own registrations.
func (h *VolunteersHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := ""
	if r.URL.Query().Get("mine") == "1" {
		owner = identity(r.Context())
	}

	volunteers, err := store.ListVolunteers(r.Context(), h.DB, owner)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list volunteers")
		return
	}
	if volunteers == nil {
		volunteers = []model.Volunteer{}
	}
	jsonResponse(w, http.StatusOK, volunteers)
}

// Create handles POST /api/volunteers. Accepts JSON, or multipart form data
// when a photo is attached.
func (h *VolunteersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.VolunteerInput
	var image *lifecycle.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
			return
		}
		in = lifecycle.VolunteerInput{
			Name:     r.FormValue("name"),
			RollNo:   r.FormValue("roll_no"),
			Phone:    r.FormValue("phone"),
			Event:    r.FormValue("event"),
			Duration: r.FormValue("duration"),
		}
		var err error
		image, err = parseOptionalImage(r)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		var req struct {
			Name     string `json:"name"`
			RollNo   string `json:"roll_no"`
			Phone    string `json:"phone"`
			Event    string `json:"event"`
			Duration string `json:"duration"`
		}
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		in = lifecycle.VolunteerInput(req)
	}

	v, err := h.Engine.CreateVolunteer(r.Context(), identity(r.Context()), in, image)
	if err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, v)
}

// SetStatus handles PUT /api/volunteers/{id}/status (moderation).
func (h *VolunteersHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid volunteer id")
		return
	}

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v, err := h.Engine.SetVolunteerStatus(r.Context(), identity(r.Context()), id, req.Version, req.Status)
	if err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, v)
}

// Delete handles DELETE /api/volunteers/{id}.
func (h *VolunteersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid volunteer id")
		return
	}

	if err := h.Engine.DeleteVolunteer(r.Context(), identity(r.Context()), id); err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "volunteer deleted"})
}
