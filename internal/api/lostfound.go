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

// LostFoundHandler handles lost/found report endpoints.
type LostFoundHandler struct {
	DB     *sql.DB
	Engine *lifecycle.Engine
}

type setStatusRequest struct {
	Status  string `json:"status"`
	Version int64  `json:"version"`
}

// List handles GET /api/lostfound. Filters: type, status, q (title search),
// mine=1 (own reports only).
func (h *LostFoundHandler) List(w http.ResponseWriter, r *http.Request) {
	f := store.LostFoundFilter{
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("q"),
	}
	if r.URL.Query().Get("mine") == "1" {
		f.Owner = identity(r.Context())
	}

	items, err := store.ListLostFoundItems(r.Context(), h.DB, f)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.LostFoundItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/lostfound/{id}.
func (h *LostFoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetLostFoundItem(r.Context(), h.DB, id)
	if err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/lostfound. Accepts JSON, or multipart form data
// when a photo is attached; the photo goes through the imaging pipeline and
// object storage before the record is written.
func (h *LostFoundHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.LostFoundInput
	var image *lifecycle.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
			return
		}
		in = lifecycle.LostFoundInput{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Type:        r.FormValue("type"),
			Contact:     r.FormValue("contact"),
		}
		var err error
		image, err = parseOptionalImage(r)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Type        string `json:"type"`
			Contact     string `json:"contact"`
		}
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		in = lifecycle.LostFoundInput(req)
	}

	item, err := h.Engine.CreateLostFoundItem(r.Context(), identity(r.Context()), in, image)
	if err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// SetStatus handles PUT /api/lostfound/{id}/status.
func (h *LostFoundHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Engine.SetLostFoundStatus(r.Context(), identity(r.Context()), id, req.Version, req.Status)
	if err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/lostfound/{id}.
func (h *LostFoundHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Engine.DeleteLostFoundItem(r.Context(), identity(r.Context()), id); err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
