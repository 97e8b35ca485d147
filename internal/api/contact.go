package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/mkamran/campushub/internal/lifecycle"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/store"
)

// ContactHandler handles the public contact form and its moderation side.
type ContactHandler struct {
	DB     *sql.DB
	Engine *lifecycle.Engine
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Create handles POST /api/contact. The form is public.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.Engine.SubmitContactMessage(r.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, msg)
}

// List handles GET /api/admin/contact-messages.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := store.ListContactMessages(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list contact messages")
		return
	}
	if messages == nil {
		messages = []model.ContactMessage{}
	}
	jsonResponse(w, http.StatusOK, messages)
}

// Delete handles DELETE /api/admin/contact-messages/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	if err := h.Engine.DeleteContactMessage(r.Context(), identity(r.Context()), id); err != nil {
		rejectError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "contact message deleted"})
}
