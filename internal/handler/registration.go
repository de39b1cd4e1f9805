package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/i18n"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/repository"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/service"
)

// RegistrationHandler exposes registrations by id and the admin listing.
type RegistrationHandler struct {
	responder
	conn repository.Conn
	regs *service.RegistrationManager
}

// Exists handles GET /registrations/exists?user_id=&event_id=
func (h *RegistrationHandler) Exists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, eventID := q.Get("user_id"), q.Get("event_id")
	if userID == "" || eventID == "" {
		h.writeError(w, r, http.StatusBadRequest, i18n.InvalidArgument,
			map[string]any{"Detail": "user_id and event_id are required"})
		return
	}

	exists, err := h.regs.Exists(r.Context(), h.conn, userID, eventID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ExistsResponse{Exists: exists})
}

// ListAll handles GET /registrations (admin)
// Each registration carries the user's names and the event's description.
func (h *RegistrationHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	details, err := h.regs.ListAll(r.Context(), h.conn)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Get handles GET /registrations/{id}
func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	reg, err := h.regs.Get(r.Context(), h.conn, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// Update handles PATCH /registrations/{id} (admin)
func (h *RegistrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.RegistrationPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.badBody(w, r)
		return
	}

	if err := h.regs.Update(r.Context(), h.conn, chi.URLParam(r, "id"), patch); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /registrations/{id} (admin)
func (h *RegistrationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.regs.RemoveByID(r.Context(), h.conn, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
