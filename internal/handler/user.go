package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/repository"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/service"
)

// UserHandler holds the HTTP handlers for users.
type UserHandler struct {
	responder
	conn  repository.Conn
	users *service.UserService
	regs  *service.RegistrationManager
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badBody(w, r)
		return
	}

	user, err := h.users.Create(r.Context(), h.conn, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), h.conn, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListUserEvents handles GET /users/{id}/events
// Returns the ids of the events the user is registered for.
func (h *UserHandler) ListUserEvents(w http.ResponseWriter, r *http.Request) {
	ids, err := h.regs.ListByUser(r.Context(), h.conn, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}
