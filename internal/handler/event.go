package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/repository"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/service"
)

// EventHandler holds the HTTP handlers for events and for joining or leaving
// them.
type EventHandler struct {
	responder
	conn   repository.Conn
	events *service.EventService
	regs   *service.RegistrationManager
}

// CreateEvent handles POST /events
// The session user becomes the event's creator.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	session := mustSession(r)

	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badBody(w, r)
		return
	}

	event, err := h.events.Create(r.Context(), h.conn, session.UserID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events
// Returns a JSON array of all events.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context(), h.conn)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Get(r.Context(), h.conn, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// UpdateEvent handles PATCH /events/{id}
// Only the creator or an admin may change an event.
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var patch model.EventPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.badBody(w, r)
		return
	}

	if err := h.events.Update(r.Context(), h.conn, mustSession(r), chi.URLParam(r, "id"), patch); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEvent handles DELETE /events/{id}
// The event's registrations are removed in the same transaction.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), h.conn, mustSession(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register handles POST /events/{id}/register
// Performs a concurrency-safe registration for the specified event.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.targetUser(w, r)
	if !ok {
		return
	}

	reg, err := h.regs.Join(r.Context(), h.conn, userID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// Unregister handles DELETE /events/{id}/register
func (h *EventHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.targetUser(w, r)
	if !ok {
		return
	}

	if err := h.regs.Leave(r.Context(), h.conn, userID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRegistrations handles GET /events/{id}/registrations
// Returns all registrations for a given event.
func (h *EventHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.regs.ListByEvent(r.Context(), h.conn, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

// targetUser resolves whose registration a join or leave acts on: the body's
// user_id when given, the session user otherwise. Only admins may act for
// someone else.
func (h *EventHandler) targetUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	session := mustSession(r)

	var req model.RegisterRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		h.badBody(w, r)
		return "", false
	}
	if req.UserID == "" || req.UserID == session.UserID {
		return session.UserID, true
	}
	if !session.IsAdmin {
		h.fail(w, r, service.ErrForbidden)
		return "", false
	}
	return req.UserID, true
}
