// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/i18n"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/service"
)

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be omitted.
func decodeOptionalJSON(r *http.Request, dst any) error {
	if err := decodeJSON(r, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// responder writes localized JSON errors. Every handler embeds one.
type responder struct {
	tr     *i18n.Translator
	logger *slog.Logger
}

func (rs responder) writeError(w http.ResponseWriter, r *http.Request, status int, key string, data map[string]any) {
	msg := rs.tr.T(r.Header.Get("Accept-Language"), key, data)
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func (rs responder) badBody(w http.ResponseWriter, r *http.Request) {
	rs.writeError(w, r, http.StatusBadRequest, i18n.InvalidBody, nil)
}

// fail maps a service error onto a status code and a localized message.
// Store failures are logged and answered with a generic message.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		rs.writeError(w, r, http.StatusNotFound, i18n.NotFound, nil)
	case errors.Is(err, service.ErrEventFull):
		rs.writeError(w, r, http.StatusUnprocessableEntity, i18n.EventFull, nil)
	case errors.Is(err, service.ErrAlreadyRegistered):
		rs.writeError(w, r, http.StatusConflict, i18n.AlreadyRegistered, nil)
	case errors.Is(err, service.ErrAlreadyExists):
		rs.writeError(w, r, http.StatusConflict, i18n.AlreadyExists, nil)
	case errors.Is(err, service.ErrCapacityBelowCount):
		rs.writeError(w, r, http.StatusConflict, i18n.CapacityBelowCount, nil)
	case errors.Is(err, service.ErrForbidden):
		rs.writeError(w, r, http.StatusForbidden, i18n.Forbidden, nil)
	case errors.Is(err, service.ErrInvalidArgument):
		detail, _ := strings.CutPrefix(err.Error(), service.ErrInvalidArgument.Error()+": ")
		rs.writeError(w, r, http.StatusBadRequest, i18n.InvalidArgument, map[string]any{"Detail": detail})
	default:
		rs.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.Any("error", err))
		rs.writeError(w, r, http.StatusInternalServerError, i18n.Internal, nil)
	}
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
