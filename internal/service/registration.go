package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/repository"
)

// RegistrationManager owns the user/event registration relation. It keeps the
// number of registrations of an event at or below its max players and at most
// one registration per (user, event) pair, even under concurrent joins.
//
// Every operation works on the handle it is given. Passing a repository.Tx
// makes the operation part of the caller's unit of work.
type RegistrationManager struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewRegistrationManager constructs a RegistrationManager.
func NewRegistrationManager(logger *slog.Logger) *RegistrationManager {
	return &RegistrationManager{logger: logger, now: time.Now}
}

// Join registers userID for eventID.
//
// The capacity check and the insert run in one transaction holding the
// event's capacity lock, so two joins racing for the last seat cannot both
// pass the count.
func (m *RegistrationManager) Join(ctx context.Context, conn repository.Conn, userID, eventID string) (_ *model.Registration, err error) {
	ctx, span := startSpan(ctx, "RegistrationManager.Join",
		attribute.String("user.id", userID), attribute.String("event.id", eventID))
	defer func() { endSpan(span, err) }()

	userID, eventID = strings.TrimSpace(userID), strings.TrimSpace(eventID)
	if userID == "" || eventID == "" {
		return nil, invalid("user id and event id are required")
	}
	if !isID(userID) || !isID(eventID) {
		return nil, ErrNotFound
	}

	ok, err := conn.UserExists(ctx, userID)
	if err != nil {
		return nil, translate("check user", err, nil)
	}
	if !ok {
		return nil, ErrNotFound
	}

	reg, err := repository.InTxResult(ctx, conn, func(tx repository.Tx) (*model.Registration, error) {
		maxPlayers, err := tx.LockEventCapacity(ctx, eventID)
		if err != nil {
			return nil, err
		}
		count, err := tx.CountRegistrations(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if count >= maxPlayers {
			return nil, ErrEventFull
		}
		exists, err := tx.RegistrationExists(ctx, userID, eventID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrAlreadyRegistered
		}

		reg := model.Registration{
			ID:        uuid.NewString(),
			UserID:    userID,
			EventID:   eventID,
			CreatedAt: m.now().UTC(),
		}
		if err := tx.InsertRegistration(ctx, reg); err != nil {
			return nil, err
		}
		return &reg, nil
	})
	if err != nil {
		return nil, translate("join event", err, ErrAlreadyRegistered)
	}

	m.logger.InfoContext(ctx, "registration created",
		slog.String("registration_id", reg.ID),
		slog.String("user_id", userID),
		slog.String("event_id", eventID))
	return reg, nil
}

// Leave removes the registration of userID for eventID.
func (m *RegistrationManager) Leave(ctx context.Context, conn repository.Conn, userID, eventID string) (err error) {
	ctx, span := startSpan(ctx, "RegistrationManager.Leave",
		attribute.String("user.id", userID), attribute.String("event.id", eventID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(userID) == "" || strings.TrimSpace(eventID) == "" {
		return invalid("user id and event id are required")
	}
	if !isID(userID) || !isID(eventID) {
		return ErrNotFound
	}

	deleted, err := conn.DeleteRegistration(ctx, userID, eventID)
	if err != nil {
		return translate("leave event", err, nil)
	}
	if !deleted {
		return ErrNotFound
	}

	m.logger.InfoContext(ctx, "registration removed",
		slog.String("user_id", userID), slog.String("event_id", eventID))
	return nil
}

// RemoveByID deletes a registration by its id.
func (m *RegistrationManager) RemoveByID(ctx context.Context, conn repository.Conn, id string) (err error) {
	ctx, span := startSpan(ctx, "RegistrationManager.RemoveByID", attribute.String("registration.id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(id) == "" {
		return invalid("registration id is required")
	}
	if !isID(id) {
		return ErrNotFound
	}

	deleted, err := conn.DeleteRegistrationByID(ctx, id)
	if err != nil {
		return translate("remove registration", err, nil)
	}
	if !deleted {
		return ErrNotFound
	}

	m.logger.InfoContext(ctx, "registration removed", slog.String("registration_id", id))
	return nil
}

// Get returns a registration by its id.
func (m *RegistrationManager) Get(ctx context.Context, conn repository.Conn, id string) (_ *model.Registration, err error) {
	ctx, span := startSpan(ctx, "RegistrationManager.Get", attribute.String("registration.id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(id) == "" {
		return nil, invalid("registration id is required")
	}
	if !isID(id) {
		return nil, ErrNotFound
	}

	reg, err := conn.GetRegistration(ctx, id)
	if err != nil {
		return nil, translate("get registration", err, nil)
	}
	return &reg, nil
}

// ListByUser returns the ids of the events userID is registered for.
// The result is empty, never nil, when the user has no registrations.
func (m *RegistrationManager) ListByUser(ctx context.Context, conn repository.Conn, userID string) (_ []string, err error) {
	ctx, span := startSpan(ctx, "RegistrationManager.ListByUser", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(userID) == "" {
		return nil, invalid("user id is required")
	}
	if !isID(userID) {
		return nil, ErrNotFound
	}

	ok, err := conn.UserExists(ctx, userID)
	if err != nil {
		return nil, translate("check user", err, nil)
	}
	if !ok {
		return nil, ErrNotFound
	}

	ids, err := conn.ListEventIDsByUser(ctx, userID)
	if err != nil {
		return nil, translate("list user events", err, nil)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// ListByEvent returns the registrations of eventID, oldest first.
func (m *RegistrationManager) ListByEvent(ctx context.Context, conn repository.Conn, eventID string) (_ []model.Registration, err error) {
	ctx, span := startSpan(ctx, "RegistrationManager.ListByEvent", attribute.String("event.id", eventID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(eventID) == "" {
		return nil, invalid("event id is required")
	}
	if !isID(eventID) {
		return nil, ErrNotFound
	}

	ok, err := conn.EventExists(ctx, eventID)
	if err != nil {
		return nil, translate("check event", err, nil)
	}
	if !ok {
		return nil, ErrNotFound
	}

	regs, err := conn.ListRegistrationsByEvent(ctx, eventID)
	if err != nil {
		return nil, translate("list event registrations", err, nil)
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	return regs, nil
}

// ListAll returns every registration with the user's names and the event's
// description.
func (m *RegistrationManager) ListAll(ctx context.Context, conn repository.Conn) (_ []model.RegistrationDetail, err error) {
	ctx, span := startSpan(ctx, "RegistrationManager.ListAll")
	defer func() { endSpan(span, err) }()

	details, err := conn.ListRegistrationDetails(ctx)
	if err != nil {
		return nil, translate("list registrations", err, nil)
	}
	if details == nil {
		details = []model.RegistrationDetail{}
	}
	return details, nil
}

// Exists reports whether userID is registered for eventID. Unknown or
// malformed ids are reported as not registered.
func (m *RegistrationManager) Exists(ctx context.Context, conn repository.Conn, userID, eventID string) (_ bool, err error) {
	ctx, span := startSpan(ctx, "RegistrationManager.Exists",
		attribute.String("user.id", userID), attribute.String("event.id", eventID))
	defer func() { endSpan(span, err) }()

	if !isID(userID) || !isID(eventID) {
		return false, nil
	}
	exists, err := conn.RegistrationExists(ctx, userID, eventID)
	if err != nil {
		return false, translate("check registration", err, nil)
	}
	return exists, nil
}

// Update changes the user and/or event of a registration.
//
// Capacity of the new event is not re-checked: an admin moving a
// registration may overfill the target event.
func (m *RegistrationManager) Update(ctx context.Context, conn repository.Conn, id string, patch model.RegistrationPatch) (err error) {
	ctx, span := startSpan(ctx, "RegistrationManager.Update", attribute.String("registration.id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(id) == "" {
		return invalid("registration id is required")
	}
	if !patch.Valid() {
		return invalid("patch must set user_id or event_id to a non-empty id")
	}
	if !isID(id) {
		return ErrNotFound
	}

	if patch.UserID != nil {
		if err := m.requireRow(ctx, *patch.UserID, conn.UserExists); err != nil {
			return err
		}
	}
	if patch.EventID != nil {
		if err := m.requireRow(ctx, *patch.EventID, conn.EventExists); err != nil {
			return err
		}
	}

	updated, err := conn.UpdateRegistration(ctx, id, patch)
	if err != nil {
		return translate("update registration", err, ErrAlreadyRegistered)
	}
	if !updated {
		return ErrNotFound
	}

	m.logger.InfoContext(ctx, "registration updated", slog.String("registration_id", id))
	return nil
}

// DeleteAllForEvent removes every registration of eventID and returns how many
// were removed. It is the cascade hook run before an event is deleted and
// works on the caller's handle so both deletions commit together.
func (m *RegistrationManager) DeleteAllForEvent(ctx context.Context, conn repository.Conn, eventID string) (_ int64, err error) {
	ctx, span := startSpan(ctx, "RegistrationManager.DeleteAllForEvent", attribute.String("event.id", eventID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(eventID) == "" {
		return 0, invalid("event id is required")
	}
	if !isID(eventID) {
		return 0, nil
	}

	n, err := conn.DeleteRegistrationsForEvent(ctx, eventID)
	if err != nil {
		return 0, translate("delete event registrations", err, nil)
	}
	m.logger.DebugContext(ctx, "event registrations removed",
		slog.String("event_id", eventID), slog.Int64("count", n))
	return n, nil
}

func (m *RegistrationManager) requireRow(ctx context.Context, id string, exists func(context.Context, string) (bool, error)) error {
	if !isID(id) {
		return ErrNotFound
	}
	ok, err := exists(ctx, id)
	if err != nil {
		return translate("check reference", err, nil)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// isID reports whether id is a well-formed identifier. Malformed ids can never
// match a row, and the Postgres uuid columns reject them outright.
func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
