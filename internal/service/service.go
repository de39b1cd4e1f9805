// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
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

const maxEventPlayers = 100_000

// EventDeletionHook is run inside the event deletion transaction before the
// event row is removed. RegistrationManager implements it.
type EventDeletionHook interface {
	DeleteAllForEvent(ctx context.Context, conn repository.Conn, eventID string) (int64, error)
}

// EventService orchestrates event-related business operations.
type EventService struct {
	logger *slog.Logger
	hooks  []EventDeletionHook
	now    func() time.Time
}

// NewEventService constructs an EventService. hooks run in order on every
// event deletion.
func NewEventService(logger *slog.Logger, hooks ...EventDeletionHook) *EventService {
	return &EventService{logger: logger, hooks: hooks, now: time.Now}
}

// Create validates the request and stores a new event owned by creatorID.
func (s *EventService) Create(ctx context.Context, conn repository.Conn, creatorID string, req model.CreateEventRequest) (_ *model.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.Create", attribute.String("user.id", creatorID))
	defer func() { endSpan(span, err) }()

	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		return nil, invalid("event description is required")
	}
	if req.MaxPlayers <= 0 {
		return nil, invalid("max_players must be a positive integer")
	}
	if req.MaxPlayers > maxEventPlayers {
		return nil, invalid("max_players cannot exceed 100,000")
	}
	if req.EventDate.IsZero() {
		return nil, invalid("event_date is required")
	}
	if !isID(creatorID) {
		return nil, ErrNotFound
	}

	ok, err := conn.UserExists(ctx, creatorID)
	if err != nil {
		return nil, translate("check creator", err, nil)
	}
	if !ok {
		return nil, ErrNotFound
	}

	event := model.Event{
		ID:          uuid.NewString(),
		CreatorID:   creatorID,
		Description: req.Description,
		MaxPlayers:  req.MaxPlayers,
		EventDate:   req.EventDate.UTC(),
		CreatedAt:   s.now().UTC(),
	}
	if err := conn.CreateEvent(ctx, event); err != nil {
		return nil, translate("create event", err, nil)
	}

	s.logger.InfoContext(ctx, "event created",
		slog.String("event_id", event.ID), slog.Int("max_players", event.MaxPlayers))
	return &event, nil
}

// List returns all events with their current registration counts.
func (s *EventService) List(ctx context.Context, conn repository.Conn) ([]model.Event, error) {
	events, err := conn.ListEvents(ctx)
	if err != nil {
		return nil, translate("list events", err, nil)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// Get returns a single event by ID.
func (s *EventService) Get(ctx context.Context, conn repository.Conn, id string) (*model.Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("event id is required")
	}
	if !isID(id) {
		return nil, ErrNotFound
	}
	event, err := conn.GetEvent(ctx, id)
	if err != nil {
		return nil, translate("get event", err, nil)
	}
	return &event, nil
}

// Update applies patch to an event owned by the session user. Max players can
// not be lowered below the number of current registrations.
func (s *EventService) Update(ctx context.Context, conn repository.Conn, session model.Session, id string, patch model.EventPatch) (err error) {
	ctx, span := startSpan(ctx, "EventService.Update", attribute.String("event.id", id))
	defer func() { endSpan(span, err) }()

	if patch.Empty() {
		return invalid("patch must change at least one field")
	}
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		if desc == "" {
			return invalid("event description is required")
		}
		patch.Description = &desc
	}
	if patch.MaxPlayers != nil && (*patch.MaxPlayers <= 0 || *patch.MaxPlayers > maxEventPlayers) {
		return invalid("max_players must be between 1 and 100,000")
	}
	if patch.EventDate != nil && patch.EventDate.IsZero() {
		return invalid("event_date is required")
	}
	if !isID(id) {
		return ErrNotFound
	}

	err = repository.InTx(ctx, conn, func(tx repository.Tx) error {
		// Holding the capacity lock keeps joins out while the count is compared.
		if _, err := tx.LockEventCapacity(ctx, id); err != nil {
			return err
		}
		event, err := tx.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		if !session.CanManage(event.CreatorID) {
			return ErrForbidden
		}
		if patch.MaxPlayers != nil && *patch.MaxPlayers < event.RegisteredCount {
			return ErrCapacityBelowCount
		}
		updated, err := tx.UpdateEvent(ctx, id, patch)
		if err != nil {
			return err
		}
		if !updated {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return translate("update event", err, nil)
	}

	s.logger.InfoContext(ctx, "event updated", slog.String("event_id", id))
	return nil
}

// Delete removes an event owned by the session user. Every deletion hook runs
// in the same transaction first, so the registrations and the event disappear
// together or not at all.
func (s *EventService) Delete(ctx context.Context, conn repository.Conn, session model.Session, id string) (err error) {
	ctx, span := startSpan(ctx, "EventService.Delete", attribute.String("event.id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(id) == "" {
		return invalid("event id is required")
	}
	if !isID(id) {
		return ErrNotFound
	}

	var removed int64
	err = repository.InTx(ctx, conn, func(tx repository.Tx) error {
		if _, err := tx.LockEventCapacity(ctx, id); err != nil {
			return err
		}
		event, err := tx.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		if !session.CanManage(event.CreatorID) {
			return ErrForbidden
		}
		for _, hook := range s.hooks {
			n, err := hook.DeleteAllForEvent(ctx, tx, id)
			if err != nil {
				return err
			}
			removed += n
		}
		deleted, err := tx.DeleteEvent(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return translate("delete event", err, nil)
	}

	s.logger.InfoContext(ctx, "event deleted",
		slog.String("event_id", id), slog.Int64("registrations_removed", removed))
	return nil
}
