package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/repository"
)

func intPtr(n int) *int { return &n }

func TestEventCreate_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	when := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		creator string
		req     model.CreateEventRequest
		want    error
	}{
		{"blank description", alice.ID, model.CreateEventRequest{Description: "  ", MaxPlayers: 4, EventDate: when}, ErrInvalidArgument},
		{"zero players", alice.ID, model.CreateEventRequest{Description: "LAN", MaxPlayers: 0, EventDate: when}, ErrInvalidArgument},
		{"too many players", alice.ID, model.CreateEventRequest{Description: "LAN", MaxPlayers: 100_001, EventDate: when}, ErrInvalidArgument},
		{"missing date", alice.ID, model.CreateEventRequest{Description: "LAN", MaxPlayers: 4}, ErrInvalidArgument},
		{"unknown creator", uuid.NewString(), model.CreateEventRequest{Description: "LAN", MaxPlayers: 4, EventDate: when}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.events.Create(ctx, f.conn, tt.creator, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}

	event, err := f.events.Create(ctx, f.conn, alice.ID, model.CreateEventRequest{Description: "  LAN  ", MaxPlayers: 4, EventDate: when})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := f.events.Get(ctx, f.conn, event.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Description != "LAN" || got.CreatorID != alice.ID || got.RegisteredCount != 0 {
		t.Errorf("Get() = %+v", got)
	}
}

func TestEventUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	event := f.event(t, alice, 4)

	for _, u := range []*model.User{bob, carol} {
		if _, err := f.regs.Join(ctx, f.conn, u.ID, event.ID); err != nil {
			t.Fatalf("Join() error = %v", err)
		}
	}

	owner := model.Session{UserID: alice.ID}
	tests := []struct {
		name    string
		session model.Session
		id      string
		patch   model.EventPatch
		want    error
	}{
		{"empty patch", owner, event.ID, model.EventPatch{}, ErrInvalidArgument},
		{"not the owner", model.Session{UserID: bob.ID}, event.ID, model.EventPatch{MaxPlayers: intPtr(5)}, ErrForbidden},
		{"below registrations", owner, event.ID, model.EventPatch{MaxPlayers: intPtr(1)}, ErrCapacityBelowCount},
		{"unknown event", owner, uuid.NewString(), model.EventPatch{MaxPlayers: intPtr(5)}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.events.Update(ctx, f.conn, tt.session, tt.id, tt.patch); !errors.Is(err, tt.want) {
				t.Errorf("Update() error = %v, want %v", err, tt.want)
			}
		})
	}

	if err := f.events.Update(ctx, f.conn, owner, event.ID, model.EventPatch{MaxPlayers: intPtr(2)}); err != nil {
		t.Fatalf("Update(to count) error = %v", err)
	}
	admin := model.Session{UserID: bob.ID, IsAdmin: true}
	if err := f.events.Update(ctx, f.conn, admin, event.ID, model.EventPatch{Description: strPtr("Finals")}); err != nil {
		t.Fatalf("Update(admin) error = %v", err)
	}

	got, err := f.events.Get(ctx, f.conn, event.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.MaxPlayers != 2 || got.Description != "Finals" || !got.IsFull() {
		t.Errorf("Get() = %+v", got)
	}
}

func TestEventDelete_CascadesRegistrations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	event := f.event(t, alice, 4)

	reg, err := f.regs.Join(ctx, f.conn, bob.ID, event.ID)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	if err := f.events.Delete(ctx, f.conn, model.Session{UserID: bob.ID}, event.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Delete(non-owner) error = %v, want ErrForbidden", err)
	}
	if err := f.events.Delete(ctx, f.conn, model.Session{UserID: alice.ID}, event.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := f.events.Get(ctx, f.conn, event.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := f.regs.RemoveByID(ctx, f.conn, reg.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveByID() after cascade error = %v, want ErrNotFound", err)
	}
	ids, err := f.regs.ListByUser(ctx, f.conn, bob.ID)
	if err != nil || len(ids) != 0 {
		t.Errorf("ListByUser() after cascade = %v, %v", ids, err)
	}
	if err := f.events.Delete(ctx, f.conn, model.Session{IsAdmin: true}, event.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

type failingHook struct{ err error }

func (h failingHook) DeleteAllForEvent(context.Context, repository.Conn, string) (int64, error) {
	return 0, h.err
}

func TestEventDelete_FailingHookKeepsEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	event := f.event(t, alice, 4)
	if _, err := f.regs.Join(ctx, f.conn, alice.ID, event.ID); err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	// The real cascade runs first, then a hook fails.
	hookErr := &StoreError{Op: "notify", Err: errors.New("unreachable")}
	events := NewEventService(discardLogger, f.regs, failingHook{err: hookErr})

	err := events.Delete(ctx, f.conn, model.Session{UserID: alice.ID}, event.ID)
	if !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("Delete() error = %v, want ErrStoreFailure", err)
	}
	if _, err := f.events.Get(ctx, f.conn, event.ID); err != nil {
		t.Errorf("event gone after failed delete: %v", err)
	}
	if n := f.count(t, event.ID); n != 1 {
		t.Errorf("count = %d after failed delete, want 1", n)
	}
}

func TestEventList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	events, err := f.events.List(ctx, f.conn)
	if err != nil || events == nil || len(events) != 0 {
		t.Fatalf("List() on empty store = %#v, %v", events, err)
	}

	alice := f.user(t, "alice")
	event := f.event(t, alice, 3)
	if _, err := f.regs.Join(ctx, f.conn, alice.ID, event.ID); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	events, err = f.events.List(ctx, f.conn)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 1 || events[0].RegisteredCount != 1 || events[0].Remaining() != 2 {
		t.Errorf("List() = %+v", events)
	}
}
