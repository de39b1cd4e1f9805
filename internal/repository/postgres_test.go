package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/database"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
)

// setupPostgres connects to TEST_DATABASE_URL and starts from empty tables.
// Tests using it are skipped when the variable is not set.
func setupPostgres(t *testing.T) *Postgres {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	if err := database.MigratePostgres(url, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("MigratePostgres() error = %v", err)
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("pgxpool.New() error = %v", err)
	}
	t.Cleanup(pool.Close)
	if _, err := pool.Exec(ctx, `TRUNCATE registrations, events, users`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewPostgres(pool)
}

func TestPostgres_RegistrationLifecycle(t *testing.T) {
	ctx := context.Background()
	p := setupPostgres(t)
	alice := seedUser(t, p, "alice")
	event := seedEvent(t, p, alice, 2)

	reg := newRegistration(alice.ID, event.ID)
	if err := p.InsertRegistration(ctx, reg); err != nil {
		t.Fatalf("InsertRegistration() error = %v", err)
	}
	if err := p.InsertRegistration(ctx, newRegistration(alice.ID, event.ID)); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate insert error = %v, want ErrConflict", err)
	}

	ev, err := p.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if ev.RegisteredCount != 1 {
		t.Errorf("RegisteredCount = %d, want 1", ev.RegisteredCount)
	}

	details, err := p.ListRegistrationDetails(ctx)
	if err != nil || len(details) != 1 || details[0].FirstName != "alice" {
		t.Errorf("ListRegistrationDetails() = %+v, %v", details, err)
	}

	ok, err := p.DeleteRegistrationByID(ctx, reg.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteRegistrationByID() = %v, %v", ok, err)
	}
	if _, err := p.GetRegistration(ctx, reg.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRegistration() error = %v, want ErrNotFound", err)
	}
}

func TestPostgres_LockEventCapacityBlocksSecondLocker(t *testing.T) {
	ctx := context.Background()
	p := setupPostgres(t)
	alice := seedUser(t, p, "alice")
	event := seedEvent(t, p, alice, 3)

	first, err := p.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer first.Rollback(ctx)
	if _, err := first.LockEventCapacity(ctx, event.ID); err != nil {
		t.Fatalf("LockEventCapacity() error = %v", err)
	}

	second, err := p.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer second.Rollback(ctx)

	lockCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	if _, err := second.LockEventCapacity(lockCtx, event.ID); err == nil {
		t.Fatal("second LockEventCapacity() acquired a held lock")
	}
}

func TestPostgres_UpdateEventPatch(t *testing.T) {
	ctx := context.Background()
	p := setupPostgres(t)
	alice := seedUser(t, p, "alice")
	event := seedEvent(t, p, alice, 3)

	maxPlayers := 6
	desc := "Updated"
	ok, err := p.UpdateEvent(ctx, event.ID, model.EventPatch{MaxPlayers: &maxPlayers, Description: &desc})
	if err != nil || !ok {
		t.Fatalf("UpdateEvent() = %v, %v", ok, err)
	}
	got, err := p.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if got.MaxPlayers != 6 || got.Description != "Updated" {
		t.Errorf("GetEvent() = %+v", got)
	}

	ok, err = p.UpdateEvent(ctx, uuid.NewString(), model.EventPatch{MaxPlayers: &maxPlayers})
	if err != nil || ok {
		t.Errorf("UpdateEvent(missing) = %v, %v; want false, nil", ok, err)
	}
}
