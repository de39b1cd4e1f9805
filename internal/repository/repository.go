// Package repository implements all database queries for the registration
// system behind a store handle that can be pool-backed or transaction-backed.
// Queries are written by hand (no ORM) for each supported driver.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint.
var ErrConflict = errors.New("conflicts with an existing row")

// ErrMissingReference is returned when a write references a row that does not exist.
var ErrMissingReference = errors.New("references a missing row")

// RegistrationQueries are the statements the registration manager issues.
type RegistrationQueries interface {
	// LockEventCapacity returns the event's max players and holds a lock that
	// serialises other capacity checks on the same event until the enclosing
	// transaction ends. Must be called inside a transaction.
	LockEventCapacity(ctx context.Context, eventID string) (int, error)
	CountRegistrations(ctx context.Context, eventID string) (int, error)
	RegistrationExists(ctx context.Context, userID, eventID string) (bool, error)
	InsertRegistration(ctx context.Context, reg model.Registration) error
	GetRegistration(ctx context.Context, id string) (model.Registration, error)
	DeleteRegistration(ctx context.Context, userID, eventID string) (bool, error)
	DeleteRegistrationByID(ctx context.Context, id string) (bool, error)
	DeleteRegistrationsForEvent(ctx context.Context, eventID string) (int64, error)
	ListEventIDsByUser(ctx context.Context, userID string) ([]string, error)
	ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
	ListRegistrationDetails(ctx context.Context) ([]model.RegistrationDetail, error)
	UpdateRegistration(ctx context.Context, id string, patch model.RegistrationPatch) (bool, error)
}

// EventQueries cover the event rows the registration flow depends on.
type EventQueries interface {
	CreateEvent(ctx context.Context, event model.Event) error
	GetEvent(ctx context.Context, id string) (model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	EventExists(ctx context.Context, id string) (bool, error)
	UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (bool, error)
	DeleteEvent(ctx context.Context, id string) (bool, error)
}

// UserQueries cover the user rows the registration flow depends on.
type UserQueries interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, id string) (model.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

// Conn is an explicit store handle. Callers pass it into every service
// operation; it is either pool-backed or bound to an open transaction.
type Conn interface {
	RegistrationQueries
	EventQueries
	UserQueries

	// Begin opens a unit of work. On a transaction-bound handle it opens a
	// nested one (savepoint) that commits into its parent.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a Conn bound to an open unit of work.
type Tx interface {
	Conn
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// InTx runs fn inside a unit of work opened on conn. The work is committed
// when fn returns nil and rolled back otherwise.
func InTx(ctx context.Context, conn Conn, fn func(tx Tx) error) (err error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			// Roll back even when ctx is already cancelled so locks are released.
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// InTxResult runs fn through InTx and returns its result.
func InTxResult[T any](ctx context.Context, conn Conn, fn func(tx Tx) (T, error)) (T, error) {
	var result T
	err := InTx(ctx, conn, func(tx Tx) error {
		var fnErr error
		result, fnErr = fn(tx)
		return fnErr
	})
	return result, err
}

// assignment is one column = value pair of an UPDATE. Columns always come
// from the fixed lists below, never from request input.
type assignment struct {
	column string
	value  any
}

func registrationAssignments(p model.RegistrationPatch) []assignment {
	var out []assignment
	if p.UserID != nil {
		out = append(out, assignment{column: "user_id", value: *p.UserID})
	}
	if p.EventID != nil {
		out = append(out, assignment{column: "event_id", value: *p.EventID})
	}
	return out
}

func eventAssignments(p model.EventPatch, encodeTime func(time.Time) any) []assignment {
	var out []assignment
	if p.Description != nil {
		out = append(out, assignment{column: "description", value: *p.Description})
	}
	if p.MaxPlayers != nil {
		out = append(out, assignment{column: "max_players", value: *p.MaxPlayers})
	}
	if p.EventDate != nil {
		out = append(out, assignment{column: "event_date", value: encodeTime(*p.EventDate)})
	}
	return out
}

// updateStatement compiles an UPDATE ... WHERE id = <last placeholder>.
func updateStatement(table string, sets []assignment, id string, placeholder func(n int) string) (string, []any) {
	clauses := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets)+1)
	for i, s := range sets {
		clauses = append(clauses, s.column+" = "+placeholder(i+1))
		args = append(args, s.value)
	}
	args = append(args, id)
	query := "UPDATE " + table + " SET " + strings.Join(clauses, ", ") +
		" WHERE id = " + placeholder(len(args))
	return query, args
}
