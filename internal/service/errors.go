package service

import (
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/repository"
)

// Business errors surfaced to callers. Handlers map them to status codes.
var (
	// ErrNotFound is returned when a referenced user, event or registration is absent.
	ErrNotFound = errors.New("not found")
	// ErrEventFull is returned when an event already holds max players registrations.
	ErrEventFull = errors.New("event is fully booked")
	// ErrAlreadyRegistered is returned when the (user, event) pair is already active.
	ErrAlreadyRegistered = errors.New("user already registered for this event")
	// ErrInvalidArgument is returned for malformed or empty requests.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrForbidden is returned when the session may not act on a resource.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyExists is returned when creating a user whose email is taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrCapacityBelowCount is returned when lowering max players below the
	// number of current registrations.
	ErrCapacityBelowCount = errors.New("max players below current registrations")
	// ErrStoreFailure matches every *StoreError.
	ErrStoreFailure = errors.New("store failure")
)

// StoreError wraps a transport or transaction failure that is not a business
// rejection. errors.Is(err, ErrStoreFailure) holds for every StoreError.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreFailure }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// translate maps storage sentinels onto business errors. conflict is the
// business error a unique violation means for this operation. Errors that are
// already business errors pass through; anything else becomes a StoreError.
func translate(op string, err error, conflict error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrMissingReference):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrConflict) && conflict != nil:
		return fmt.Errorf("%s: %w", op, conflict)
	case isBusiness(err):
		return err
	default:
		return &StoreError{Op: op, Err: err}
	}
}

func isBusiness(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrEventFull, ErrAlreadyRegistered, ErrInvalidArgument,
		ErrForbidden, ErrAlreadyExists, ErrCapacityBelowCount, ErrStoreFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
