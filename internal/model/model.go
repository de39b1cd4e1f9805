// Package model defines the core domain types for the event registration system.
package model

import (
	"strings"
	"time"
)

// Event represents a gaming event created by an organizer.
type Event struct {
	ID              string    `json:"id"`
	CreatorID       string    `json:"creator_id"`
	Description     string    `json:"description"`
	MaxPlayers      int       `json:"max_players"`
	EventDate       time.Time `json:"event_date"`
	RegisteredCount int       `json:"registered_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// Remaining returns the number of available seats.
func (e *Event) Remaining() int {
	return e.MaxPlayers - e.RegisteredCount
}

// IsFull returns true when no seats remain.
func (e *Event) IsFull() bool {
	return e.RegisteredCount >= e.MaxPlayers
}

// User is the minimal view of an account the registration flow needs.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Registration links one user to one event.
type Registration struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RegistrationDetail is a registration with the display fields used by
// administrative listings.
type RegistrationDetail struct {
	Registration
	FirstName        string `json:"first_name"`
	Surname          string `json:"surname"`
	EventDescription string `json:"event_description"`
}

// RegistrationPatch carries the foreign keys to change on a registration.
// A nil field is left untouched.
type RegistrationPatch struct {
	UserID  *string `json:"user_id,omitempty"`
	EventID *string `json:"event_id,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p RegistrationPatch) Empty() bool {
	return p.UserID == nil && p.EventID == nil
}

// Valid reports whether the patch changes at least one field and every set
// field holds a non-blank identifier.
func (p RegistrationPatch) Valid() bool {
	if p.Empty() {
		return false
	}
	if p.UserID != nil && strings.TrimSpace(*p.UserID) == "" {
		return false
	}
	if p.EventID != nil && strings.TrimSpace(*p.EventID) == "" {
		return false
	}
	return true
}

// EventPatch carries the event attributes an owner may change.
type EventPatch struct {
	Description *string    `json:"description,omitempty"`
	MaxPlayers  *int       `json:"max_players,omitempty"`
	EventDate   *time.Time `json:"event_date,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Description == nil && p.MaxPlayers == nil && p.EventDate == nil
}

// Session identifies the caller of an authenticated request.
type Session struct {
	UserID  string
	IsAdmin bool
}

// CanManage reports whether the session may act on a resource owned by ownerID.
func (s Session) CanManage(ownerID string) bool {
	return s.IsAdmin || (s.UserID != "" && s.UserID == ownerID)
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Description string    `json:"description"`
	MaxPlayers  int       `json:"max_players"`
	EventDate   time.Time `json:"event_date"`
}

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
}

// RegisterRequest is the payload for joining or leaving an event. UserID is
// optional and defaults to the authenticated user.
type RegisterRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// ExistsResponse answers a registration existence query.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BookingResult summarises the outcome of a single registration attempt.
// Used by the concurrent join tests.
type BookingResult struct {
	UserID  string
	Success bool
	Error   error
}
