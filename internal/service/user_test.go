package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
)

func TestUserCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name string
		req  model.CreateUserRequest
		want error
	}{
		{"missing first name", model.CreateUserRequest{Surname: "Doe", Email: "jane@example.com"}, ErrInvalidArgument},
		{"missing surname", model.CreateUserRequest{FirstName: "Jane", Email: "jane@example.com"}, ErrInvalidArgument},
		{"missing email", model.CreateUserRequest{FirstName: "Jane", Surname: "Doe"}, ErrInvalidArgument},
		{"bad email", model.CreateUserRequest{FirstName: "Jane", Surname: "Doe", Email: "jane"}, ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.users.Create(ctx, f.conn, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}

	user, err := f.users.Create(ctx, f.conn, model.CreateUserRequest{FirstName: " Jane ", Surname: "Doe", Email: " Jane@Example.com "})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.Email != "jane@example.com" || user.FirstName != "Jane" || user.IsAdmin {
		t.Errorf("Create() = %+v", user)
	}

	_, err = f.users.Create(ctx, f.conn, model.CreateUserRequest{FirstName: "Other", Surname: "Doe", Email: "JANE@example.com"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate Create() error = %v, want ErrAlreadyExists", err)
	}

	got, err := f.users.Get(ctx, f.conn, user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != user.ID || got.Surname != "Doe" {
		t.Errorf("Get() = %+v", got)
	}
	if _, err := f.users.Get(ctx, f.conn, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
	if _, err := f.users.Get(ctx, f.conn, "bogus"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(malformed) error = %v, want ErrNotFound", err)
	}
}
