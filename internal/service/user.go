package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/repository"
)

// UserService creates and reads the accounts that register for events.
type UserService struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(logger *slog.Logger) *UserService {
	return &UserService{logger: logger, now: time.Now}
}

// Create validates the request and stores a new user.
func (s *UserService) Create(ctx context.Context, conn repository.Conn, req model.CreateUserRequest) (*model.User, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.Surname = strings.TrimSpace(req.Surname)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FirstName == "" || req.Surname == "" {
		return nil, invalid("first_name and surname are required")
	}
	if req.Email == "" {
		return nil, invalid("email is required")
	}
	if !isValidEmail(req.Email) {
		return nil, invalid("email is not a valid email address")
	}

	user := model.User{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		Surname:   req.Surname,
		Email:     req.Email,
		CreatedAt: s.now().UTC(),
	}
	if err := conn.CreateUser(ctx, user); err != nil {
		return nil, translate("create user", err, ErrAlreadyExists)
	}

	s.logger.InfoContext(ctx, "user created", slog.String("user_id", user.ID))
	return &user, nil
}

// Get returns a single user by ID.
func (s *UserService) Get(ctx context.Context, conn repository.Conn, id string) (*model.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("user id is required")
	}
	if !isID(id) {
		return nil, ErrNotFound
	}
	user, err := conn.GetUser(ctx, id)
	if err != nil {
		return nil, translate("get user", err, nil)
	}
	return &user, nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
