package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/todoboard/task-tracker/internal/core/domain"
	"github.com/todoboard/task-tracker/internal/core/ports"
)

// AuthService implements registration, login and password verification.
type AuthService struct {
	repo     ports.UserRepository
	cost     int
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		cost:     bcrypt.DefaultCost,
		validate: validator.New(),
		logger:   logger,
	}
}

// Registration rules, shared with the registration form's tags.
const (
	registerEmailRule    = "required,email,max=254"
	registerPasswordRule = "required,max=72"
	registerNameRule     = "required,max=100"
)

// Register validates the input, hashes the password and stores a new user.
// The email is kept exactly as typed; uniqueness is case-sensitive.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	if err := s.validateRegistration(email, password, name); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			s.logger.Error().Err(err).Msg("failed to create user")
		}
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login looks the user up by email and checks the password. An unknown email
// returns domain.ErrUserNotFound and a wrong password domain.ErrPasswordMismatch
// so the caller can tell them apart.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		v := domain.NewValidationError()
		if email == "" {
			v.Add("email", "email is required")
		}
		if password == "" {
			v.Add("password", "password is required")
		}
		return nil, v
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !s.Verify(user, password) {
		return nil, domain.ErrPasswordMismatch
	}
	return user, nil
}

// Verify compares password against the user's stored hash.
func (s *AuthService) Verify(user *domain.User, password string) bool {
	if user == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func (s *AuthService) validateRegistration(email, password, name string) error {
	v := domain.NewValidationError()
	s.check(v, "email", email, registerEmailRule)
	s.check(v, "password", password, registerPasswordRule)
	s.check(v, "name", strings.TrimSpace(name), registerNameRule)
	return v.OrNil()
}

// check runs rule against value and records the first failure under field.
func (s *AuthService) check(v *domain.ValidationError, field, value, rule string) {
	var fes validator.ValidationErrors
	if !errors.As(s.validate.Var(value, rule), &fes) || len(fes) == 0 {
		return
	}
	switch fe := fes[0]; fe.Tag() {
	case "required":
		v.Add(field, field+" is required")
	case "email":
		v.Add(field, field+" must be a valid email address")
	case "max":
		v.Add(field, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		v.Add(field, field+" is invalid")
	}
}
