// Package users owns account creation and credential checking. The
// failed-login counter and lock-until timestamp on the user record are
// written only from here.
package users

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"eventhub/internal/models"
	"eventhub/internal/utils"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username taken")
	ErrEmailTaken         = errors.New("email taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked")
)

type UserDBLayer interface {
	CreateUser(user models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateLoginState(user models.User) error
}

type Service struct {
	DB UserDBLayer

	// Lockout policy; defaults match the service configuration.
	MaxLoginFails   int
	LockoutDuration time.Duration
}

func NewService(db UserDBLayer, maxFails int, lockout time.Duration) *Service {
	return &Service{DB: db, MaxLoginFails: maxFails, LockoutDuration: lockout}
}

// Signup validates and creates a new account with an empty cart and no
// tickets. The password is stored as a bcrypt hash only.
func (s *Service) Signup(req models.SignupRequest) (*models.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: missing required fields", ErrInvalidInput)
	}
	if len(req.Username) < 3 || len(req.Username) > 30 {
		return nil, fmt.Errorf("%w: username must be between 3 and 30 characters", ErrInvalidInput)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters long", ErrInvalidInput)
	}
	if !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}

	role := req.Role
	if role == "" {
		role = models.RoleAttendee
	}
	if role != models.RoleHost && role != models.RoleAttendee {
		return nil, fmt.Errorf("%w: role must be either %q or %q", ErrInvalidInput,
			models.RoleHost, models.RoleAttendee)
	}

	if existing, err := s.DB.GetUserByUsername(req.Username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	}
	if existing, err := s.DB.GetUserByEmail(req.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:        utils.GenerateUserID(),
		Username:  req.Username,
		Email:     strings.ToLower(req.Email),
		Password:  string(hashed),
		Role:      role,
		CreatedAt: time.Now(),
	}
	if err := s.DB.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Authenticate checks credentials and maintains the failed-login
// counter: after MaxLoginFails consecutive failures the account locks
// for LockoutDuration.
func (s *Service) Authenticate(username, password string) (*models.User, error) {
	user, err := s.DB.GetUserByUsername(username)
	if err != nil || user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.IsLocked() {
		return nil, fmt.Errorf("%w until %s", ErrAccountLocked, user.LockUntil.Format(time.RFC3339))
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		user.LoginAttempts++
		if user.LoginAttempts >= s.MaxLoginFails {
			user.LockUntil = time.Now().Add(s.LockoutDuration)
			if err := s.DB.UpdateLoginState(*user); err != nil {
				return nil, fmt.Errorf("failed to update login state: %w", err)
			}
			return nil, fmt.Errorf("%w until %s", ErrAccountLocked, user.LockUntil.Format(time.RFC3339))
		}
		if err := s.DB.UpdateLoginState(*user); err != nil {
			return nil, fmt.Errorf("failed to update login state: %w", err)
		}
		return nil, ErrInvalidCredentials
	}

	// Successful login resets the counter.
	if user.LoginAttempts > 0 || !user.LockUntil.IsZero() {
		user.LoginAttempts = 0
		user.LockUntil = time.Time{}
		if err := s.DB.UpdateLoginState(*user); err != nil {
			return nil, fmt.Errorf("failed to update login state: %w", err)
		}
	}
	return user, nil
}

// GetUser fetches one user record.
func (s *Service) GetUser(id string) (*models.User, error) {
	user, err := s.DB.GetUserByID(id)
	if err != nil {
		return nil, fmt.Errorf("user %s not found: %w", id, err)
	}
	return user, nil
}
