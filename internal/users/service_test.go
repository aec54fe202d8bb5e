package users_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"eventhub/internal/models"
	"eventhub/internal/users"
)

// Mock implementations
type MockUserDBLayer struct {
	mock.Mock
}

func (m *MockUserDBLayer) CreateUser(user models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserDBLayer) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDBLayer) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDBLayer) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDBLayer) UpdateLoginState(user models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func newService(db users.UserDBLayer) *users.Service {
	return users.NewService(db, 5, 2*time.Hour)
}

func hashPassword(t *testing.T, password string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hashed)
}

// Tests start here
func TestSignupCreatesUser(t *testing.T) {
	mockDB := new(MockUserDBLayer)
	svc := newService(mockDB)

	mockDB.On("GetUserByUsername", "alice").Return(nil, nil)
	mockDB.On("GetUserByEmail", "Alice@Example.com").Return(nil, nil)
	mockDB.On("CreateUser", mock.MatchedBy(func(u models.User) bool {
		// Email normalized, password never stored in clear
		return u.Username == "alice" &&
			u.Email == "alice@example.com" &&
			u.Password != "secret123" &&
			u.Role == models.RoleAttendee &&
			u.ID != ""
	})).Return(nil)

	user, err := svc.Signup(models.SignupRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "secret123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleAttendee, user.Role)
	mockDB.AssertExpectations(t)
}

func TestSignupValidation(t *testing.T) {
	mockDB := new(MockUserDBLayer)
	svc := newService(mockDB)

	cases := []struct {
		name string
		req  models.SignupRequest
	}{
		{"missing fields", models.SignupRequest{Username: "alice"}},
		{"username too short", models.SignupRequest{Username: "al", Email: "a@b.com", Password: "secret123"}},
		{"password too short", models.SignupRequest{Username: "alice", Email: "a@b.com", Password: "short"}},
		{"bad email", models.SignupRequest{Username: "alice", Email: "not-an-email", Password: "secret123"}},
		{"bad role", models.SignupRequest{Username: "alice", Email: "a@b.com", Password: "secret123", Role: "admin"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(tc.req)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, users.ErrInvalidInput))
		})
	}
	mockDB.AssertNotCalled(t, "CreateUser", mock.Anything)
}

func TestSignupRejectsTakenUsername(t *testing.T) {
	mockDB := new(MockUserDBLayer)
	svc := newService(mockDB)

	existing := &models.User{ID: "user-1", Username: "alice"}
	mockDB.On("GetUserByUsername", "alice").Return(existing, nil)

	_, err := svc.Signup(models.SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	assert.True(t, errors.Is(err, users.ErrUsernameTaken))
	mockDB.AssertNotCalled(t, "CreateUser", mock.Anything)
}

func TestSignupRejectsTakenEmail(t *testing.T) {
	mockDB := new(MockUserDBLayer)
	svc := newService(mockDB)

	mockDB.On("GetUserByUsername", "alice").Return(nil, nil)
	mockDB.On("GetUserByEmail", "alice@example.com").Return(&models.User{ID: "user-2"}, nil)

	_, err := svc.Signup(models.SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	assert.True(t, errors.Is(err, users.ErrEmailTaken))
	mockDB.AssertNotCalled(t, "CreateUser", mock.Anything)
}

func TestAuthenticateSuccess(t *testing.T) {
	mockDB := new(MockUserDBLayer)
	svc := newService(mockDB)

	stored := &models.User{
		ID:       "user-1",
		Username: "alice",
		Password: hashPassword(t, "secret123"),
		Role:     models.RoleAttendee,
	}
	mockDB.On("GetUserByUsername", "alice").Return(stored, nil)

	user, err := svc.Authenticate("alice", "secret123")

	assert.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	// No failed attempts to reset, so no state write
	mockDB.AssertNotCalled(t, "UpdateLoginState", mock.Anything)
}

func TestAuthenticateWrongPasswordIncrementsCounter(t *testing.T) {
	mockDB := new(MockUserDBLayer)
	svc := newService(mockDB)

	stored := &models.User{
		ID:       "user-1",
		Username: "alice",
		Password: hashPassword(t, "secret123"),
	}
	mockDB.On("GetUserByUsername", "alice").Return(stored, nil)
	mockDB.On("UpdateLoginState", mock.MatchedBy(func(u models.User) bool {
		return u.LoginAttempts == 1 && u.LockUntil.IsZero()
	})).Return(nil)

	_, err := svc.Authenticate("alice", "wrong")

	assert.True(t, errors.Is(err, users.ErrInvalidCredentials))
	mockDB.AssertExpectations(t)
}

func TestAuthenticateLocksAfterMaxFails(t *testing.T) {
	mockDB := new(MockUserDBLayer)
	svc := newService(mockDB)

	// Four failures already recorded; this one is the fifth.
	stored := &models.User{
		ID:            "user-1",
		Username:      "alice",
		Password:      hashPassword(t, "secret123"),
		LoginAttempts: 4,
	}
	mockDB.On("GetUserByUsername", "alice").Return(stored, nil)
	mockDB.On("UpdateLoginState", mock.MatchedBy(func(u models.User) bool {
		return u.LoginAttempts == 5 && u.LockUntil.After(time.Now())
	})).Return(nil)

	_, err := svc.Authenticate("alice", "wrong")

	assert.True(t, errors.Is(err, users.ErrAccountLocked))
	mockDB.AssertExpectations(t)
}

func TestAuthenticateRejectsLockedAccount(t *testing.T) {
	mockDB := new(MockUserDBLayer)
	svc := newService(mockDB)

	stored := &models.User{
		ID:            "user-1",
		Username:      "alice",
		Password:      hashPassword(t, "secret123"),
		LoginAttempts: 5,
		LockUntil:     time.Now().Add(time.Hour),
	}
	mockDB.On("GetUserByUsername", "alice").Return(stored, nil)

	// Even the correct password is rejected while locked
	_, err := svc.Authenticate("alice", "secret123")

	assert.True(t, errors.Is(err, users.ErrAccountLocked))
	mockDB.AssertNotCalled(t, "UpdateLoginState", mock.Anything)
}

func TestAuthenticateResetsCounterOnSuccess(t *testing.T) {
	mockDB := new(MockUserDBLayer)
	svc := newService(mockDB)

	// Lock has expired, three stale failures on record
	stored := &models.User{
		ID:            "user-1",
		Username:      "alice",
		Password:      hashPassword(t, "secret123"),
		LoginAttempts: 3,
	}
	mockDB.On("GetUserByUsername", "alice").Return(stored, nil)
	mockDB.On("UpdateLoginState", mock.MatchedBy(func(u models.User) bool {
		return u.LoginAttempts == 0 && u.LockUntil.IsZero()
	})).Return(nil)

	user, err := svc.Authenticate("alice", "secret123")

	assert.NoError(t, err)
	assert.Equal(t, 0, user.LoginAttempts)
	mockDB.AssertExpectations(t)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	mockDB := new(MockUserDBLayer)
	svc := newService(mockDB)

	mockDB.On("GetUserByUsername", "ghost").Return(nil, nil)

	_, err := svc.Authenticate("ghost", "whatever")

	assert.True(t, errors.Is(err, users.ErrInvalidCredentials))
}
