package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestIssueAndVerifyToken(t *testing.T) {
	token, err := IssueToken(testSecret, "user-123", "alice", "attendee", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "attendee", claims.Role)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, "user-123", "alice", "attendee", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken("different-secret", token)
	assert.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	token, err := IssueToken(testSecret, "user-123", "alice", "attendee", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, token)
	assert.Error(t, err)
}

func TestVerifyGarbageToken(t *testing.T) {
	_, err := VerifyToken(testSecret, "not.a.token")
	assert.Error(t, err)

	_, err = VerifyToken(testSecret, "")
	assert.Error(t, err)
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := IssueToken("", "user-123", "alice", "attendee", time.Hour)
	assert.Error(t, err)
}

func TestExtractTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/events", nil)
	r.Header.Set("Authorization", "Bearer abc123")

	token, err := ExtractTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	// Missing header
	r = httptest.NewRequest("GET", "/api/events", nil)
	_, err = ExtractTokenFromRequest(r)
	assert.Error(t, err)

	// Wrong scheme
	r = httptest.NewRequest("GET", "/api/events", nil)
	r.Header.Set("Authorization", "Basic abc123")
	_, err = ExtractTokenFromRequest(r)
	assert.Error(t, err)
}
