package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestTokenService(t *testing.T, defaultTTL time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, "HS256", defaultTTL)
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceUnknownAlgorithm(t *testing.T) {
	_, err := NewTokenService(testSecret, "none-of-the-above", time.Minute)
	assert.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, err := svc.Issue("alice", 0)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestIssueExplicitTTL(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, err := svc.Issue("alice", 10*time.Minute)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateExpiredToken(t *testing.T) {
	// A negative default TTL makes every issued token already expired.
	svc := newTestTokenService(t, -time.Minute)

	token, err := svc.Issue("alice", 0)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongSecret(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	token, err := svc.Issue("alice", 0)
	require.NoError(t, err)

	other, err := NewTokenService("another-secret", "HS256", time.Hour)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateMalformedToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}
