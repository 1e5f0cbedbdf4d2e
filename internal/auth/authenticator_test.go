package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutshq/outpost/internal/database"
	"github.com/scoutshq/outpost/internal/model"
)

// mockUserStore serves a fixed set of users and counts lookups.
type mockUserStore struct {
	users   map[string]*model.User
	err     error
	lookups int
}

func (m *mockUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.lookups++
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[username]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	return user, nil
}

func newTestAuthenticator(t *testing.T, store UserStore) (*Authenticator, *TokenService) {
	t.Helper()
	tokens := newTestTokenService(t, time.Hour)
	return NewAuthenticator(store, tokens), tokens
}

func storeWithUser(t *testing.T, username, password string) *mockUserStore {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &mockUserStore{users: map[string]*model.User{
		username: {ID: "u-1", Username: username, Password: hash},
	}}
}

func TestAuthenticate(t *testing.T) {
	store := storeWithUser(t, "alice", "s3cret")
	authenticator, _ := newTestAuthenticator(t, store)

	user, err := authenticator.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
}

func TestAuthenticateFailures(t *testing.T) {
	store := storeWithUser(t, "alice", "s3cret")
	authenticator, _ := newTestAuthenticator(t, store)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "unknown user", username: "bob", password: "s3cret"},
		{name: "wrong password", username: "alice", password: "wrong"},
	}

	// Unknown user and wrong password are indistinguishable: both yield
	// a nil user and no error.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := authenticator.Authenticate(context.Background(), tt.username, tt.password)
			require.NoError(t, err)
			assert.Nil(t, user)
		})
	}
}

func TestAuthenticateStoreError(t *testing.T) {
	store := &mockUserStore{err: errors.New("connection reset")}
	authenticator, _ := newTestAuthenticator(t, store)

	_, err := authenticator.Authenticate(context.Background(), "alice", "s3cret")
	assert.Error(t, err)
}

func TestCurrentUser(t *testing.T) {
	store := storeWithUser(t, "alice", "s3cret")
	authenticator, tokens := newTestAuthenticator(t, store)

	token, err := tokens.Issue("alice", 0)
	require.NoError(t, err)

	user, err := authenticator.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestCurrentUserInvalidTokenSkipsLookup(t *testing.T) {
	store := storeWithUser(t, "alice", "s3cret")
	authenticator, _ := newTestAuthenticator(t, store)

	_, err := authenticator.CurrentUser(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, store.lookups, "structurally invalid tokens must be rejected before any store lookup")
}

func TestCurrentUserEmptySubject(t *testing.T) {
	store := storeWithUser(t, "alice", "s3cret")
	authenticator, tokens := newTestAuthenticator(t, store)

	token, err := tokens.Issue("", 0)
	require.NoError(t, err)

	_, err = authenticator.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, store.lookups)
}

func TestCurrentUserUnknownSubject(t *testing.T) {
	store := storeWithUser(t, "alice", "s3cret")
	authenticator, tokens := newTestAuthenticator(t, store)

	token, err := tokens.Issue("ghost", 0)
	require.NoError(t, err)

	_, err = authenticator.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCurrentUserExpiredToken(t *testing.T) {
	store := storeWithUser(t, "alice", "s3cret")
	tokens := newTestTokenService(t, -time.Minute)
	authenticator := NewAuthenticator(store, tokens)

	token, err := tokens.Issue("alice", 0)
	require.NoError(t, err)

	_, err = authenticator.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
