package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutshq/outpost/internal/auth"
	"github.com/scoutshq/outpost/internal/database"
	"github.com/scoutshq/outpost/internal/model"
	"github.com/scoutshq/outpost/pkg/middleware"
)

type fakeUserStore struct {
	users map[string]*model.User
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	return user, nil
}

type fakeProber struct {
	err error
}

func (p *fakeProber) HealthCheck(context.Context) error { return p.err }

// newTestServer wires the full router around fakes, the way main does.
func newTestServer(t *testing.T, prober *fakeProber) (*httptest.Server, *auth.TokenService) {
	t.Helper()

	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	store := &fakeUserStore{users: map[string]*model.User{
		"alice": {
			ID:        "u-1",
			Username:  "alice",
			Password:  hash,
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}}

	tokens, err := auth.NewTokenService("test-secret", "HS256", time.Hour)
	require.NoError(t, err)
	authenticator := auth.NewAuthenticator(store, tokens)

	router := NewRouter(
		NewAuthHandler(authenticator, tokens),
		NewPingHandler(prober, authenticator),
		"/api",
		middleware.CORSConfig{AllowedOrigins: "*"},
		nil,
	)

	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)
	return srv, tokens
}

func postForm(t *testing.T, srv *httptest.Server, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, srv *httptest.Server, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAuthentication(t *testing.T) {
	srv, tokens := newTestServer(t, &fakeProber{})

	resp := postForm(t, srv, "/api/v1/user/authentication", url.Values{
		"username": {"alice"},
		"password": {"s3cret"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body TokenResponse
	decode(t, resp, &body)
	assert.Equal(t, "bearer", body.TokenType)

	claims, err := tokens.Validate(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestAuthenticationFailuresAreIdentical(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProber{})

	unknown := postForm(t, srv, "/api/v1/user/authentication", url.Values{
		"username": {"ghost"},
		"password": {"s3cret"},
	})
	wrongPassword := postForm(t, srv, "/api/v1/user/authentication", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})

	for _, resp := range []*http.Response{unknown, wrongPassword} {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	}

	var a, b ErrorResponse
	decode(t, unknown, &a)
	decode(t, wrongPassword, &b)
	assert.Equal(t, a, b, "unknown user and wrong password must be indistinguishable")
}

func TestAuthenticationMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProber{})

	resp := get(t, srv, "/api/v1/user/authentication", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMe(t *testing.T) {
	srv, tokens := newTestServer(t, &fakeProber{})

	token, err := tokens.Issue("alice", 0)
	require.NoError(t, err)

	resp := get(t, srv, "/api/v1/user/me", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile model.Profile
	decode(t, resp, &profile)
	assert.Equal(t, "alice", profile.Username)
	assert.False(t, profile.CreatedAt.IsZero())
	assert.False(t, profile.UpdatedAt.IsZero())
}

func TestMeUnauthorized(t *testing.T) {
	srv, tokens := newTestServer(t, &fakeProber{})

	ghostToken, err := tokens.Issue("ghost", 0)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "malformed token", token: "garbage"},
		{name: "unknown subject", token: ghostToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv, "/api/v1/user/me", tt.token)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		})
	}
}

func TestPingApplication(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProber{})

	resp := get(t, srv, "/api/v1/health_check/ping_application", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body PingResponse
	decode(t, resp, &body)
	assert.Equal(t, MessageOK, body.Message)
}

func TestPingDatabase(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProber{})

	resp := get(t, srv, "/api/v1/health_check/ping_database", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body PingResponse
	decode(t, resp, &body)
	assert.Equal(t, MessageOK, body.Message)
}

func TestPingDatabaseFailure(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProber{err: errors.New("no reachable servers")})

	resp := get(t, srv, "/api/v1/health_check/ping_database", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, MessageDBError, body.Message)
}

func TestPingAuth(t *testing.T) {
	srv, tokens := newTestServer(t, &fakeProber{})

	token, err := tokens.Issue("alice", 0)
	require.NoError(t, err)

	resp := get(t, srv, "/api/v1/health_check/ping_auth", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body PingResponse
	decode(t, resp, &body)
	assert.Equal(t, MessageOK, body.Message)
	assert.Equal(t, "alice", body.Detail)
}

func TestPingAuthUnauthorized(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProber{})

	resp := get(t, srv, "/api/v1/health_check/ping_auth", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCorrelationIDEchoed(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProber{})

	resp := get(t, srv, "/api/v1/health_check/ping_application", "")
	assert.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
}
