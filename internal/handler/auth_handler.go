package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/scoutshq/outpost/internal/auth"
)

// authFailedMessage is deliberately the same for unknown users and wrong
// passwords.
const authFailedMessage = "Incorrect username or password"

const credentialsMessage = "Could not validate credentials"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authenticator *auth.Authenticator
	tokens        *auth.TokenService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authenticator *auth.Authenticator, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		tokens:        tokens,
	}
}

// TokenResponse is the body returned on successful authentication
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Authentication handles POST /user/authentication with form-encoded
// username and password, returning a bearer token.
func (h *AuthHandler) Authentication(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.authenticator.Authenticate(r.Context(), username, password)
	if err != nil {
		slog.Error("Authentication lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Authentication unavailable")
		return
	}
	if user == nil {
		writeUnauthorized(w, authFailedMessage)
		return
	}

	token, err := h.tokens.Issue(user.Username, 0)
	if err != nil {
		slog.Error("Failed to issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "Authentication unavailable")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me handles GET /user/me, returning the profile of the token's user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authenticator.CurrentUser(r.Context(), bearerToken(r))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeUnauthorized(w, credentialsMessage)
			return
		}
		slog.Error("Current user lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Authentication unavailable")
		return
	}

	writeJSON(w, http.StatusOK, user.Profile())
}
