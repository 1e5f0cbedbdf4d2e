package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/scoutshq/outpost/internal/auth"
)

// Fixed health check payloads.
const (
	MessageOK      = "Application worked!"
	MessageDBError = "Database isn't working"
)

// Prober performs a single database connectivity round-trip.
type Prober interface {
	HealthCheck(ctx context.Context) error
}

// PingHandler handles application health endpoints
type PingHandler struct {
	prober        Prober
	authenticator *auth.Authenticator
}

// NewPingHandler creates a new ping handler
func NewPingHandler(prober Prober, authenticator *auth.Authenticator) *PingHandler {
	return &PingHandler{
		prober:        prober,
		authenticator: authenticator,
	}
}

// PingResponse represents a health check response
type PingResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// PingApplication handles GET /health_check/ping_application. It always
// answers 200: the process serving it is alive by definition.
func (h *PingHandler) PingApplication(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PingResponse{Message: MessageOK})
}

// PingDatabase handles GET /health_check/ping_database with one probe
// round-trip. Failures surface immediately; there is no inline retry.
func (h *PingHandler) PingDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.prober.HealthCheck(r.Context()); err != nil {
		slog.Error("Database health check failed", "error", err)
		writeError(w, http.StatusInternalServerError, MessageDBError)
		return
	}

	writeJSON(w, http.StatusOK, PingResponse{Message: MessageOK})
}

// PingAuth handles GET /health_check/ping_auth, echoing the username the
// bearer token resolves to.
func (h *PingHandler) PingAuth(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, PingResponse{
		Message: MessageOK,
		Detail:  user.Username,
	})
}
