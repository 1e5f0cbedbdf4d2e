package handler

import (
	"net/http"

	"github.com/scoutshq/outpost/pkg/middleware"
)

// Router handles HTTP routing
type Router struct {
	authHandler *AuthHandler
	pingHandler *PingHandler
	pathPrefix  string
	corsConfig  middleware.CORSConfig
	reporter    middleware.PanicReporter
}

// NewRouter creates a new router
func NewRouter(
	authHandler *AuthHandler,
	pingHandler *PingHandler,
	pathPrefix string,
	corsConfig middleware.CORSConfig,
	reporter middleware.PanicReporter,
) *Router {
	return &Router{
		authHandler: authHandler,
		pingHandler: pingHandler,
		pathPrefix:  pathPrefix,
		corsConfig:  corsConfig,
		reporter:    reporter,
	}
}

// Handler returns the configured HTTP handler with middleware
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	prefix := rt.pathPrefix + "/v1"

	mux.HandleFunc(prefix+"/user/authentication", methodOnly(http.MethodPost, rt.authHandler.Authentication))
	mux.HandleFunc(prefix+"/user/me", methodOnly(http.MethodGet, rt.authHandler.Me))
	mux.HandleFunc(prefix+"/health_check/ping_application", methodOnly(http.MethodGet, rt.pingHandler.PingApplication))
	mux.HandleFunc(prefix+"/health_check/ping_database", methodOnly(http.MethodGet, rt.pingHandler.PingDatabase))
	mux.HandleFunc(prefix+"/health_check/ping_auth", methodOnly(http.MethodGet, rt.pingHandler.PingAuth))

	// Apply middleware (CORS first to handle preflight requests)
	handler := middleware.CORS(rt.corsConfig)(mux)
	handler = middleware.Recovery(handler, rt.reporter)
	handler = middleware.Logging(handler)
	handler = middleware.CorrelationID(handler)

	return handler
}

// methodOnly rejects every method except the given one.
func methodOnly(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		next(w, r)
	}
}
