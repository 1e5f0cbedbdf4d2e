package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicReporter delivers a best-effort report of a recovered panic. It must
// swallow its own failures; the notifier's safe traceback variant satisfies
// this.
type PanicReporter interface {
	SendTracebackMessageSafe(message, code, level string)
}

// Recovery middleware recovers from handler panics, logs them and reports
// them through the side channel before answering 500.
func Recovery(next http.Handler, reporter PanicReporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())

				slog.Error("Panic recovered",
					"error", err,
					"stack_trace", stack,
					"method", r.Method,
					"path", r.URL.Path,
					"correlation_id", GetCorrelationID(r.Context()),
				)

				if reporter != nil {
					reporter.SendTracebackMessageSafe(
						fmt.Sprintf("Panic in %s %s: %v", r.Method, r.URL.Path, err),
						stack,
						"error",
					)
				}

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
