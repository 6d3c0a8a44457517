package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the response status code for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggedUserKey carries a settable slot through the request context. The
// logger runs outside the auth middleware, so context values added by auth
// never reach it; auth instead writes the authenticated user ID into this
// slot, which the logger reads once the request completes. The slot is only
// touched by the request's own goroutine.
const loggedUserKey contextKey = "logged_user"

type loggedUser struct {
	id string
}

// reportUser records the authenticated user for the request log line, if a
// logger installed a slot upstream.
func reportUser(ctx context.Context, userID string) {
	if lu, ok := ctx.Value(loggedUserKey).(*loggedUser); ok {
		lu.id = userID
	}
}

// RequestLogger logs every HTTP request with method, path, status, user ID,
// and duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		lu := &loggedUser{}
		ctx := context.WithValue(r.Context(), loggedUserKey, lu)

		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start).Milliseconds()
		if rec.status >= http.StatusInternalServerError {
			slog.Error("request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"user_id", lu.id,
				"duration_ms", duration,
			)
		} else if rec.status >= http.StatusBadRequest {
			slog.Warn("request error",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"user_id", lu.id,
				"duration_ms", duration,
			)
		} else {
			slog.Info("request ok",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"user_id", lu.id,
				"duration_ms", duration,
			)
		}
	})
}
