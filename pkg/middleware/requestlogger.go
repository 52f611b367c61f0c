package middleware

import (
	"log/slog"
	"net/http"

	"github.com/marivaldojunior/ProductManagement/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, user_id, trace_id, and span_id where present. Handlers
// retrieve it with logger.FromContext(ctx).
//
// Mount after RequestLogging, which establishes the correlation id.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// The user id comes from the auth middleware when it ran, or
			// from the X-User-ID header on pre-authenticated internal calls.
			userID := UserIDFromContext(ctx)
			if userID == "" {
				userID = r.Header.Get("X-User-ID")
			}
			if userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
