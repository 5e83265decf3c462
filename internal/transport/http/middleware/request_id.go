package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"conges/internal/requestctx"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// RequestID tags every request, honoring an inbound X-Request-ID so
// gateway traces line up with ours.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := requestctx.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
