package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header is the header carrying the request id in both directions.
const Header = "X-Request-ID"

type ctxKey struct{}

// NewRequestIDMiddleware keeps an incoming X-Request-ID or mints a new one,
// stores it in the request context and echoes it in the response.
func NewRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request id or an empty string.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)

	return id
}
