package middleware

import (
	"net/http"

	"github.com/Temutjin2k/jwt-auth/internal/domain/types"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	"github.com/google/uuid"
)

const maxRequestIDLength = 128

// RequestID reuses the caller's X-Request-ID or generates one, stores it in the log context
// and echoes it in the response.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(types.HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		w.Header().Set(types.HeaderRequestID, id)
		ctx := wrap.WithRequestID(r.Context(), id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
