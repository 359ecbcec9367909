package middleware

import (
	"net/http"

	"github.com/Temutjin2k/jwt-auth/internal/domain/types"
	"github.com/rs/cors"
)

// CORS lets browser clients from origins call the API with any method and header.
// Preflight requests are answered here and never reach the mux.
func (m *Middleware) CORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{types.HeaderRequestID},
	})
	return c.Handler
}
