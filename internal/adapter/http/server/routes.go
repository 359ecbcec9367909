package server

import (
	"net/http"

	_ "github.com/Temutjin2k/jwt-auth/docs" // registers the "auth" swagger instance
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

const swaggerInstance = "auth"

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("GET /health", a.routes.health.HealthCheck)

	a.setupAuthRoutes()
	a.setupSwaggerRoutes()
	a.setupMetricsRoute()
}

func (a *API) setupAuthRoutes() {
	a.mux.HandleFunc("POST /auth/register", a.routes.auth.Register)
	a.mux.HandleFunc("POST /auth/login", a.routes.auth.Login)
	a.mux.Handle("GET /auth/me", a.m.Auth(a.routes.auth.Profile))

	if a.routes.sessions != nil {
		a.mux.HandleFunc("GET /ws/sessions", a.routes.sessions.Handle)
	}
}

// setupSwaggerRoutes configures Swagger UI endpoints
func (a *API) setupSwaggerRoutes() {
	a.mux.HandleFunc("GET /swagger/", httpSwagger.Handler(httpSwagger.InstanceName(swaggerInstance)))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func (a *API) setupMetricsRoute() {
	a.mux.Handle("GET /metrics", promhttp.Handler())
}
