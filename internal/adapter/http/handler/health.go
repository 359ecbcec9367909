package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency the health check reports on, e.g. *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Health struct {
	serviceName string
	storage     string
	db          Pinger
	log         logger.Logger
}

// NewHealth creates the health handler. db may be nil for storage without a connection.
func NewHealth(serviceName, storage string, db Pinger, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		storage:     storage,
		db:          db,
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Returns the health status of the service
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	status, code := "available", http.StatusOK
	if a.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()

		if err := a.db.Ping(pingCtx); err != nil {
			a.log.Error(ctx, "storage is unreachable", err)
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}

	response := envelope{
		"status": status,
		"system_info": map[string]string{
			"service-name": a.serviceName,
			"storage":      a.storage,
		},
	}

	if err := writeJSON(w, code, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
		return
	}
}
