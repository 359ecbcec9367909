package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Temutjin2k/jwt-auth/config"
	"github.com/Temutjin2k/jwt-auth/internal/adapter/http/handler"
	"github.com/Temutjin2k/jwt-auth/internal/adapter/http/middleware"
	wshandler "github.com/Temutjin2k/jwt-auth/internal/adapter/http/ws"
	"github.com/Temutjin2k/jwt-auth/internal/domain/types"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/jwt-auth/pkg/wsHub"
)

const serverIPAddress = "%s:%s"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers // routes/handlers
	m      *middleware.Middleware
	hub    *ws.ConnectionHub

	corsOrigins     []string
	addr            string
	shutdownTimeout time.Duration
	log             logger.Logger
}

type handlers struct {
	auth     *handler.Auth
	health   *handler.Health
	sessions *wshandler.Sessions
}

// New builds the HTTP API. db is reported by /health and may be nil.
// The sessions websocket is served only when hub is not nil.
func New(
	cfg config.Config,
	authService handler.AuthService,
	authenticator middleware.Authenticator,
	db handler.Pinger,
	hub *ws.ConnectionHub,
	log logger.Logger,
) (*API, error) {
	if authService == nil || authenticator == nil {
		return nil, errors.New("auth service is required")
	}

	api := &API{
		mux: http.NewServeMux(),
		routes: &handlers{
			auth:   handler.NewAuth(authService, log),
			health: handler.NewHealth(types.ServiceName, cfg.Storage.Driver, db, log),
		},
		m:               middleware.NewMiddleware(authenticator, log),
		hub:             hub,
		corsOrigins:     cfg.HTTP.CORSOrigins,
		addr:            fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.HTTP.Port),
		shutdownTimeout: cfg.HTTP.ShutdownTimeout,
		log:             log,
	}

	if hub != nil {
		api.routes.sessions = wshandler.NewSessions(hub, authenticator, log)
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	timeout := a.shutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	err := a.server.Shutdown(ctx)

	// hijacked websocket connections are not tracked by Shutdown
	if a.hub != nil {
		a.hub.Close()
	}
	if err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// Serve runs the server on an existing listener.
func (a *API) Serve(l net.Listener) error {
	if err := a.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the mux wrapped in the middleware chain.
func (a *API) Handler() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.CORS(a.corsOrigins)(a.m.Logging(a.m.Metrics(types.ServiceName)(a.mux)))))
}
