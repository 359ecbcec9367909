package microservices

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/jwt-auth/config"
	"github.com/Temutjin2k/jwt-auth/internal/adapter/http/handler"
	httpserver "github.com/Temutjin2k/jwt-auth/internal/adapter/http/server"
	wshandler "github.com/Temutjin2k/jwt-auth/internal/adapter/http/ws"
	"github.com/Temutjin2k/jwt-auth/internal/adapter/memory"
	"github.com/Temutjin2k/jwt-auth/internal/adapter/postgres"
	"github.com/Temutjin2k/jwt-auth/internal/adapter/postgres/migrations"
	rabbitadapter "github.com/Temutjin2k/jwt-auth/internal/adapter/rabbit"
	"github.com/Temutjin2k/jwt-auth/internal/domain/types"
	"github.com/Temutjin2k/jwt-auth/internal/service/auth"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	"github.com/Temutjin2k/jwt-auth/pkg/passhash"
	postgresclient "github.com/Temutjin2k/jwt-auth/pkg/postgres"
	"github.com/Temutjin2k/jwt-auth/pkg/rabbit"
	"github.com/Temutjin2k/jwt-auth/pkg/trm"
	ws "github.com/Temutjin2k/jwt-auth/pkg/wsHub"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/crypto/bcrypt"
)

const closeTimeout = 10 * time.Second

type AuthService struct {
	postgresDB *postgresclient.PostgreDB // nil for the memory driver
	rabbit     *rabbit.RabbitMQ          // nil when events are disabled
	httpServer *httpserver.API

	cfg config.Config
	log logger.Logger
}

// storage is the selected user store with its transaction manager.
type storage struct {
	repo      auth.UserRepo
	txManager trm.TxManager
	pinger    handler.Pinger
}

func NewAuth(ctx context.Context, cfg config.Config, log logger.Logger) (svc *AuthService, err error) {
	s := &AuthService{
		cfg: cfg,
		log: log,
	}
	defer func() {
		if err != nil {
			s.close(ctx)
		}
	}()

	tokenSvc, err := auth.NewTokenService(tokenConfig(cfg.Auth), log)
	if err != nil {
		return nil, err
	}

	store, err := s.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	// login notifications for users with an open sessions socket
	hub := ws.NewConnHub(log)
	events := auth.Publishers{wshandler.NewNotifier(hub)}

	producer, err := s.initRabbit(ctx)
	if err != nil {
		return nil, err
	}
	if producer != nil {
		events = append(events, producer)
	}

	// services
	identities := auth.NewIdentityStore(store.repo, passhash.New(bcrypt.DefaultCost))
	authSvc := auth.NewAuthService(identities, tokenSvc, store.txManager, events, log)

	s.httpServer, err = httpserver.New(cfg, authSvc, authSvc, store.pinger, hub, log)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func tokenConfig(c config.Auth) auth.TokenConfig {
	return auth.TokenConfig{
		Secret:            c.JWTSecret,
		Issuer:            c.Issuer,
		Audience:          c.Audience,
		EnforceExpiry:     c.EnforceExpiry,
		RequireExpiration: c.RequireExpiration,
		ValidateIssuer:    c.ValidateIssuer,
		ValidateAudience:  c.ValidateAudience,
	}
}

func (s *AuthService) initStorage(ctx context.Context) (*storage, error) {
	switch s.cfg.Storage.Driver {
	case config.StorageMemory:
		s.log.Warn(ctx, "using in-memory user storage, users are lost on restart")
		return &storage{
			repo:      memory.NewUserRepo(),
			txManager: trm.NoopManager{},
		}, nil

	case config.StoragePostgres:
		db, err := postgresclient.New(ctx, s.cfg.Database, postgresclient.PoolOptions{
			MaxConns:        s.cfg.Database.MaxConns,
			MinConns:        s.cfg.Database.MinConns,
			MaxConnLifetime: s.cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: s.cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		s.postgresDB = db
		s.log.Info(wrap.WithAction(ctx, types.ActionDatabaseConnected), "connected to postgres", "host", s.cfg.Database.Host)

		if s.cfg.Database.AutoMigrate {
			if err := postgresclient.Migrate(ctx, db.Pool, migrations.FS); err != nil {
				return nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
			s.log.Info(wrap.WithAction(ctx, types.ActionDatabaseMigrated), "database migrations applied")
		}

		return &storage{
			repo:      postgres.NewUserRepo(db.Pool),
			txManager: trm.New(db.Pool),
			pinger:    db.Pool,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStorage, s.cfg.Storage.Driver)
	}
}

// initRabbit returns a nil producer when RabbitMQ is disabled.
func (s *AuthService) initRabbit(ctx context.Context) (*rabbitadapter.AuthEventProducer, error) {
	if !s.cfg.RabbitMQ.Enabled {
		return nil, nil
	}

	client, err := rabbit.New(ctx, s.cfg.RabbitMQ.GetDSN(), s.log)
	if err != nil {
		return nil, err
	}
	s.rabbit = client

	if err := client.DeclareExchange(s.cfg.RabbitMQ.Exchange, amqp.ExchangeTopic); err != nil {
		return nil, err
	}

	return rabbitadapter.NewAuthEventProducer(client, s.cfg.RabbitMQ.Exchange), nil
}

func (s *AuthService) Start(ctx context.Context) error {
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "auth service closed")
	}()

	errCh := make(chan error, 1)
	s.httpServer.Run(ctx, errCh)

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	s.log.Info(ctx, "service started")
	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AuthService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if s.rabbit != nil {
		if err := s.rabbit.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	s.postgresDB.Close()

	if err := errors.Join(errs...); err != nil {
		s.log.Error(ctx, "failed to close resources", err)
	}
}
