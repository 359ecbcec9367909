package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/Temutjin2k/jwt-auth/config"
	"github.com/Temutjin2k/jwt-auth/internal/adapter/postgres/migrations"
	"github.com/Temutjin2k/jwt-auth/internal/domain/types"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	"github.com/Temutjin2k/jwt-auth/pkg/postgres"
)

var (
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
	command    = flag.String("command", postgres.MigrateUp, "Migration command: up, down or status")
	timeout    = flag.Duration("timeout", time.Minute, "Timeout for the whole run")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, types.ActionDatabaseMigrated)

	log := logger.InitLogger(types.ServiceName+"-migrate", logger.LevelInfo)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure migrations", err)
		os.Exit(1)
	}

	client, err := postgres.New(ctx, cfg.Database, postgres.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Error(ctx, "failed to connect to postgres", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := postgres.RunMigrations(ctx, client.Pool, migrations.FS, *command); err != nil {
		log.Error(ctx, "migration failed", err, "command", *command)
		client.Close()
		os.Exit(1)
	}

	log.Info(ctx, "migration finished", "command", *command)
}
