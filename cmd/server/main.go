package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/iota-uz/utils/fs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/jacksonlee411/approvals/internal/server"
	"github.com/jacksonlee411/approvals/modules"
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence"
	"github.com/jacksonlee411/approvals/modules/approvals/seed"
	"github.com/jacksonlee411/approvals/pkg/application"
	"github.com/jacksonlee411/approvals/pkg/authz"
	"github.com/jacksonlee411/approvals/pkg/configuration"
	"github.com/jacksonlee411/approvals/pkg/logging"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	pool, repos := openStore(conf, logger)
	if pool != nil {
		defer pool.Close()
	}

	app := application.New(&application.ApplicationOptions{
		Pool:   pool,
		Logger: logger,
	})

	authzService, err := authz.NewService(authz.FromConfiguration(conf))
	if err != nil {
		log.Fatalf("failed to initialize authz: %v", err)
	}
	app.RegisterServices(authzService)

	moduleOpts := modules.Options{
		Repositories:      repos,
		AccountHeader:     conf.AccountIDHeader,
		UserHeader:        conf.UserIDHeader,
		StrictTransitions: conf.Approvals.StrictTransitions,
		PageSize:          conf.PageSize,
		MaxPageSize:       conf.MaxPageSize,
	}
	// The in-memory store starts empty, so give it the fixture account.
	if conf.Store == configuration.StoreMemory {
		moduleOpts.Seed = seedFile(conf, logger)
	}
	if err := modules.Load(app, modules.BuiltInModules(moduleOpts)...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Seeder().Seed(ctx, app); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"store":      conf.Store,
		"authz_mode": authzService.Mode(),
	}).Info("Listening on: " + conf.Origin)
	if err := serverInstance.Start(ctx, conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func openStore(conf *configuration.Configuration, logger *logrus.Logger) (*pgxpool.Pool, persistence.Repositories) {
	if conf.Store == configuration.StoreMemory {
		logger.Warn("Using the in-memory store; data is lost on restart")
		return nil, persistence.NewInmemStore().Repositories()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	return pool, persistence.NewPgRepositories()
}

func seedFile(conf *configuration.Configuration, logger *logrus.Logger) *seed.File {
	path := conf.Approvals.SeedFile
	if path == "" || !fs.FileExists(path) {
		return seed.Default()
	}
	f, err := seed.LoadFile(path)
	if err != nil {
		logger.WithError(err).Warn("Falling back to the built-in seed")
		return seed.Default()
	}
	return f
}
