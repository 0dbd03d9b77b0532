package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"order-service/internal/handler"
	"order-service/internal/repository"
	"order-service/pkg/config"
	"order-service/pkg/database"
	"order-service/pkg/jwtutil"
	"order-service/pkg/logger"
	"order-service/prometheus"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:           config.ServiceName,
		Usage:          "inventory-backed order processing service",
		DefaultCommand: "serve",
		Before: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := logger.InitLogger(cfg); err != nil {
				return err
			}
			jwtutil.Initialize(&cfg.JWT)
			c.App.Metadata = map[string]interface{}{"config": cfg}
			return nil
		},
		After: func(c *cli.Context) error {
			_ = logger.GetLogger().Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:  "token",
				Usage: "issue an operator bearer token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Required: true, Usage: "operator identity"},
					&cli.StringFlag{Name: "role", Value: "operator", Usage: "operator role"},
				},
				Action: issueToken,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.ServiceName, err)
		os.Exit(1)
	}
}

func appConfig(c *cli.Context) *config.Config {
	return c.App.Metadata["config"].(*config.Config)
}

// openStore builds the store selected by STORE_DRIVER. The returned close
// function releases the database pool, if any.
func openStore(cfg *config.Config) (repository.Store, func(), error) {
	if cfg.Store.Driver == config.StoreMemory {
		logger.GetLogger().Warn("Using in-memory store, data is lost on exit")
		return repository.NewMemoryStore(), func() {}, nil
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	return repository.NewGormStore(db), closer(db), nil
}

func closer(db *gorm.DB) func() {
	return func() {
		if err := database.Close(db); err != nil {
			logger.GetLogger().Error("Failed to close database", zap.Error(err))
		}
	}
}

func serve(c *cli.Context) error {
	cfg := appConfig(c)
	log := logger.GetLogger()
	log.Info("Starting "+config.ServiceName, cfg.LogConfig()...)

	metrics := prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", cfg.Metrics.Prefix))

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	e := handler.NewRouter(handler.RouterOptions{
		Store:       store,
		Metrics:     metrics,
		Gatherer:    prom.DefaultGatherer,
		AuthEnabled: cfg.JWT.Enabled,
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Info("Server stopped")
	return nil
}

func migrate(c *cli.Context) error {
	cfg := appConfig(c)
	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer closer(db)()
	return database.Migrate(db)
}

func issueToken(c *cli.Context) error {
	token, err := jwtutil.GenerateToken(c.String("subject"), c.String("role"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
