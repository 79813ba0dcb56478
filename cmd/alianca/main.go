package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alianca-go/internal/app"
	"alianca-go/internal/config"
	"alianca-go/internal/db"
	"alianca-go/internal/transport/httpserver"
	"alianca-go/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	log := logger.NewFromEnv()

	if *migrateOnly {
		os.Exit(runMigrations(log))
	}
	os.Exit(serve(log))
}

func runMigrations(log logger.Logger) int {
	cfg, err := config.Load(log)
	if err != nil {
		log.Critical("migrate: config failed", "err", err)
		return 1
	}
	if err := db.Migrate(cfg.DB.URL()); err != nil {
		log.Critical("migrate: failed", "err", err)
		return 1
	}
	log.Info("migrate: schema is current")
	return 0
}

func serve(log logger.Logger) int {
	log.Info("app: starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(log)
	if err != nil {
		log.Critical("app: init failed", "err", err)
		return 1
	}

	exitCode := 0
	if err := httpserver.Run(ctx, application.HTTPServer(), nil, shutdownTimeout, log); err != nil {
		exitCode = 1
	}
	if err := application.Close(); err != nil {
		log.Error("app: close failed", "err", err)
		exitCode = 1
	}

	if exitCode == 0 {
		log.Info("app: stopped")
	}
	return exitCode
}
