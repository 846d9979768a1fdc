package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Ashu12122005/ppp-management/internal/app"
	"github.com/Ashu12122005/ppp-management/internal/config"
	"github.com/Ashu12122005/ppp-management/internal/db"
	"github.com/Ashu12122005/ppp-management/internal/migrate"
	"github.com/Ashu12122005/ppp-management/migrations"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer database.Close()

	if cfg.AutoMigrate {
		if err := migrate.Run(ctx, database, migrations.FS); err != nil {
			log.Fatalf("run migrations: %v", err)
		}
	}

	application, err := app.New(cfg, database)
	if err != nil {
		log.Fatalf("build app: %v", err)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
