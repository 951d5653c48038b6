package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shakibbs/Event-Backend/internal/infra/app"
	"github.com/shakibbs/Event-Backend/internal/infra/config"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("start event management API: %v", err)
	}

	if err := api.Run(ctx); err != nil {
		log.Printf("event management API stopped: %v", err)
		stop()
		os.Exit(1)
	}
}
