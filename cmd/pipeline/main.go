package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-join-pipeline/internal/app"
	"go-join-pipeline/internal/config"
)

// Standalone join worker. It consumes from RabbitMQ, so any number of these
// can run next to the API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}
	if cfg.QueueBroker != config.BrokerRabbitMQ {
		log.Fatalf("❌ standalone workers need QUEUE_BROKER=%s, got %q", config.BrokerRabbitMQ, cfg.QueueBroker)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.Default()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("❌ startup: %v", err)
	}

	if err := a.NewWorker().Run(ctx); err != nil {
		logger.Printf("❌ workers: %v", err)
	}

	if err := a.Close(); err != nil {
		logger.Printf("❌ shutdown: %v", err)
	}
}
