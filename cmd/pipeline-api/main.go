package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "go-join-pipeline/docs"
	"go-join-pipeline/internal/api"
	"go-join-pipeline/internal/api/handler"
	"go-join-pipeline/internal/app"
	"go-join-pipeline/internal/config"
)

// @title Dataset Join API
// @version 1.0
// @description Upload CSV datasets and join them with remote JSON records in the background.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.Default()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("❌ startup: %v", err)
	}

	// An in-process broker is only reachable from this process, so the
	// workers run here too.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	if cfg.QueueBroker == config.BrokerMemory {
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := a.NewWorker().Run(workerCtx); err != nil {
				logger.Printf("❌ workers: %v", err)
			}
		}()
	}

	// Create router and register API routes
	h := handler.New(a.Store, a.Tasks, a.Status, a.Archive, logger)
	r := api.NewServer(h)

	// Start server
	if err := r.Start(ctx, cfg.HTTPAddr, 15*time.Second); err != nil {
		logger.Printf("❌ server: %v", err)
	}

	stopWorkers()
	workers.Wait()
	if err := a.Close(); err != nil {
		logger.Printf("❌ shutdown: %v", err)
	}
	logger.Println("👋 bye")
}
