package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"certgen/certificate-backend/internal/app"
	"certgen/certificate-backend/internal/batch"
	"certgen/certificate-backend/internal/config"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	once := flag.Bool("once", false, "process the inbox once and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise", zap.Error(err))
	}

	worker, err := batch.NewWorker(a.Runner, batch.WorkerConfig{
		InboxDir:  cfg.Batch.InboxDir,
		OutputDir: cfg.Render.OutputDir,
		Schedule:  cfg.Batch.Schedule,
	}, logger.Named("worker"))
	if err != nil {
		logger.Fatal("Failed to create worker", zap.Error(err))
	}

	if *once {
		n, err := worker.ProcessInbox(ctx)
		if err != nil {
			logger.Fatal("Inbox scan failed", zap.Error(err))
		}
		logger.Info("Inbox processed", zap.Int("rosters", n))
		return
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := worker.Start(ctx); err != nil {
		logger.Fatal("Worker error", zap.Error(err))
	}

	<-sigChan
	logger.Info("Shutdown signal received")
	cancel()
	worker.Stop()
	logger.Info("Roster worker stopped")
}
