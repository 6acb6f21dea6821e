package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/bdpm-api/config"
	"github.com/giygas/bdpm-api/data"
	"github.com/giygas/bdpm-api/downloader"
	"github.com/giygas/bdpm-api/health"
	"github.com/giygas/bdpm-api/logging"
	"github.com/giygas/bdpm-api/scheduler"
	"github.com/giygas/bdpm-api/server"
	"github.com/giygas/bdpm-api/snapshot"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Options{
		Dir:            cfg.LogDir,
		Level:          logging.ParseLevel(cfg.LogLevel),
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	logging.Info("Configuration loaded",
		"env", cfg.Env,
		"data_dir", cfg.DataDir,
		"base_url", cfg.BaseURL,
		"refresh_interval", cfg.RefreshInterval.String())

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	dl, err := downloader.New(downloader.Options{
		Dir:     cfg.DataDir,
		BaseURL: cfg.BaseURL,
		Window:  cfg.FreshnessWindow,
		Workers: cfg.FetchWorkers,
	}, downloader.NewHTTPFetcher(cfg.FetchTimeout, cfg.UserAgent))
	if err != nil {
		logging.Error("Failed to prepare data directory", "error", err)
		os.Exit(1)
	}

	sched := scheduler.NewScheduler(dataContainer, dl, snapshot.NewBuilder(cfg.DataDir), cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg, dataContainer,
		health.NewHealthChecker(dataContainer, cfg.RefreshInterval, sched.NextRun))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case <-quit:
	case err := <-errChan:
		if err != nil {
			logging.Error("Server failed to start", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown error", "error", err)
	}
	sched.Stop()
	logging.Info("Shutdown complete")
}
