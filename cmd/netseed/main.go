package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HerbHall/netseed/internal/discover"
	"github.com/HerbHall/netseed/internal/netbox"
	"github.com/HerbHall/netseed/internal/plugin"
	"github.com/HerbHall/netseed/internal/server"
	"github.com/HerbHall/netseed/internal/simdata"
	"github.com/HerbHall/netseed/internal/store"
	"github.com/HerbHall/netseed/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("netseed server starting", zap.String("version", version.Short()))

	// Load configuration
	config, err := server.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Load the simulated discovery dataset once; it is immutable afterwards.
	dataset := simdata.Load(config.GetString("simdata.path"), logger)

	// Inventory client; degrades to simulate-only mode when unconfigured.
	inventory := netbox.New(netbox.Config{
		URL:       config.GetString("netbox.url"),
		Token:     config.GetString("netbox.token"),
		Timeout:   config.GetDuration("netbox.timeout"),
		RateLimit: config.GetFloat64("netbox.rate_limit"),
	}, logger.Named("netbox"))

	// Shared persistence for run history.
	db, err := store.New(config.GetString("store.path"))
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer db.Close()

	// Create module registry
	registry := plugin.NewRegistry(logger)

	metrics := discover.NewMetrics(prometheus.DefaultRegisterer)
	modules := []plugin.Plugin{
		discover.New(dataset, inventory, db, metrics, config.GetInt("discover.max_targets")),
	}
	for _, m := range modules {
		if err := registry.Register(m); err != nil {
			logger.Fatal("failed to register module", zap.Error(err))
		}
	}

	// Initialize all modules
	if err := registry.InitAll(config); err != nil {
		logger.Fatal("failed to initialize modules", zap.Error(err))
	}

	// Start modules
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := registry.StartAll(ctx); err != nil {
		logger.Fatal("failed to start modules", zap.Error(err))
	}

	// Create and start HTTP server
	addr := config.GetString("server.host") + ":" + config.GetString("server.port")
	srv := server.New(addr, registry, logger)

	// Start server in background
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("netseed server ready", zap.String("addr", addr))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	registry.StopAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("netseed server stopped")
}
