package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bizmesh/bizmesh/internal/cache"
	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/social"
	"github.com/bizmesh/bizmesh/pkg/config"
	"github.com/bizmesh/bizmesh/pkg/logging"
	"github.com/bizmesh/bizmesh/pkg/telemetry"
)

func main() {
	once := flag.Bool("once", false, "run a single refresh and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting BizMesh trending refresher")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Upserts drop the API's cached trending lists
	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services := social.NewServices(db.NewRepository(database.DB), redisCache, cfg.Social)

	if *once {
		written, err := services.Refresher.Refresh(ctx)
		if err != nil {
			logger.Fatal("Trending refresh failed", zap.Error(err))
		}
		logger.Info("Trending refresh complete", zap.Int("topics", written))
		return
	}

	if err := services.Refresher.Run(ctx, cfg.Social.TrendingInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Trending refresher stopped", zap.Error(err))
	}
	logger.Info("Trending refresher exited")
}
