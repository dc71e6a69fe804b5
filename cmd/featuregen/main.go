package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"aquaculture-platform/internal/config"
	"aquaculture-platform/internal/repository"
	"aquaculture-platform/internal/services"
	"aquaculture-platform/pkg/cache"
	"aquaculture-platform/pkg/database"
	"aquaculture-platform/pkg/logging"
	"aquaculture-platform/pkg/metrics"
)

func main() {
	// Parse command-line flags
	tankIDs := flag.String("tanks", "", "Comma-separated tank IDs to process")
	startStr := flag.String("start", "", "Range start (RFC3339)")
	endStr := flag.String("end", "", "Range end (RFC3339), defaults to start")
	intervalHours := flag.Int("interval-hours", 1, "Target-time step within the range")
	save := flag.Bool("save", false, "Persist generated feature rows")
	flag.Parse()

	if *tankIDs == "" || *startStr == "" {
		fmt.Fprintln(os.Stderr, "Usage: featuregen -tanks <id,...> -start <RFC3339> [-end <RFC3339>] [-interval-hours N] [-save]")
		os.Exit(1)
	}

	start, err := time.Parse(time.RFC3339, *startStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -start: %v\n", err)
		os.Exit(1)
	}

	end := start
	if *endStr != "" {
		end, err = time.Parse(time.RFC3339, *endStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -end: %v\n", err)
			os.Exit(1)
		}
	}

	tanks := strings.Split(*tankIDs, ",")
	for i := range tanks {
		tanks[i] = strings.TrimSpace(tanks[i])
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("featuregen", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[FEATUREGEN_START] Starting batch feature generation", logging.Fields{
		"version":        "1.0.0",
		"tanks":          len(tanks),
		"start":          start.Format(time.RFC3339),
		"end":            end.Format(time.RFC3339),
		"interval_hours": *intervalHours,
		"save":           *save,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("aquaculture_featuregen")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[FEATUREGEN_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize result cache
	redisCache, err := cache.NewRedisCache(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Fatal(ctx, "[FEATUREGEN_ERROR] Failed to connect to redis", logging.Fields{}, err)
	}
	defer redisCache.Close()

	// Initialize repository and feature pipeline
	sensorRepo := repository.NewSensorRepository(db, logger, metricsCollector)

	featureConfig, err := cfg.FeatureConfig()
	if err != nil {
		logger.Fatal(ctx, "[FEATUREGEN_ERROR] Invalid feature configuration", logging.Fields{}, err)
	}

	featureService, err := services.NewFeatureService(sensorRepo, redisCache, featureConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[FEATUREGEN_ERROR] Failed to initialize feature service", logging.Fields{}, err)
	}

	// Run the batch
	result, err := featureService.BatchEngineerFeatures(ctx, tanks, start, end, *intervalHours)
	if err != nil {
		logger.Fatal(ctx, "[FEATUREGEN_ERROR] Batch run failed", logging.Fields{}, err)
	}

	if *save && len(result.Rows) > 0 {
		if err := featureService.SaveFeatures(ctx, result.Rows); err != nil {
			logger.Fatal(ctx, "[FEATUREGEN_SAVE_ERROR] Failed to persist feature rows", logging.Fields{
				"run_id": result.RunID,
				"rows":   len(result.Rows),
			}, err)
		}
	}

	logger.Info(ctx, "[FEATUREGEN_COMPLETE] Batch feature generation finished", logging.Fields{
		"run_id":           result.RunID,
		"units":            result.Units,
		"succeeded":        result.Succeeded,
		"empty":            result.Empty,
		"failed":           result.Failed,
		"rows":             len(result.Rows),
		"saved":            *save,
		"duration_seconds": result.Duration.Seconds(),
	})

	if result.Failed > 0 && result.Succeeded == 0 {
		os.Exit(1)
	}
}
