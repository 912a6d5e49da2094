// Package main provides the entry point for the odds scanner daemon: the
// long-running process that syncs events, recomputes predictions and raises
// value-bet alerts on a cron schedule.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/oddsedge/internal/config"
	"github.com/yourusername/oddsedge/internal/database"
	"github.com/yourusername/oddsedge/internal/datasource"
	"github.com/yourusername/oddsedge/internal/features"
	"github.com/yourusername/oddsedge/internal/health"
	applogger "github.com/yourusername/oddsedge/internal/logger"
	"github.com/yourusername/oddsedge/internal/repository"
	"github.com/yourusername/oddsedge/internal/scheduler"
	"github.com/yourusername/oddsedge/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	jitterSeed int64
	logger     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().Int64Var(&jitterSeed, "jitter-seed", 0, "Seed for confidence jitter (used only when pipeline.jitter_enabled)")
}

var rootCmd = &cobra.Command{
	Use:   "scanner",
	Short: "Run the odds scanning and value-bet detection daemon",
	Long:  `Runs the full pipeline on a cron schedule: event sync, prediction recompute, drift refresh, value-bet scans and alert expiry.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		runDaemon()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func setupDependencies() error {
	logger = applogger.NewLogger(cfg.App.LogLevel)

	ctx := context.Background()
	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func runDaemon() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Odds provider
	factory := datasource.NewFactory(logger)
	provider, err := factory.NewOddsProvider("", cfg.OddsProvider)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create odds provider")
	}
	defer provider.Close()

	// Feature sources: live stats API first, persisted history second,
	// neutral defaults are implicit
	redisClient := features.NewRedisClient(cfg.Redis)
	if redisClient != nil {
		if err := features.PingRedis(ctx, redisClient); err != nil {
			logger.WithError(err).Warn("Redis unreachable, feature cache degrades to in-process only")
		}
		defer redisClient.Close()
	}
	featureCache := features.NewCache(redisClient, cfg.Cache, logger)

	statsSource := features.NewStatsAPISource(cfg.StatsProvider, logger)
	defer statsSource.Close()
	historySource := features.NewHistorySource(repos.Sport, repos.Event)
	featureProvider := features.NewTieredProvider(featureCache, logger, statsSource, historySource)

	// Pipeline services
	var noise service.NoiseSource
	if cfg.Pipeline.JitterEnabled {
		noise = service.NewSeededNoise(jitterSeed, 0.06)
	}
	aggregator := service.NewOddsAggregator()
	normalizer := service.NewProbabilityNormalizer(noise, logger)
	alerts := service.NewAlertService(repos.Alert, logger)
	detector := service.NewValueBetDetector(repos, cfg.Pipeline.MinValue, logger)
	tracker := service.NewOddsTracker(repos.Event, repos.Market, repos.Odds, alerts, logger)
	eventSync := service.NewEventSyncService(provider, repos.Sport, repos.Event, tracker, cfg.Pipeline.MaxSports, logger)
	recompute := service.NewRecomputeScheduler(aggregator, normalizer, featureProvider, repos, cfg.Pipeline, logger)

	sched := scheduler.New(recompute, detector, eventSync, alerts, cfg, logger)
	if err := sched.ScheduleAll(); err != nil {
		logger.WithError(err).Fatal("Failed to schedule pipeline tasks")
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: "scanner",
		Version:     Version,
		Commit:      GitCommit,
		Port:        fmt.Sprintf("%d", cfg.Metrics.Port),
		Logger:      logger,
		DB:          db,
		Providers:   []health.ProviderChecker{provider, statsSource},
	})
	if err := healthServer.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start health server")
	}

	if err := sched.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start scheduler")
	}
	healthServer.SetReady(true)

	logger.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"jobs":        len(sched.Entries()),
	}).Info("Scanner daemon started")

	<-sigChan
	logger.Info("Shutdown signal received")

	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		logger.WithError(err).Error("Scheduler shutdown error")
	}
	if err := healthServer.Shutdown(); err != nil {
		logger.WithError(err).Error("Health server shutdown error")
	}
	db.Close()

	logger.Info("Scanner daemon stopped")
}
