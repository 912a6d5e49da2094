// Package main provides a one-shot event sync: mirror the provider's active
// sports and upcoming events into the local store, then exit. Intended for
// bootstrap and cron-external scheduling.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/yourusername/oddsedge/internal/config"
	"github.com/yourusername/oddsedge/internal/database"
	"github.com/yourusername/oddsedge/internal/datasource"
	applogger "github.com/yourusername/oddsedge/internal/logger"
	"github.com/yourusername/oddsedge/internal/repository"
	"github.com/yourusername/oddsedge/internal/service"
)

func main() {
	configFile := "config/config.yaml"
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := applogger.NewLogger(cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize repositories")
	}

	factory := datasource.NewFactory(logger)
	provider, err := factory.NewOddsProvider("", cfg.OddsProvider)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create odds provider")
	}
	defer provider.Close()

	alerts := service.NewAlertService(repos.Alert, logger)
	tracker := service.NewOddsTracker(repos.Event, repos.Market, repos.Odds, alerts, logger)
	sync := service.NewEventSyncService(provider, repos.Sport, repos.Event, tracker, cfg.Pipeline.MaxSports, logger)
	result, err := sync.Sync(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Event sync failed")
	}

	logger.WithField("result", result).Info("Event sync finished")
	if result.Errors > 0 {
		os.Exit(1)
	}
}
