// Package main provides a one-shot value-bet scan: detect candidates for a
// sport and print them as JSON, without touching stored alerts unless asked.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/oddsedge/internal/config"
	"github.com/yourusername/oddsedge/internal/database"
	applogger "github.com/yourusername/oddsedge/internal/logger"
	"github.com/yourusername/oddsedge/internal/repository"
	"github.com/yourusername/oddsedge/internal/service"
)

var (
	configFile   string
	sportKey     string
	minValue     float64
	lookAheadHrs int
	createAlerts bool
	logger       *logrus.Logger
	cfg          *config.Config
	db           *database.DB
	repos        *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&sportKey, "sport", "s", "", "Sport key to scan (required)")
	rootCmd.Flags().Float64Var(&minValue, "min-value", 0, "Minimum adjusted value (defaults to pipeline.min_value)")
	rootCmd.Flags().IntVar(&lookAheadHrs, "hours", 0, "Look-ahead window in hours (defaults to pipeline.look_ahead_hours)")
	rootCmd.Flags().BoolVar(&createAlerts, "create-alerts", false, "Upsert alerts for qualifying candidates")
	rootCmd.MarkFlagRequired("sport")
}

var rootCmd = &cobra.Command{
	Use:   "detect",
	Short: "Scan stored predictions and odds for value bets",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd.Context())
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
	return config.Validate(cfg)
}

func setupDependencies() error {
	logger = applogger.NewLogger(cfg.App.LogLevel)

	var err error
	db, err = database.NewDB(context.Background(), &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func runScan(ctx context.Context) error {
	defer db.Close()

	window := cfg.Pipeline.LookAheadWindow()
	if lookAheadHrs > 0 {
		window = time.Duration(lookAheadHrs) * time.Hour
	}

	opts := service.DetectionOptions{
		MinValue:         minValue,
		AutoCreateAlerts: createAlerts,
	}

	detector := service.NewValueBetDetector(repos, cfg.Pipeline.MinValue, logger)
	result, err := detector.DetectForSport(ctx, sportKey, window, opts)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"sport_key":  sportKey,
		"candidates": len(result.Candidates),
		"errors":     result.Errors,
	}).Info("Scan completed")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Candidates)
}
