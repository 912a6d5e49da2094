package config

import (
	"os"
	"strings"
	"testing"
)

const (
	validConfigPath            = "testdata/valid_config.yaml"
	expansionConfigPath        = "testdata/expansion_config.yaml"
	expansionConfigMissingPath = "testdata/expansion_config_missing.yaml"
	nonexistentConfigPath      = "testdata/nonexistent_config.yaml"

	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"

	appName        = "oddsedge"
	developmentEnv = "development"
	invalidEnv     = "invalid"
	localhostHost  = "localhost"
	postgresPort   = 5432
	postgresPrefix = "postgres://"
	testAppName    = "test-app"
)

func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != appName {
		t.Errorf("expected app name '%s', got '%s'", appName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}

	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}

	if cfg.Pipeline.MinValue != 0.05 {
		t.Errorf("expected min value 0.05, got %f", cfg.Pipeline.MinValue)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	os.Setenv("ODDSEDGE_APP_NAME", testAppName)
	defer os.Unsetenv("ODDSEDGE_APP_NAME")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

func TestLoadConfigPlaceholderExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	defer os.Unsetenv("TEST_DB_PASSWORD")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected expanded password, got '%s'", cfg.Database.Password)
	}
}

func TestLoadConfigPlaceholderMissing(t *testing.T) {
	cfg, err := Load(expansionConfigMissingPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	// Missing placeholders expand to empty, which validation rejects
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unexpanded placeholder")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Pipeline.MinValue != 0.05 {
		t.Errorf("expected default min value 0.05, got %f", cfg.Pipeline.MinValue)
	}
	if cfg.Pipeline.DriftThreshold != 0.05 {
		t.Errorf("expected default drift threshold 0.05, got %f", cfg.Pipeline.DriftThreshold)
	}
	if cfg.Pipeline.JitterEnabled {
		t.Error("expected jitter disabled by default")
	}
	if cfg.Metrics.Port != 9100 {
		t.Errorf("expected default metrics port 9100, got %d", cfg.Metrics.Port)
	}
}

func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = invalidEnv
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

func TestValidateInvalidMarkets(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.OddsProvider.Markets = []string{"FOO", "BAR"}
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid markets")
	}

	if !strings.Contains(strings.ToLower(err.Error()), "market") {
		t.Errorf("expected markets validation error, got: %v", err)
	}
}

func TestValidateEmptyMarkets(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.OddsProvider.Markets = []string{}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for empty markets")
	}
}

func TestValidateValidMarkets(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.OddsProvider.Markets = []string{"h2h"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no error for single valid market, got %v", err)
	}

	cfg.OddsProvider.Markets = []string{"h2h", "totals", "spreads", "btts"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no error for multiple valid markets, got %v", err)
	}
}

func TestValidateCrossField(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Pipeline.RefreshWindowHours = cfg.Pipeline.LookAheadHours + 1
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when refresh window exceeds look-ahead")
	}
}

func TestValidateProductionRequiresSSL(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "disable"
	cfg.OddsProvider.APIKey = "k-7f3a9b1c"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for production without SSL")
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	dsn := cfg.GetDatabaseDSN()
	if dsn == "" {
		t.Fatal("expected non-empty DSN")
	}

	if !strings.HasPrefix(dsn, postgresPrefix) {
		t.Errorf("expected DSN to start with '%s', got '%s'", postgresPrefix, dsn)
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: developmentEnv},
	}

	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}

	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}

func TestPipelineDurations(t *testing.T) {
	cfg := PipelineConfig{
		LookAheadHours:     48,
		RefreshWindowHours: 6,
		BatchPauseMillis:   500,
	}

	if cfg.LookAheadWindow().Hours() != 48 {
		t.Errorf("expected 48h look-ahead, got %v", cfg.LookAheadWindow())
	}
	if cfg.RefreshWindow().Hours() != 6 {
		t.Errorf("expected 6h refresh window, got %v", cfg.RefreshWindow())
	}
	if cfg.BatchPause().Milliseconds() != 500 {
		t.Errorf("expected 500ms batch pause, got %v", cfg.BatchPause())
	}
}
