package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Clear all environment variables that might interfere
	envVars := []string{
		"COMMS_URL", "SERVICE_NAME",
		"DISPATCH_SUBJECT", "DESCRIBE_SUBJECT", "SETTINGS_CHANGE_EVENT_SUBJECT",
		"REQUEST_TIMEOUT", "TARGETS_FILE",
		"DATABASE_URL", "RUN_MIGRATIONS", "MIGRATION_PATH",
		"HTTP_PORT", "HEALTH_CHECK_TIMEOUT", "LOG_LEVEL",
	}
	for _, env := range envVars {
		os.Unsetenv(env)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	// Verify defaults
	if cfg.COMMSURL != "nats://127.0.0.1:4222" {
		t.Errorf("config:config_test - COMMSURL = %q, want %q", cfg.COMMSURL, "nats://127.0.0.1:4222")
	}
	if cfg.COMMSName != "settings-dispatch" {
		t.Errorf("config:config_test - COMMSName = %q, want %q", cfg.COMMSName, "settings-dispatch")
	}
	if cfg.DispatchSubject != "" {
		t.Errorf("config:config_test - DispatchSubject = %q, want empty", cfg.DispatchSubject)
	}
	if cfg.DescribeSubject != "" {
		t.Errorf("config:config_test - DescribeSubject = %q, want empty", cfg.DescribeSubject)
	}
	if cfg.ChangeEventSubject != "" {
		t.Errorf("config:config_test - ChangeEventSubject = %q, want empty", cfg.ChangeEventSubject)
	}
	if cfg.RequestTimeout != 25*time.Second {
		t.Errorf("config:config_test - RequestTimeout = %v, want 25s", cfg.RequestTimeout)
	}
	if cfg.TargetsFile != "" {
		t.Errorf("config:config_test - TargetsFile = %q, want empty", cfg.TargetsFile)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("config:config_test - DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.RunMigrations {
		t.Error("config:config_test - expected RunMigrations=false by default")
	}
	if cfg.MigrationPath != "migrations" {
		t.Errorf("config:config_test - MigrationPath = %q, want %q", cfg.MigrationPath, "migrations")
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("config:config_test - HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.HealthCheckTimeout != 5*time.Second {
		t.Errorf("config:config_test - HealthCheckTimeout = %v, want 5s", cfg.HealthCheckTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("config:config_test - LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	// Set environment variables
	overrides := map[string]string{
		"COMMS_URL":                     "nats://custom:4222",
		"SERVICE_NAME":                  "test-server",
		"DISPATCH_SUBJECT":              "custom.dispatch",
		"DESCRIBE_SUBJECT":              "custom.describe",
		"SETTINGS_CHANGE_EVENT_SUBJECT": "custom.changed",
		"REQUEST_TIMEOUT":               "10s",
		"TARGETS_FILE":                  "/tmp/targets.json",
		"DATABASE_URL":                  "postgres://test@localhost/test",
		"RUN_MIGRATIONS":                "true",
		"MIGRATION_PATH":                "/tmp/migrations",
		"HTTP_PORT":                     "9090",
		"HEALTH_CHECK_TIMEOUT":          "10s",
		"LOG_LEVEL":                     "debug",
	}

	for key, val := range overrides {
		os.Setenv(key, val)
	}
	defer func() {
		for key := range overrides {
			os.Unsetenv(key)
		}
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if cfg.COMMSURL != "nats://custom:4222" {
		t.Errorf("config:config_test - COMMSURL = %q, want %q", cfg.COMMSURL, "nats://custom:4222")
	}
	if cfg.COMMSName != "test-server" {
		t.Errorf("config:config_test - COMMSName = %q, want %q", cfg.COMMSName, "test-server")
	}
	if cfg.DispatchSubject != "custom.dispatch" {
		t.Errorf("config:config_test - DispatchSubject = %q, want %q", cfg.DispatchSubject, "custom.dispatch")
	}
	if cfg.DescribeSubject != "custom.describe" {
		t.Errorf("config:config_test - DescribeSubject = %q, want %q", cfg.DescribeSubject, "custom.describe")
	}
	if cfg.ChangeEventSubject != "custom.changed" {
		t.Errorf("config:config_test - ChangeEventSubject = %q, want %q", cfg.ChangeEventSubject, "custom.changed")
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("config:config_test - RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.TargetsFile != "/tmp/targets.json" {
		t.Errorf("config:config_test - TargetsFile = %q, want %q", cfg.TargetsFile, "/tmp/targets.json")
	}
	if cfg.DatabaseURL != "postgres://test@localhost/test" {
		t.Errorf("config:config_test - DatabaseURL = %q, unexpected", cfg.DatabaseURL)
	}
	if !cfg.RunMigrations {
		t.Error("config:config_test - expected RunMigrations=true")
	}
	if cfg.MigrationPath != "/tmp/migrations" {
		t.Errorf("config:config_test - MigrationPath = %q, want %q", cfg.MigrationPath, "/tmp/migrations")
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("config:config_test - HTTPPort = %d, want 9090", cfg.HTTPPort)
	}
	if cfg.HealthCheckTimeout != 10*time.Second {
		t.Errorf("config:config_test - HealthCheckTimeout = %v, want 10s", cfg.HealthCheckTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("config:config_test - LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestValidateForServe(t *testing.T) {
	cfg := &Config{
		TargetsFile:        "targets.json",
		RequestTimeout:     25 * time.Second,
		HealthCheckTimeout: 5 * time.Second,
	}
	if err := cfg.ValidateForServe(); err != nil {
		t.Errorf("config:config_test - ValidateForServe returned %v, want nil", err)
	}

	cfg.TargetsFile = ""
	if err := cfg.ValidateForServe(); err == nil {
		t.Error("config:config_test - expected error when TargetsFile empty")
	}

	cfg.TargetsFile = "targets.json"
	cfg.RequestTimeout = 0
	if err := cfg.ValidateForServe(); err == nil {
		t.Error("config:config_test - expected error when RequestTimeout is zero")
	}
}

func TestValidateForDB(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://test@localhost/test"}
	if err := cfg.ValidateForDB(); err != nil {
		t.Errorf("config:config_test - ValidateForDB returned %v, want nil", err)
	}

	cfg.DatabaseURL = ""
	if err := cfg.ValidateForDB(); err == nil {
		t.Error("config:config_test - expected error when DatabaseURL empty")
	}
}
