package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("SPECTRA_CONFIG")
	defer os.Setenv("SPECTRA_CONFIG", originalEnv)

	os.Setenv("SPECTRA_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails config validation when
// the database path is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
site:
  id: test-site

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "test-client"
  qos: 1

influxdb:
  enabled: false

logging:
  level: error
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	originalEnv := os.Getenv("SPECTRA_CONFIG")
	defer os.Setenv("SPECTRA_CONFIG", originalEnv)
	os.Setenv("SPECTRA_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when database.path is empty")
	}
}

// TestGetConfigPath verifies environment variable override.
func TestGetConfigPath(t *testing.T) {
	originalEnv := os.Getenv("SPECTRA_CONFIG")
	defer os.Setenv("SPECTRA_CONFIG", originalEnv)

	os.Unsetenv("SPECTRA_CONFIG")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	os.Setenv("SPECTRA_CONFIG", "/etc/spectra/config.yaml")
	if got := getConfigPath(); got != "/etc/spectra/config.yaml" {
		t.Errorf("getConfigPath() = %q, want override", got)
	}
}
