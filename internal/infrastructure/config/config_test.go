package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "bl04"
  name: "Beamline 04"
database:
  path: "/tmp/spectra-test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "spectra-test"
  qos: 1
pool:
  workers: 2
  queue_size: 500
controllers:
  - name: "ctrl/motor/icepap01"
    alias: "icepap01"
    type: "Motor"
    library: "IcePAP"
    class: "IcePAPController"
    id: 1
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "bl04" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "bl04")
	}
	if cfg.Database.Path != "/tmp/spectra-test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/spectra-test.db")
	}
	if cfg.Pool.Workers != 2 {
		t.Errorf("Pool.Workers = %d, want 2", cfg.Pool.Workers)
	}
	if cfg.Pool.QueueSize != 500 {
		t.Errorf("Pool.QueueSize = %d, want 500", cfg.Pool.QueueSize)
	}
	if len(cfg.Controllers) != 1 {
		t.Fatalf("len(Controllers) = %d, want 1", len(cfg.Controllers))
	}
	if cfg.Controllers[0].Class != "IcePAPController" {
		t.Errorf("Controllers[0].Class = %q, want %q", cfg.Controllers[0].Class, "IcePAPController")
	}
}

func TestLoad_Defaults(t *testing.T) {
	// A minimal file keeps every default except what it sets.
	content := `
site:
  id: "bench"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want default 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Pool.Workers != 1 {
		t.Errorf("Pool.Workers = %d, want default 1", cfg.Pool.Workers)
	}
	if cfg.Pool.QueueSize != 1000 {
		t.Errorf("Pool.QueueSize = %d, want default 1000", cfg.Pool.QueueSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SPECTRA_DATABASE_PATH", "/tmp/env-override.db")
	t.Setenv("SPECTRA_MQTT_HOST", "broker.lab")
	t.Setenv("SPECTRA_MQTT_PORT", "8883")
	t.Setenv("SPECTRA_LOG_LEVEL", "debug")

	content := `
site:
  id: "bench"
database:
  path: "/tmp/from-file.db"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/env-override.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "broker.lab" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "empty site id",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: true,
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "zero pool workers",
			mutate:  func(c *Config) { c.Pool.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "zero queue size",
			mutate:  func(c *Config) { c.Pool.QueueSize = 0 },
			wantErr: true,
		},
		{
			name: "controller without class",
			mutate: func(c *Config) {
				c.Controllers = []ControllerConfig{{Name: "ctrl/motor/a", ID: 1}}
			},
			wantErr: true,
		},
		{
			name: "duplicate controller names",
			mutate: func(c *Config) {
				c.Controllers = []ControllerConfig{
					{Name: "ctrl/motor/a", Class: "DummyMotorController", ID: 1},
					{Name: "ctrl/motor/a", Class: "DummyMotorController", ID: 2},
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
