package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
grpc_server:
  socket_path: /tmp/test_mapper.sock
common:
  name: edge-mapper
  http_port: 7777
database:
  mysql:
    enabled: true
    addr: "127.0.0.1"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.GRPCServer.SocketPath != "/tmp/test_mapper.sock" {
		t.Errorf("GRPCServer.SocketPath = %q, want %q", cfg.GRPCServer.SocketPath, "/tmp/test_mapper.sock")
	}
	if cfg.Common.HTTPPort != 7777 {
		t.Errorf("Common.HTTPPort = %d, want 7777", cfg.Common.HTTPPort)
	}
	if !cfg.Database.MySQL.Enabled || cfg.Database.MySQL.Addr != "127.0.0.1" {
		t.Errorf("Database.MySQL = %+v, want enabled at 127.0.0.1", cfg.Database.MySQL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
common:
  name: ""
  http_port: 70000
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty name and bad port, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		cfg := defaultConfig()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "missing socket path", mutate: func(c *Config) { c.GRPCServer.SocketPath = "" }, wantErr: true},
		{name: "missing common name", mutate: func(c *Config) { c.Common.Name = "" }, wantErr: true},
		{name: "invalid port low", mutate: func(c *Config) { c.Common.HTTPPort = 0 }, wantErr: true},
		{name: "invalid port high", mutate: func(c *Config) { c.Common.HTTPPort = 70000 }, wantErr: true},
		{name: "mysql enabled without addr", mutate: func(c *Config) {
			c.Database.MySQL.Enabled = true
			c.Database.MySQL.Addr = ""
		}, wantErr: true},
		{name: "mysql enabled with addr", mutate: func(c *Config) {
			c.Database.MySQL.Enabled = true
			c.Database.MySQL.Addr = "127.0.0.1"
		}, wantErr: false},
		{name: "redis enabled without addr", mutate: func(c *Config) { c.Database.Redis.Enabled = true }, wantErr: true},
		{name: "influxdb2 enabled without url", mutate: func(c *Config) { c.Database.InfluxDB2.Enabled = true }, wantErr: true},
		{name: "tdengine enabled without addr", mutate: func(c *Config) { c.Database.TDengine.Enabled = true }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("EDGECORE_SOCK", "unix:///tmp/edgecore.sock")
	t.Setenv("MYSQL_ENABLED", "true")
	t.Setenv("MYSQL_PASSWORD", "sekrit")
	t.Setenv("MYSQL_SSL_MODE", "require")
	t.Setenv("TDENGINE_ADDR", "taos:6041")
	t.Setenv("TDENGINE_DBNAME", "telemetry")
	t.Setenv("TOKEN", "influx-token")
	t.Setenv("PUBLISH_METHOD", "mqtt")
	t.Setenv("MAPPER_MODBUS_ADDR", "10.0.0.5")
	t.Setenv("MAPPER_MODBUS_PORT", "8888")

	applyEnvOverrides(cfg)

	if cfg.Common.EdgecoreSock != "unix:///tmp/edgecore.sock" {
		t.Errorf("Common.EdgecoreSock = %q", cfg.Common.EdgecoreSock)
	}
	if !cfg.Database.MySQL.Enabled {
		t.Error("Database.MySQL.Enabled = false, want true")
	}
	if cfg.Database.MySQL.Password != "sekrit" {
		t.Errorf("Database.MySQL.Password = %q", cfg.Database.MySQL.Password)
	}
	if cfg.Database.MySQL.SSLMode != "require" {
		t.Errorf("Database.MySQL.SSLMode = %q", cfg.Database.MySQL.SSLMode)
	}
	if cfg.Database.TDengine.Addr != "taos:6041" || cfg.Database.TDengine.DBName != "telemetry" {
		t.Errorf("Database.TDengine = %+v", cfg.Database.TDengine)
	}
	if cfg.Database.InfluxDB2.Token != "influx-token" {
		t.Errorf("Database.InfluxDB2.Token = %q", cfg.Database.InfluxDB2.Token)
	}
	if cfg.Publish.Method != "mqtt" {
		t.Errorf("Publish.Method = %q", cfg.Publish.Method)
	}
	if cfg.Common.Address != "10.0.0.5" || cfg.Common.HTTPPort != 8888 {
		t.Errorf("Common.Address/HTTPPort = %q/%d", cfg.Common.Address, cfg.Common.HTTPPort)
	}
}

func TestApplyEnvOverrides_PasswordFallback(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("PASSWORD", "fallback-pass")

	applyEnvOverrides(cfg)

	if cfg.Database.MySQL.Password != "fallback-pass" {
		t.Errorf("Database.MySQL.Password = %q, want fallback-pass", cfg.Database.MySQL.Password)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Common.Name == "" {
		t.Error("defaultConfig should have non-empty Common.Name")
	}
	if cfg.GRPCServer.SocketPath == "" {
		t.Error("defaultConfig should have non-empty GRPCServer.SocketPath")
	}
	if cfg.Database.MySQL.Port != 3306 {
		t.Errorf("defaultConfig Database.MySQL.Port = %d, want 3306", cfg.Database.MySQL.Port)
	}
	if cfg.Common.HTTPPort != 7777 {
		t.Errorf("defaultConfig Common.HTTPPort = %d, want 7777", cfg.Common.HTTPPort)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate cleanly: %v", err)
	}
}
