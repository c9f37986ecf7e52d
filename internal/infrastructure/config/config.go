package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the mapper. All
// configuration is loaded from YAML and can be overridden by environment
// variables (spec §6).
type Config struct {
	GRPCServer GRPCServerConfig `yaml:"grpc_server"`
	Common     CommonConfig     `yaml:"common"`
	Database   DatabaseConfig   `yaml:"database"`
	Publish    PublishConfig    `yaml:"publish"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GRPCServerConfig contains the control-plane UDS listener settings.
type GRPCServerConfig struct {
	SocketPath string `yaml:"socket_path"`
}

// CommonConfig contains mapper identity and transport settings shared
// across the control-plane client/server and the admin HTTP server.
type CommonConfig struct {
	Name         string `yaml:"name"`
	Version      string `yaml:"version"`
	APIVersion   string `yaml:"api_version"`
	Protocol     string `yaml:"protocol"`
	Address      string `yaml:"address"`
	EdgecoreSock string `yaml:"edgecore_sock"`
	HTTPPort     int    `yaml:"http_port"`
}

// DatabaseConfig groups the recorder backends a device property can target
// (spec §4.B).
type DatabaseConfig struct {
	MySQL     MySQLConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	InfluxDB2 InfluxDB2Config `yaml:"influxdb2"`
	TDengine  TDengineConfig  `yaml:"tdengine"`
}

// MySQLConfig contains MySQL recorder connection settings.
type MySQLConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains Redis recorder connection settings.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// InfluxDB2Config contains InfluxDB2 recorder connection settings.
type InfluxDB2Config struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
	Token   string `yaml:"token"`
}

// TDengineConfig contains TDengine (taosAdapter REST) recorder settings.
type TDengineConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	DBName   string `yaml:"dbname"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// PublishConfig holds a push-publisher method and its config, loaded from
// YAML and the PUBLISH_METHOD/PUBLISH_CONFIG overrides. No other package
// reads it: a property without its own pushMethod is not published.
type PublishConfig struct {
	Method string `yaml:"method"` // http|mqtt|otel|unknown
	Config string `yaml:"config"` // JSON string, stored as given and not parsed
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		GRPCServer: GRPCServerConfig{
			SocketPath: "/tmp/mapper_dmi.sock",
		},
		Common: CommonConfig{
			Name:         "edge-mapper",
			Version:      "0.1.0",
			APIVersion:   "v1beta1",
			Protocol:     "modbus",
			EdgecoreSock: "unix:///etc/kubeedge/dmi.sock",
			HTTPPort:     7777,
		},
		Database: DatabaseConfig{
			MySQL:     MySQLConfig{Port: 3306, SSLMode: "disable"},
			Redis:     RedisConfig{Port: 6379},
			InfluxDB2: InfluxDB2Config{},
			TDengine:  TDengineConfig{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration (spec §6's env-var list).
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EDGECORE_SOCK"); v != "" {
		cfg.Common.EdgecoreSock = v
	}

	if v := os.Getenv("MYSQL_ENABLED"); v != "" {
		cfg.Database.MySQL.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		cfg.Database.MySQL.Password = v
	} else if v := os.Getenv("PASSWORD"); v != "" {
		cfg.Database.MySQL.Password = v
	}
	if v := os.Getenv("MYSQL_SSL_MODE"); v != "" {
		cfg.Database.MySQL.SSLMode = v
	}

	if v := os.Getenv("TDENGINE_ADDR"); v != "" {
		cfg.Database.TDengine.Addr = v
	}
	if v := os.Getenv("TDENGINE_DBNAME"); v != "" {
		cfg.Database.TDengine.DBName = v
	}
	if v := os.Getenv("TDENGINE_USER"); v != "" {
		cfg.Database.TDengine.User = v
	}
	if v := os.Getenv("TDENGINE_PASSWORD"); v != "" {
		cfg.Database.TDengine.Password = v
	}

	if v := os.Getenv("TOKEN"); v != "" {
		cfg.Database.InfluxDB2.Token = v
	}

	if v := os.Getenv("PUBLISH_METHOD"); v != "" {
		cfg.Publish.Method = v
	}
	if v := os.Getenv("PUBLISH_CONFIG"); v != "" {
		cfg.Publish.Config = v
	}

	if v := os.Getenv("MAPPER_MODBUS_ADDR"); v != "" {
		cfg.Common.Address = v
	}
	if v := os.Getenv("MAPPER_MODBUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Common.HTTPPort = port
		}
	}
}

// Validate checks the configuration for errors, accumulating every problem
// found rather than failing on the first.
func (c *Config) Validate() error {
	var errs []error

	if c.GRPCServer.SocketPath == "" {
		errs = append(errs, errors.New("grpc_server.socket_path is required"))
	}
	if c.Common.Name == "" {
		errs = append(errs, errors.New("common.name is required"))
	}
	if c.Common.HTTPPort < 1 || c.Common.HTTPPort > 65535 {
		errs = append(errs, errors.New("common.http_port must be between 1 and 65535"))
	}
	if c.Database.MySQL.Enabled && c.Database.MySQL.Addr == "" {
		errs = append(errs, errors.New("database.mysql.addr is required when database.mysql.enabled is true"))
	}
	if c.Database.Redis.Enabled && c.Database.Redis.Addr == "" {
		errs = append(errs, errors.New("database.redis.addr is required when database.redis.enabled is true"))
	}
	if c.Database.InfluxDB2.Enabled && c.Database.InfluxDB2.URL == "" {
		errs = append(errs, errors.New("database.influxdb2.url is required when database.influxdb2.enabled is true"))
	}
	if c.Database.TDengine.Enabled && c.Database.TDengine.Addr == "" {
		errs = append(errs, errors.New("database.tdengine.addr is required when database.tdengine.enabled is true"))
	}

	return errors.Join(errs...)
}
