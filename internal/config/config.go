package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"hellmusic/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Runtime    RuntimeConfig    `yaml:"runtime"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Exports    ExportConfig     `yaml:"exports"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// DatabaseConfig выбирает документное хранилище: mongo (url/name) или sqlite (path).
type DatabaseConfig struct {
	Driver  string        `yaml:"driver"`
	URL     string        `yaml:"url"`
	Name    string        `yaml:"name"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// RuntimeConfig описывает, где живут active_vc, loop и watcher.
type RuntimeConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env не обязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case models.DriverMongo:
		if c.Database.URL == "" {
			return errors.New("database url is required for mongo driver")
		}
	case models.DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required for sqlite driver")
		}
	default:
		return fmt.Errorf("database driver %q: %w", c.Database.Driver, models.ErrUnknownBackend)
	}

	switch c.Runtime.Backend {
	case models.RuntimeBackendMemory:
	case models.RuntimeBackendRedis, models.RuntimeBackendFailover:
		if c.Redis.Address == "" {
			return fmt.Errorf("runtime backend %s requires redis.address", c.Runtime.Backend)
		}
	default:
		return fmt.Errorf("runtime backend %q: %w", c.Runtime.Backend, models.ErrUnknownBackend)
	}

	if c.Backup.Enabled && c.Database.Driver != models.DriverSQLite {
		return errors.New("backup is supported only for sqlite driver")
	}

	return nil
}

func (c *Config) applyDefaults() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = models.DriverMongo
	}
	if c.Database.Name == "" {
		c.Database.Name = models.DefaultDatabaseName
	}
	if c.Database.Timeout <= 0 {
		c.Database.Timeout = models.DefaultStoreTimeout
	}

	c.Runtime.Backend = strings.ToLower(strings.TrimSpace(c.Runtime.Backend))
	if c.Runtime.Backend == "" {
		c.Runtime.Backend = models.RuntimeBackendMemory
	}

	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = models.DefaultAPIPort
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = models.DefaultMetricsPort
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
