package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Auth       AuthConfig       `yaml:"auth"`
	Booking    BookingConfig    `yaml:"booking"`
	Exports    ExportConfig     `yaml:"exports"`
	Seed       SeedConfig       `yaml:"seed"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// StorageConfig selects the key-value backend: memory, sqlite or redis.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type RedisConfig struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	PoolSize  int    `yaml:"pool_size"`
	KeyPrefix string `yaml:"key_prefix"`
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

type AuthConfig struct {
	SessionTTLMinutes int   `yaml:"session_ttl_minutes"`
	MinPasswordLength int   `yaml:"min_password_length"`
	MaxIDUploadBytes  int64 `yaml:"max_id_upload_bytes"`
	DemoSignInEnabled bool  `yaml:"demo_sign_in_enabled"`
	PasswordHashCost  int   `yaml:"password_hash_cost"`
}

type BookingConfig struct {
	NightlyRate     int64   `yaml:"nightly_rate"`
	RentalFeeRate   float64 `yaml:"rental_fee_rate"`
	DefaultCurrency string  `yaml:"default_currency"`
	IDStrategy      string  `yaml:"id_strategy"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type SeedConfig struct {
	Path string `yaml:"path"`
}

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

func Load(configPath string) (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

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
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for sqlite backend")
		}
	case BackendRedis:
		if c.Redis.Address == "" {
			return errors.New("redis.address is required for redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Booking.NightlyRate <= 0 {
		return errors.New("booking.nightly_rate must be positive")
	}
	if c.Booking.RentalFeeRate < 0 || c.Booking.RentalFeeRate >= 1 {
		return errors.New("booking.rental_fee_rate must be in [0, 1)")
	}

	switch c.Booking.DefaultCurrency {
	case "USD", "PHP":
	default:
		return fmt.Errorf("unsupported currency %q", c.Booking.DefaultCurrency)
	}

	if c.Backup.Enabled && c.Storage.Backend != BackendSQLite {
		return errors.New("backup requires the sqlite storage backend")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "rentease"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "rentease:"
	}

	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "@daily"
	}

	if c.Auth.SessionTTLMinutes == 0 {
		c.Auth.SessionTTLMinutes = 12 * 60
	}
	if c.Auth.MinPasswordLength == 0 {
		c.Auth.MinPasswordLength = 6
	}
	if c.Auth.MaxIDUploadBytes == 0 {
		c.Auth.MaxIDUploadBytes = 4 * 1024 * 1024
	}

	if c.Booking.NightlyRate == 0 {
		c.Booking.NightlyRate = 100
	}
	if c.Booking.RentalFeeRate == 0 {
		c.Booking.RentalFeeRate = 0.2
	}
	c.Booking.DefaultCurrency = strings.ToUpper(strings.TrimSpace(c.Booking.DefaultCurrency))
	if c.Booking.DefaultCurrency == "" {
		c.Booking.DefaultCurrency = "USD"
	}
	if c.Booking.IDStrategy == "" {
		c.Booking.IDStrategy = "sequence"
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
