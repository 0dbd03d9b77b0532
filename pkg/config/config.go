package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// ServiceName is reported in logs, metrics and the health endpoint
const ServiceName = "order-service"

// Store drivers
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// GormLogLevel decodes a gorm log level from its name
type GormLogLevel logger.LogLevel

// Decode implements envconfig.Decoder
func (l *GormLogLevel) Decode(value string) error {
	switch strings.ToLower(value) {
	case "silent":
		*l = GormLogLevel(logger.Silent)
	case "error":
		*l = GormLogLevel(logger.Error)
	case "warn":
		*l = GormLogLevel(logger.Warn)
	case "info":
		*l = GormLogLevel(logger.Info)
	default:
		return fmt.Errorf("unknown gorm log level %q", value)
	}
	return nil
}

// DBConfig holds database configuration
type DBConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            string        `envconfig:"PORT" default:"5432"`
	User            string        `envconfig:"USER" default:"postgres"`
	Password        string        `envconfig:"PASSWORD" default:"password"`
	Name            string        `envconfig:"NAME" default:"order_service"`
	SSLMode         string        `envconfig:"SSL_MODE" default:"disable"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"100"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	LogLevel        GormLogLevel  `envconfig:"LOG_LEVEL" default:"warn"`
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Env             string        `envconfig:"ENV" default:"development"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver string `envconfig:"DRIVER" default:"postgres"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Enabled         bool   `envconfig:"ENABLED" default:"false"`
	SigningKey      string `envconfig:"SIGNING_KEY" default:"orderservicesecretkey"`
	ExpirationHours int    `envconfig:"EXPIRATION_HOURS" default:"24"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `envconfig:"LEVEL" default:"info"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string `envconfig:"PREFIX" default:"order_service"`
}

// Config holds all configuration
type Config struct {
	DB      DBConfig      `envconfig:"DB"`
	Server  ServerConfig  `envconfig:"SERVER"`
	Store   StoreConfig   `envconfig:"STORE"`
	JWT     JWTConfig     `envconfig:"JWT"`
	Log     LogConfig     `envconfig:"LOG"`
	Metrics MetricsConfig `envconfig:"METRICS"`
}

// Load reads an optional .env file and decodes the environment into a Config
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot constrain on its own
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.JWT.Enabled && c.JWT.SigningKey == "" {
		return fmt.Errorf("JWT_SIGNING_KEY is required when JWT_ENABLED is set")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("store_driver", c.Store.Driver),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.Name),
		zap.String("server_port", c.Server.Port),
		zap.Bool("jwt_enabled", c.JWT.Enabled),
	}
}
