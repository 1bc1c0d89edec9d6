package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Abanoub-Magdy-gabra/style-checkout/pkg/config"
	"github.com/Abanoub-Magdy-gabra/style-checkout/pkg/database"
)

// Config holds all configuration for the checkout service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"checkout-service"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP         HTTPConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	Finalization FinalizationConfig
	CORS         CORSConfig
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"POSTGRES_DB" envDefault:"checkout"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	MaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"30m"`
	MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"5m"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	FallbackMaxRecords int `env:"FALLBACK_MAX_RECORDS" envDefault:"100"`
}

// KafkaConfig holds Kafka configuration.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Enabled bool     `env:"KAFKA_ENABLED" envDefault:"true"`
}

// FinalizationConfig holds the domain knobs of the finalization workflow.
type FinalizationConfig struct {
	// Deadline is the hard bound between payment success and a terminal state.
	Deadline time.Duration `env:"FINALIZATION_DEADLINE" envDefault:"10s"`

	// ProcessingDelay keeps the processing view visible for a moment even
	// when storage responds instantly.
	ProcessingDelay time.Duration `env:"FINALIZATION_PROCESSING_DELAY" envDefault:"1500ms"`

	// VATRateBP is the VAT rate in basis points (1400 = 14%).
	VATRateBP int64 `env:"VAT_RATE_BP" envDefault:"1400"`

	// Flat shipping fees per method, in normalized currency units.
	ShippingStandardFee int64 `env:"SHIPPING_STANDARD_FEE" envDefault:"150"`
	ShippingExpressFee  int64 `env:"SHIPPING_EXPRESS_FEE" envDefault:"300"`
	ShippingSameDayFee  int64 `env:"SHIPPING_SAME_DAY_FEE" envDefault:"500"`

	// FXRateNum/FXRateDen convert source prices to normalized units. 1/1
	// means prices arrive already normalized.
	FXRateNum int64 `env:"FX_RATE_NUM" envDefault:"1"`
	FXRateDen int64 `env:"FX_RATE_DEN" envDefault:"1"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTP.Port)
	}
	if c.Finalization.Deadline <= 0 {
		return fmt.Errorf("finalization deadline must be positive, got %s", c.Finalization.Deadline)
	}
	if c.Finalization.ProcessingDelay < 0 {
		return fmt.Errorf("processing delay must not be negative, got %s", c.Finalization.ProcessingDelay)
	}
	if c.Finalization.ProcessingDelay >= c.Finalization.Deadline {
		return fmt.Errorf("processing delay %s must be shorter than the deadline %s",
			c.Finalization.ProcessingDelay, c.Finalization.Deadline)
	}
	if c.Finalization.VATRateBP < 0 {
		return fmt.Errorf("vat rate must not be negative, got %d", c.Finalization.VATRateBP)
	}
	if c.Finalization.FXRateNum <= 0 || c.Finalization.FXRateDen <= 0 {
		return fmt.Errorf("fx rate must be positive, got %d/%d",
			c.Finalization.FXRateNum, c.Finalization.FXRateDen)
	}
	if c.Redis.FallbackMaxRecords <= 0 {
		return fmt.Errorf("fallback max records must be positive, got %d", c.Redis.FallbackMaxRecords)
	}
	return nil
}

// PostgresDatabaseConfig converts to the shared database package's config.
func (c *Config) PostgresDatabaseConfig() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.Postgres.Host,
		Port:            c.Postgres.Port,
		User:            c.Postgres.User,
		Password:        c.Postgres.Password,
		DBName:          c.Postgres.DBName,
		SSLMode:         c.Postgres.SSLMode,
		MaxConns:        c.Postgres.MaxConns,
		MinConns:        c.Postgres.MinConns,
		MaxConnLifetime: c.Postgres.MaxConnLifetime,
		MaxConnIdleTime: c.Postgres.MaxConnIdleTime,
	}
}

// RedisDatabaseConfig converts to the shared database package's config.
func (c *Config) RedisDatabaseConfig() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.Redis.Host,
		Port:     c.Redis.Port,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}
