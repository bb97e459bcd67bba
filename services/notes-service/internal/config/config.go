// Package config loads the notes-service configuration from an optional YAML
// file and the environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"

	"github.com/vasapolrittideah/notes-api/shared/mailer"
)

// FileEnvVar names the variable pointing at the optional YAML file.
const FileEnvVar = "CONFIG_FILE"

type Config struct {
	Environment string `env:"APP_ENV" yaml:"environment"`
	Version     string `env:"APP_VERSION" yaml:"version"`

	HTTPAddr        string        `env:"HTTP_ADDR" yaml:"http_addr"`
	GRPCAddr        string        `env:"GRPC_ADDR" yaml:"grpc_addr"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" yaml:"request_timeout"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," yaml:"cors_origins"`
	// TrustedProxies lists reverse proxies allowed to report the client address.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," yaml:"trusted_proxies"`

	Mongo      MongoConfig      `yaml:"mongo"`
	JWT        JWTConfig        `yaml:"jwt"`
	Encryption EncryptionConfig `yaml:"encryption"`
	SMTP       mailer.Config    `yaml:"smtp"`
	Consul     ConsulConfig     `yaml:"consul"`
	Log        LogConfig        `yaml:"log"`

	// RedisURL enables attempt limiting when set.
	RedisURL string `env:"REDIS_URL" yaml:"redis_url"`
	// GoogleClientID enables Google sign-in when set.
	GoogleClientID string `env:"GOOGLE_CLIENT_ID" yaml:"google_client_id"`
}

type MongoConfig struct {
	URI      string `env:"MONGODB_URI" yaml:"uri"`
	Database string `env:"MONGODB_DATABASE" yaml:"database"`
}

type JWTConfig struct {
	Secret   string        `env:"JWT_SECRET" yaml:"secret"`
	Issuer   string        `env:"JWT_ISSUER" yaml:"issuer"`
	Audience string        `env:"JWT_AUDIENCE" yaml:"audience"`
	TTL      time.Duration `env:"JWT_TTL" yaml:"ttl"`
}

// EncryptionConfig derives the key that seals note fields and settings.
type EncryptionConfig struct {
	Secret string `env:"ENCRYPTION_KEY" yaml:"secret"`
	Salt   string `env:"ENCRYPTION_SALT" yaml:"salt"`
}

// ConsulConfig turns on service registration when Addr is set.
type ConsulConfig struct {
	Addr           string `env:"CONSUL_ADDR" yaml:"addr"`
	ServiceName    string `env:"CONSUL_SERVICE_NAME" yaml:"service_name"`
	ServiceAddress string `env:"CONSUL_SERVICE_ADDRESS" yaml:"service_address"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Default returns the configuration used before any file or variable is applied.
func Default() Config {
	return Config{
		Environment:     "development",
		Version:         "1.0.0",
		HTTPAddr:        ":3000",
		GRPCAddr:        ":50051",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		CORSOrigins:     []string{"*"},
		Mongo: MongoConfig{
			Database: "notes",
		},
		JWT: JWTConfig{
			Issuer:   "notes-api",
			Audience: "notes-api",
			TTL:      30 * 24 * time.Hour,
		},
		Encryption: EncryptionConfig{
			Salt: "notes-api",
		},
		SMTP: mailer.Config{
			Host:     "smtp.gmail.com",
			Port:     587,
			FromName: "Notes",
		},
		Consul: ConsulConfig{
			ServiceName: "notes-service",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration and checks that required values are present.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnvVar); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LogFormat returns the configured log format, defaulting to JSON in
// production and the console writer elsewhere.
func (c *Config) LogFormat() string {
	if c.Log.Format != "" {
		return c.Log.Format
	}
	if c.IsProduction() {
		return "json"
	}
	return "console"
}

// validate returns the first missing required value.
func (c *Config) validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("missing MONGODB_URI environment variable")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("missing MONGODB_DATABASE environment variable")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("missing JWT_SECRET environment variable")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Encryption.Secret == "" {
		return fmt.Errorf("missing ENCRYPTION_KEY environment variable")
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("missing HTTP_ADDR environment variable")
	}

	return nil
}
