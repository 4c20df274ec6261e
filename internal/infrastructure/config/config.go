package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once     sync.Once
	instance *Config
	loadErr  error
)

// defaultJWTSecret is only acceptable outside production
const defaultJWTSecret = "change-this-secret-in-production"

// Storage drivers
const (
	StorageMongoDB = "mongodb"
	StorageMemory  = "memory"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	MongoDB   MongoDBConfig   `mapstructure:"mongodb"`
	Storage   StorageConfig   `mapstructure:"storage"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Workflows WorkflowsConfig `mapstructure:"workflows"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AnalyzeTimeout  time.Duration `mapstructure:"analyze_timeout"` // Wall-clock bound on one analysis request
}

type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type StorageConfig struct {
	Driver   string `mapstructure:"driver"`    // mongodb or memory
	SeedData bool   `mapstructure:"seed_data"` // Load the built-in catalog into the memory store
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"` // HMAC secret for write endpoints
	Issuer   string `mapstructure:"issuer"`
	Required bool   `mapstructure:"required"` // Require a token on write endpoints
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type WorkflowsConfig struct {
	Dir         string `mapstructure:"dir"` // Overrides the embedded defaults when set
	DefaultName string `mapstructure:"default_name"`
	MaxSteps    int    `mapstructure:"max_steps"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Initialize sets up Viper with default configuration paths and environment bindings
func Initialize() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/brewlab")
	viper.AddConfigPath("$HOME/.brewlab")

	// Environment variable support
	viper.SetEnvPrefix("BREWLAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults and env vars
	}

	return nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "brewlab")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.analyze_timeout", "10s")

	// MongoDB defaults
	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "brewlab")
	viper.SetDefault("mongodb.max_pool_size", 100)
	viper.SetDefault("mongodb.min_pool_size", 10)
	viper.SetDefault("mongodb.connect_timeout", "10s")

	// Storage defaults
	viper.SetDefault("storage.driver", StorageMemory)
	viper.SetDefault("storage.seed_data", true)

	// JWT defaults
	viper.SetDefault("jwt.secret", defaultJWTSecret)
	viper.SetDefault("jwt.issuer", "brewlab")
	viper.SetDefault("jwt.required", true)

	// Logging defaults
	viper.SetDefault("logging.level", "debug")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.output", "stdout")

	// CORS defaults
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type", "X-Request-ID"})

	// Workflow defaults
	viper.SetDefault("workflows.dir", "")
	viper.SetDefault("workflows.default_name", "recipe_optimization")
	viper.SetDefault("workflows.max_steps", 100)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
}

// Load returns the singleton config instance. A failed first load is sticky.
func Load() (*Config, error) {
	once.Do(func() {
		if loadErr = Initialize(); loadErr != nil {
			return
		}
		cfg := &Config{}
		if err := viper.Unmarshal(cfg); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal config: %w", err)
			return
		}
		if loadErr = cfg.Validate(); loadErr != nil {
			return
		}
		instance = cfg
	})
	return instance, loadErr
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMongoDB, StorageMemory:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Workflows.MaxSteps <= 0 {
		return fmt.Errorf("workflows.max_steps must be positive, got %d", c.Workflows.MaxSteps)
	}
	if c.Workflows.DefaultName == "" {
		return fmt.Errorf("workflows.default_name is required")
	}
	if c.JWT.Required && (c.JWT.Secret == "" || (c.IsProduction() && c.JWT.Secret == defaultJWTSecret)) {
		return fmt.Errorf("jwt.secret must be set when jwt.required is on")
	}
	return nil
}

// GetAddress returns the server address string
func (c *Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
