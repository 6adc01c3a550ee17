package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. WORDBOOK_STORAGE_PATH.
const EnvPrefix = "WORDBOOK"

// Storage drivers.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
}

// StorageConfig selects where entries are persisted. Path is used by the json
// and sqlite3 drivers, DSN by postgres.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// DictionaryConfig configures the example lookup client
type DictionaryConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	HTTPPort       int      `mapstructure:"http_port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the optional wordbook.yaml, environment
// variables and any flags already bound to viper.
func Load() (*Config, error) {
	if viper.ConfigFileUsed() == "" {
		viper.SetConfigName("wordbook")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "wordbook"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the storage layer cannot open.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver)
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unsupported storage.driver %q (want %s, %s or %s)",
			c.Storage.Driver, DriverJSON, DriverSQLite, DriverPostgres)
	}
	if c.Dictionary.Timeout <= 0 {
		return fmt.Errorf("dictionary.timeout must be positive, got %s", c.Dictionary.Timeout)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Storage defaults
	viper.SetDefault("storage.driver", DriverJSON)
	viper.SetDefault("storage.path", DefaultStoragePath())
	viper.SetDefault("storage.dsn", "")

	// Dictionary defaults
	viper.SetDefault("dictionary.enabled", true)
	viper.SetDefault("dictionary.base_url", "https://api.dictionaryapi.dev/api/v2/entries/en")
	viper.SetDefault("dictionary.timeout", 5*time.Second)

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// DefaultStoragePath is words.json under the user config directory, or the
// working directory when none can be determined.
func DefaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "words.json"
	}
	return filepath.Join(dir, "wordbook", "words.json")
}

// HTTPAddr returns the listen address of the HTTP adapter.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}
