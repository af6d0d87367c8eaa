package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the connector configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Directory  DirectoryConfig  `mapstructure:"directory"`
	Encryptor  EncryptorConfig  `mapstructure:"encryptor"`
	Indexer    IndexerConfig    `mapstructure:"indexer"`
	Platform   PlatformConfig   `mapstructure:"platform"`
	Exchange   ExchangeConfig   `mapstructure:"exchange"`
	JWKS       JWKSConfig       `mapstructure:"jwks"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings for the exchange
// state store. Leaving host empty disables persistence entirely.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DirectoryConfig locates the participant registry and local resources.
type DirectoryConfig struct {
	// SelfID is this connector's own participant identifier.
	SelfID string `mapstructure:"self_id"`
	// ParticipantsFile is the YAML registry loaded at startup.
	ParticipantsFile string `mapstructure:"participants_file"`
	// ResourceDir holds the bundled fuzzy-extractor reference images.
	ResourceDir string `mapstructure:"resource_dir"`
}

// EncryptorConfig contains settings for the external encryption service.
type EncryptorConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Mode is passed through as the ?mode= query parameter on encrypt/decrypt.
	Mode string `mapstructure:"mode"`
	// RSAKeyDir is the writable path where the wrapping keypair is persisted.
	RSAKeyDir string        `mapstructure:"rsa_key_dir"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// IndexerConfig contains settings for the external similarity-indexing service.
type IndexerConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// MaxInFlight bounds concurrent indexing calls system-wide.
	MaxInFlight int `mapstructure:"max_in_flight"`
	// PreCallDelay and PostCallDelay pace indexing calls so load is
	// spread rather than burst.
	PreCallDelay  time.Duration `mapstructure:"pre_call_delay"`
	PostCallDelay time.Duration `mapstructure:"post_call_delay"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// PlatformConfig contains settings for the data-sharing platform.
type PlatformConfig struct {
	// BaseURL overrides the platform endpoint registered for this
	// connector in the participant registry. Leave empty to use the
	// registry entry.
	BaseURL string `mapstructure:"base_url"`
}

// ExchangeConfig contains settings for the exchange orchestration.
type ExchangeConfig struct {
	// GrantDuration is the access-grant window submitted on every
	// response envelope. Server-enforced ceiling; inbound durations are
	// logged but never submitted.
	GrantDuration int `mapstructure:"grant_duration"`
	// CMSToken authenticates case-management notifications ("InternalWS <token>").
	CMSToken string `mapstructure:"cms_token"`
}

// JWKSConfig contains JWKS configuration for JWT validation of the
// connector's own API. Empty URL disables validation.
type JWKSConfig struct {
	URL    string `mapstructure:"url"`
	Issuer string `mapstructure:"issuer"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MetricsPort int  `mapstructure:"metrics_port"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8449)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "5m")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults (host empty: store disabled)
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "evidence_exchange")

	// Directory defaults
	viper.SetDefault("directory.participants_file", "participants.yaml")
	viper.SetDefault("directory.resource_dir", "resources")

	// Encryptor defaults
	viper.SetDefault("encryptor.mode", "fe")
	viper.SetDefault("encryptor.rsa_key_dir", "keys")
	viper.SetDefault("encryptor.timeout", "5m")

	// Indexer defaults (ceiling and pacing of the upstream service)
	viper.SetDefault("indexer.max_in_flight", 2)
	viper.SetDefault("indexer.pre_call_delay", "5s")
	viper.SetDefault("indexer.post_call_delay", "10s")
	viper.SetDefault("indexer.timeout", "5m")

	// Exchange defaults
	viper.SetDefault("exchange.grant_duration", 600)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_port", 9090)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Directory.SelfID == "" {
		return fmt.Errorf("directory.self_id is required")
	}
	if config.Directory.ParticipantsFile == "" {
		return fmt.Errorf("directory.participants_file is required")
	}
	if config.Encryptor.BaseURL == "" {
		return fmt.Errorf("encryptor.base_url is required")
	}
	if config.Indexer.MaxInFlight <= 0 {
		return fmt.Errorf("indexer.max_in_flight must be positive")
	}
	if config.Exchange.GrantDuration <= 0 {
		return fmt.Errorf("exchange.grant_duration must be positive")
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Enabled reports whether an exchange state store is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}
