package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Database   DatabaseConfig    `mapstructure:"database"`
	Logger     LoggerConfig      `mapstructure:"logger"`
	Session    SessionConfig     `mapstructure:"session"`
	Polling    PollingConfig     `mapstructure:"polling"`
	Templates  map[string]float64 `mapstructure:"templates"`
	Certifiers []CertifierConfig `mapstructure:"certifiers"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds session store configuration. Driver selects the
// backing: "sqlite" or "memory".
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// SessionConfig holds workflow configuration. AbandonTimeout of zero
// disables the sweeper.
type SessionConfig struct {
	AbandonTimeout time.Duration `mapstructure:"abandon_timeout"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	SweepBatchSize int           `mapstructure:"sweep_batch_size"`
}

// PollingConfig holds the intervals served to polling clients. The core is
// polling-agnostic; these only feed the client-config endpoint.
type PollingConfig struct {
	SessionInterval time.Duration `mapstructure:"session_interval"`
	QueueInterval   time.Duration `mapstructure:"queue_interval"`
}

// CertifierConfig is one roster entry
type CertifierConfig struct {
	ID   int64  `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "data/notary.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")

	// Session defaults. Abandonment sweeping is opt-in.
	viper.SetDefault("session.abandon_timeout", time.Duration(0))
	viper.SetDefault("session.sweep_interval", time.Minute)
	viper.SetDefault("session.sweep_batch_size", 50)

	// Polling defaults match the reference terminals
	viper.SetDefault("polling.session_interval", 2*time.Second)
	viper.SetDefault("polling.queue_interval", 5*time.Second)

	// Service template price table
	viper.SetDefault("templates", map[string]float64{
		"Declaración Jurada":  15.00,
		"Contrato de Arriendo": 25.00,
	})
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("server.port", "NOTARY_SERVER_PORT")
	viper.BindEnv("database.driver", "NOTARY_DB_DRIVER")
	viper.BindEnv("database.path", "NOTARY_DB_PATH")
	viper.BindEnv("logger.level", "NOTARY_LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database.driver: %s", c.Database.Driver)
	}

	if len(c.Templates) == 0 {
		return fmt.Errorf("at least one service template is required")
	}
	for name, amount := range c.Templates {
		if amount < 0 {
			return fmt.Errorf("template %q has a negative amount", name)
		}
	}

	if len(c.Certifiers) == 0 {
		return fmt.Errorf("at least one certifier is required")
	}
	seen := make(map[int64]bool, len(c.Certifiers))
	for _, cert := range c.Certifiers {
		if cert.Name == "" {
			return fmt.Errorf("certifier %d has no name", cert.ID)
		}
		if seen[cert.ID] {
			return fmt.Errorf("duplicate certifier id: %d", cert.ID)
		}
		seen[cert.ID] = true
	}

	if c.Session.AbandonTimeout > 0 && c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be positive when abandon_timeout is set")
	}

	return nil
}
