// Package config loads settings for the carbon-intensity server.
//
// Settings come from three layers, later ones winning:
//  1. built-in defaults
//  2. a YAML file (see FindConfigPath for the search order)
//  3. environment variables, after loading a .env file if present
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAddr            = ":3000"
	defaultShutdownTimeout = 10 * time.Second
	defaultDBPath          = "./carbon-intensity.db"
	defaultKafkaTopic      = "carbon-intensity-changes"
)

// Load reads .env, finds and loads the config file (explicitPath wins when
// set), applies environment overrides and validates the result. It returns
// the path of the file used, or "" when running on defaults.
func Load(explicitPath string) (*Config, string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("load .env: %w", err)
	}

	path := explicitPath
	if path == "" {
		path = FindConfigPath()
	}

	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadFromPath(path); err != nil {
			return nil, path, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadFromPath loads config from a specific path and fills in defaults
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(defaultShutdownTimeout)
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		c.Database.Path = defaultDBPath
	}
	if c.Database.Driver == DriverPostgres {
		if c.Database.Port == "" {
			c.Database.Port = "5432"
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
		if c.Database.TimeZone == "" {
			c.Database.TimeZone = "UTC"
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Events.KafkaTopic == "" {
		c.Events.KafkaTopic = defaultKafkaTopic
	}
}

// ApplyEnv overrides settings from environment variables. lookup is
// os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("HTTP_ADDR", &c.Server.Addr)
	str("CORS_ORIGIN", &c.Server.CORSOrigin)
	str("DB_DRIVER", &c.Database.Driver)
	str("DB_PATH", &c.Database.Path)
	str("DB_HOST", &c.Database.Host)
	str("DB_PORT", &c.Database.Port)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)
	str("DB_SSLMODE", &c.Database.SSLMode)
	str("DB_TIMEZONE", &c.Database.TimeZone)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("KAFKA_TOPIC", &c.Events.KafkaTopic)
	str("SEED_PATH", &c.Seed.Path)

	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Events.KafkaBrokers = parseBrokers(v)
	}
	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		c.Server.ShutdownTimeout = Duration(d)
	}

	// a driver switch may need the other driver's defaults
	c.applyDefaults()
	return nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case DriverPostgres:
		var missing []string
		for name, v := range map[string]string{
			"host": c.Database.Host,
			"port": c.Database.Port,
			"user": c.Database.User,
			"name": c.Database.Name,
		} {
			if v == "" {
				missing = append(missing, "database."+name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			return fmt.Errorf("postgres requires %s", strings.Join(missing, ", "))
		}
	default:
		return fmt.Errorf("unknown database driver %q (want %s or %s)", c.Database.Driver, DriverSQLite, DriverPostgres)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q (want json or text)", c.Log.Format)
	}

	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if c.Events.KafkaEnabled() && c.Events.KafkaTopic == "" {
		return errors.New("events.kafka_topic is required when kafka_brokers is set")
	}
	return nil
}

// Summary returns a one-line description safe to log
func (c *Config) Summary() string {
	store := c.Database.Path
	if c.Database.Driver == DriverPostgres {
		store = fmt.Sprintf("%s@%s:%s/%s", c.Database.User, c.Database.Host, c.Database.Port, c.Database.Name)
	}
	kafka := "off"
	if c.Events.KafkaEnabled() {
		kafka = fmt.Sprintf("%s -> %s", strings.Join(c.Events.KafkaBrokers, ","), c.Events.KafkaTopic)
	}
	return fmt.Sprintf("addr=%s db=%s(%s) kafka=%s", c.Server.Addr, c.Database.Driver, store, kafka)
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
