package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LoggerConfig    `mapstructure:"log"`
	Search    SearchConfig    `mapstructure:"elasticsearch"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Store     StoreConfig     `mapstructure:"store"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `mapstructure:"name"`
	Env                   string `mapstructure:"env"`
	Host                  string `mapstructure:"host"`
	Port                  string `mapstructure:"port"`
	Version               string `mapstructure:"version"`
	Root                  string `mapstructure:"root"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `mapstructure:"dsn"`
	MaxConns       int32  `mapstructure:"max_conns"`
	MinConns       int32  `mapstructure:"min_conns"`
	RunMigrations  bool   `mapstructure:"run_migrations"`
	ConnMaxIdleSec int32  `mapstructure:"conn_max_idle_seconds"`
	ConnMaxLifeSec int32  `mapstructure:"conn_max_life_seconds"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// SearchConfig is the search engine connection copied into settings on startup.
type SearchConfig struct {
	Enable bool   `mapstructure:"enable"`
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
}

// BootstrapConfig tunes the startup seeding and migration run.
type BootstrapConfig struct {
	Timezone        string `mapstructure:"timezone"`
	DatabaseVersion string `mapstructure:"database_version"`
	ToolsBaseURL    string `mapstructure:"tools_base_url"`
	Platform        string `mapstructure:"platform"`
	Concurrency     int    `mapstructure:"concurrency"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// Load reads configuration from an optional config.yaml and environment
// variables (a .env file is loaded first when present). Nested keys map to
// upper-case env names, e.g. postgres.dsn -> POSTGRES_DSN.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ticket-bootstrap")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.root", ".")
	v.SetDefault("app.request_timeout_seconds", 30)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.run_migrations", true)
	v.SetDefault("postgres.conn_max_idle_seconds", 30)
	v.SetDefault("postgres.conn_max_life_seconds", 300)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")

	v.SetDefault("elasticsearch.enable", false)
	v.SetDefault("elasticsearch.host", "http://localhost")
	v.SetDefault("elasticsearch.port", 9200)

	v.SetDefault("bootstrap.timezone", "America/New_York")
	v.SetDefault("bootstrap.database_version", "")
	v.SetDefault("bootstrap.tools_base_url", "https://storage.example.com/tools/")
	v.SetDefault("bootstrap.platform", runtime.GOOS)
	v.SetDefault("bootstrap.concurrency", 4)

	v.SetDefault("store.driver", StoreDriverPostgres)
}

// Validate checks for configuration errors that would break startup.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("store.driver %q must be %q or %q", c.Store.Driver, StoreDriverPostgres, StoreDriverMemory)
	}
	if _, err := time.LoadLocation(c.Bootstrap.Timezone); err != nil {
		return fmt.Errorf("bootstrap.timezone: %w", err)
	}
	if c.Bootstrap.Concurrency < 0 {
		return fmt.Errorf("bootstrap.concurrency must not be negative")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}
