package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Funding FundingConfig `yaml:"funding" mapstructure:"funding"`
	Qualify QualifyConfig `yaml:"qualify" mapstructure:"qualify"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// CatalogConfig locates the lender matrix and controls its caching.
type CatalogConfig struct {
	Source         string `yaml:"source" mapstructure:"source"`
	Format         string `yaml:"format" mapstructure:"format"`
	SheetName      string `yaml:"sheet_name" mapstructure:"sheet_name"`
	SheetIndex     int    `yaml:"sheet_index" mapstructure:"sheet_index"`
	CacheTTLMins   int    `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	RedisURL       string `yaml:"redis_url" mapstructure:"redis_url"`
	RefreshOnStart bool   `yaml:"refresh_on_start" mapstructure:"refresh_on_start"`
}

// FetchConfig configures downloads of a remote lender matrix.
type FetchConfig struct {
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries       int     `yaml:"max_retries" mapstructure:"max_retries"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	RatePerSec       float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// FundingConfig tunes the funding-potential estimate.
type FundingConfig struct {
	RevenueMultiplier float64 `yaml:"revenue_multiplier" mapstructure:"revenue_multiplier"`
	UnlimitedCeiling  float64 `yaml:"unlimited_ceiling" mapstructure:"unlimited_ceiling"`
}

// QualifyConfig controls evaluation fan-out.
type QualifyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("QUALIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "qualify.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("catalog.source", "")
	v.SetDefault("catalog.format", "")
	v.SetDefault("catalog.sheet_name", "")
	v.SetDefault("catalog.sheet_index", 0)
	v.SetDefault("catalog.cache_ttl_mins", 60)
	v.SetDefault("catalog.redis_url", "")
	v.SetDefault("catalog.refresh_on_start", false)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.initial_backoff_ms", 500)
	v.SetDefault("fetch.rate_per_sec", 2)
	v.SetDefault("fetch.user_agent", "qualify-cli/1.0")
	v.SetDefault("funding.revenue_multiplier", 1.5)
	v.SetDefault("funding.unlimited_ceiling", 5_000_000)
	v.SetDefault("qualify.workers", 8)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.timeout_secs", 30)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the keys a command needs are present. mode is one
// of "qualify", "catalog", "serve" or "store".
func (c *Config) Validate(mode string) error {
	var errs []string

	requireCatalog := func() {
		if strings.TrimSpace(c.Catalog.Source) == "" {
			errs = append(errs, "catalog.source is required")
		}
		switch strings.ToLower(c.Catalog.Format) {
		case "", "xlsx", "csv":
		default:
			errs = append(errs, "catalog.format must be xlsx or csv")
		}
		if c.Catalog.SheetIndex < 0 {
			errs = append(errs, "catalog.sheet_index must be >= 0")
		}
	}
	requireStore := func() {
		switch c.Store.Driver {
		case "sqlite":
		case "postgres":
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required for postgres")
			}
		default:
			errs = append(errs, "store.driver must be sqlite or postgres")
		}
	}
	requireFunding := func() {
		if c.Funding.RevenueMultiplier <= 0 {
			errs = append(errs, "funding.revenue_multiplier must be > 0")
		}
		if c.Funding.UnlimitedCeiling <= 0 {
			errs = append(errs, "funding.unlimited_ceiling must be > 0")
		}
	}

	switch mode {
	case "qualify":
		requireCatalog()
		requireFunding()
	case "catalog":
		requireCatalog()
	case "serve":
		requireCatalog()
		requireFunding()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
	case "store":
		requireStore()
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
