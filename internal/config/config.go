package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Publish PublishConfig `yaml:"publish" mapstructure:"publish"`
	Retry   RetryConfig   `yaml:"retry" mapstructure:"retry"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP trigger.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst          int      `yaml:"burst" mapstructure:"burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// StoreConfig configures the run ledger backend. Driver is sqlite,
// postgres or none.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SourceConfig configures where datasets are read from and how many are
// aligned at once.
type SourceConfig struct {
	BasePath       string `yaml:"base_path" mapstructure:"base_path"`
	CatalogPath    string `yaml:"catalog_path" mapstructure:"catalog_path"`
	TempDir        string `yaml:"temp_dir" mapstructure:"temp_dir"`
	MaxConcurrency int    `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	TreeWorkers    int    `yaml:"tree_workers" mapstructure:"tree_workers"`
}

// PublishConfig configures where output rasters go. Driver is s3 or local.
type PublishConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	Bucket   string `yaml:"bucket" mapstructure:"bucket"`
	Region   string `yaml:"region" mapstructure:"region"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
	LocalDir string `yaml:"local_dir" mapstructure:"local_dir"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// RetryConfig configures retries of raster reads and uploads.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LANDSUIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 2.0)
	v.SetDefault("server.burst", 5)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", 8<<20)
	v.SetDefault("server.timeout_secs", 300)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "landsuit.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("source.base_path", "/vsis3/geoc-slm-function-data/")
	v.SetDefault("source.catalog_path", "")
	v.SetDefault("source.temp_dir", "")
	v.SetDefault("source.max_concurrency", 4)
	v.SetDefault("source.tree_workers", 4)
	v.SetDefault("publish.driver", "s3")
	v.SetDefault("publish.bucket", "geoc-temp")
	v.SetDefault("publish.region", "eu-central-1")
	v.SetDefault("publish.prefix", "")
	v.SetDefault("publish.local_dir", "out")
	v.SetDefault("publish.base_url", "")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 20000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.2)

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

// Validate checks the settings a command mode depends on. Modes are
// "compute" and "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "compute":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "none", "":
	default:
		errs = append(errs, "store.driver must be sqlite, postgres or none")
	}

	switch c.Publish.Driver {
	case "s3":
		if c.Publish.Bucket == "" {
			errs = append(errs, "publish.bucket is required")
		}
	case "local":
		if c.Publish.LocalDir == "" {
			errs = append(errs, "publish.local_dir is required")
		}
	default:
		errs = append(errs, "publish.driver must be s3 or local")
	}

	if c.Source.MaxConcurrency < 1 || c.Source.MaxConcurrency > 64 {
		errs = append(errs, "source.max_concurrency must be between 1 and 64")
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, "retry.max_attempts must be >= 1")
	}
	if c.Retry.JitterFraction < 0 || c.Retry.JitterFraction > 1 {
		errs = append(errs, "retry.jitter_fraction must be between 0 and 1")
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
