package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/screener/internal/core"
	"github.com/newthinker/screener/internal/screener"
	"github.com/spf13/viper"
)

type Config struct {
	Source     SourceConfig     `mapstructure:"source"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Screen     ScreenConfig     `mapstructure:"screen"`
	Categories []CategoryConfig `mapstructure:"categories"`
	Output     OutputConfig     `mapstructure:"output"`
	Export     ExportConfig     `mapstructure:"export"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// SourceConfig holds market data source settings.
type SourceConfig struct {
	Provider         string        `mapstructure:"provider"`
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Currency         string        `mapstructure:"currency"`
	Pages            int           `mapstructure:"pages"`
	PerPage          int           `mapstructure:"per_page"`
	PageDelay        time.Duration `mapstructure:"page_delay"`
	RateLimitBackoff time.Duration `mapstructure:"rate_limit_backoff"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Breaker          BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the source.
type BreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

// CacheConfig holds page cache settings.
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "none", "memory" or "redis"
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ScreenConfig struct {
	Workers int `mapstructure:"workers"`
}

// CategoryConfig is one category entry. A range is a two element list;
// an omitted or null range accepts any value.
type CategoryConfig struct {
	Key       string    `mapstructure:"key"`
	Label     string    `mapstructure:"label"`
	Icon      string    `mapstructure:"icon"`
	Direction string    `mapstructure:"direction"`
	H24       []float64 `mapstructure:"h24"`
	D7        []float64 `mapstructure:"d7"`
	D30       []float64 `mapstructure:"d30"`
	VolMcap   []float64 `mapstructure:"vol_mcap"`
	FromATH   []float64 `mapstructure:"from_ath"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"` // "table", "json" or "yaml"
	Color  string `mapstructure:"color"`  // "auto", "always" or "never"
}

// ExportConfig holds report export settings.
type ExportConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Type       string   `mapstructure:"type"`   // "localfs" or "s3"
	Format     string   `mapstructure:"format"` // "json" or "yaml"
	Path       string   `mapstructure:"path"`   // For localfs
	S3         S3Config `mapstructure:"s3"`     // For S3
	RetainDays int      `mapstructure:"retain_days"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type ServerConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	APIKey   string        `mapstructure:"api_key"`
	Interval time.Duration `mapstructure:"interval"`
	History  int           `mapstructure:"history"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file on top of Defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Source: SourceConfig{
			Provider:         "coingecko",
			Currency:         "usd",
			Pages:            4,
			PerPage:          250,
			PageDelay:        1500 * time.Millisecond,
			RateLimitBackoff: 60 * time.Second,
			Timeout:          15 * time.Second,
			Breaker: BreakerConfig{
				MaxFailures: 3,
				OpenTimeout: 60 * time.Second,
			},
		},
		Cache: CacheConfig{
			Type: "none",
			TTL:  5 * time.Minute,
		},
		Screen: ScreenConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Format: "table",
			Color:  "auto",
		},
		Export: ExportConfig{
			Type:   "localfs",
			Format: "json",
			Path:   "./reports",
		},
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8080,
			Interval: 15 * time.Minute,
			History:  24,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Source validation
	if c.Source.Provider == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("source provider required"))
	}
	if c.Source.Pages < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("pages must be at least 1, got %d", c.Source.Pages))
	}
	if c.Source.PerPage < 1 || c.Source.PerPage > 250 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("per_page must be between 1 and 250, got %d", c.Source.PerPage))
	}
	if c.Source.PageDelay < 0 || c.Source.RateLimitBackoff < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("page_delay and rate_limit_backoff cannot be negative"))
	}

	if c.Screen.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("workers must be at least 1, got %d", c.Screen.Workers))
	}

	switch c.Cache.Type {
	case "", "none", "memory":
	case "redis":
		if c.Cache.Addr == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("cache addr required when type is redis"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown cache type %q", c.Cache.Type))
	}

	switch c.Output.Format {
	case "table", "json", "yaml":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("output format must be table, json or yaml, got %q", c.Output.Format))
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("output color must be auto, always or never, got %q", c.Output.Color))
	}

	// Export validation - only checked when enabled
	if c.Export.Enabled {
		switch c.Export.Type {
		case "localfs":
			if c.Export.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("export path required when type is localfs"))
			}
		case "s3":
			if c.Export.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("export s3 bucket required when type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown export type %q", c.Export.Type))
		}
		if c.Export.RetainDays < 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("export retain_days cannot be negative"))
		}
		if c.Export.Format != "json" && c.Export.Format != "yaml" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("export format must be json or yaml, got %q", c.Export.Format))
		}
	}

	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.Interval <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("server interval must be positive, got %s", c.Server.Interval))
	}

	// Category ranges are checked here so a bad table fails at load time
	if _, err := c.Registry(); err != nil {
		return err
	}

	return nil
}

// Registry builds the category registry. With no categories configured the
// built-in table is used.
func (c *Config) Registry() (*screener.Registry, error) {
	if len(c.Categories) == 0 {
		return screener.DefaultRegistry(), nil
	}

	defs := make([]screener.CategoryDefinition, 0, len(c.Categories))
	for _, cc := range c.Categories {
		d, err := cc.Definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return screener.NewRegistry(defs...)
}

// Definition converts the entry into a category definition. An omitted or
// null range is unconstrained; any other range needs exactly two bounds.
func (cc CategoryConfig) Definition() (screener.CategoryDefinition, error) {
	d := screener.CategoryDefinition{
		Key:       cc.Key,
		Label:     cc.Label,
		Icon:      cc.Icon,
		Direction: core.Direction(strings.ToLower(cc.Direction)),
	}

	fields := []struct {
		name   string
		bounds []float64
		dst    *screener.Range
	}{
		{"h24", cc.H24, &d.H24},
		{"d7", cc.D7, &d.D7},
		{"d30", cc.D30, &d.D30},
		{"vol_mcap", cc.VolMcap, &d.VolMcap},
		{"from_ath", cc.FromATH, &d.FromATH},
	}
	for _, f := range fields {
		switch {
		case f.bounds == nil:
			*f.dst = screener.Any()
		case len(f.bounds) == 2:
			*f.dst = screener.Between(f.bounds[0], f.bounds[1])
		default:
			return d, core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("category %s %s: range needs 2 bounds, got %d", cc.Key, f.name, len(f.bounds)))
		}
	}
	return d, nil
}
