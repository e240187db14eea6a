package app

import (
	"fmt"
	"io"

	"github.com/newthinker/screener/internal/cache"
	"github.com/newthinker/screener/internal/collector"
	"github.com/newthinker/screener/internal/collector/coingecko"
	"github.com/newthinker/screener/internal/config"
	"github.com/newthinker/screener/internal/export"
	"github.com/newthinker/screener/internal/metrics"
	"go.uber.org/zap"
)

// NewFromConfig creates an App with the sources and sinks cfg enables
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*App, error) {
	a, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := cache.New(cache.Config{
		Type:     cfg.Cache.Type,
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	a.RegisterSource(newCoinGecko(cfg, store, a.logger))

	if cfg.Metrics.Enabled {
		a.SetMetrics(metrics.NewRegistry())
	}

	if cfg.Export.Enabled {
		exporter, err := NewExporter(cfg, a.logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.SetExporter(exporter)
	}

	return a, nil
}

// NewExporter builds the report exporter described by cfg.Export. It does not
// look at cfg.Export.Enabled.
func NewExporter(cfg *config.Config, logger *zap.Logger) (*export.Exporter, error) {
	storage, err := export.NewStorage(export.Config{
		Type:   cfg.Export.Type,
		Format: cfg.Export.Format,
		Path:   cfg.Export.Path,
		S3: export.S3Config{
			Bucket:    cfg.Export.S3.Bucket,
			Endpoint:  cfg.Export.S3.Endpoint,
			Region:    cfg.Export.S3.Region,
			AccessKey: cfg.Export.S3.AccessKey,
			SecretKey: cfg.Export.S3.SecretKey,
			Prefix:    cfg.Export.S3.Prefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating export storage: %w", err)
	}
	return export.NewExporter(storage, cfg.Export.Format, logger)
}

func newCoinGecko(cfg *config.Config, store cache.Cache, logger *zap.Logger) *coingecko.CoinGecko {
	src := cfg.Source
	opts := []coingecko.Option{
		coingecko.WithCurrency(src.Currency),
		coingecko.WithBackoff(src.RateLimitBackoff),
		coingecko.WithBreaker(collector.BreakerConfig{
			MaxFailures: uint32(src.Breaker.MaxFailures),
			OpenTimeout: src.Breaker.OpenTimeout,
		}),
		coingecko.WithLogger(logger),
	}
	if src.BaseURL != "" {
		opts = append(opts, coingecko.WithBaseURL(src.BaseURL))
	}
	if src.Timeout > 0 {
		opts = append(opts, coingecko.WithTimeout(src.Timeout))
	}
	if store != nil {
		opts = append(opts, coingecko.WithCache(store, cfg.Cache.TTL))
	}
	return coingecko.New(src.APIKey, opts...)
}
