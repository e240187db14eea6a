package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newthinker/screener/internal/core"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PaginatorConfig controls how many pages are fetched and how fast
type PaginatorConfig struct {
	Pages   int
	PerPage int
	Delay   time.Duration // minimum gap between page requests
}

// Hooks observe paginator progress. Nil hooks are skipped.
type Hooks struct {
	OnPage  func(source string, page, records int)
	OnError func(source string, page int, err error)
}

// Paginator walks a Source page by page and returns the combined records
type Paginator struct {
	source  Source
	cfg     PaginatorConfig
	limiter *rate.Limiter
	hooks   Hooks
	logger  *zap.Logger
}

// NewPaginator creates a paginator over source
func NewPaginator(source Source, cfg PaginatorConfig, logger *zap.Logger) *Paginator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Pages < 1 {
		cfg.Pages = 1
	}
	if cfg.PerPage < 1 {
		cfg.PerPage = 250
	}

	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}

	return &Paginator{
		source:  source,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// SetHooks installs progress hooks
func (p *Paginator) SetHooks(h Hooks) {
	p.hooks = h
}

// Collect fetches pages 1..Pages. It stops early at the first empty page. A page
// error also stops the walk, but the pages fetched before it are kept; only
// when nothing at all was fetched does Collect fail. It then returns the page
// error, or ErrNoData when the source was simply empty.
func (p *Paginator) Collect(ctx context.Context) ([]core.MarketRecord, error) {
	var (
		all     []core.MarketRecord
		lastErr error
	)

	for page := 1; page <= p.cfg.Pages; page++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for page %d: %w", page, err)
		}

		records, err := p.source.FetchPage(ctx, page, p.cfg.PerPage)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("page %d: %w", page, err)
			p.logger.Warn("page fetch failed, keeping earlier pages",
				zap.String("source", p.source.Name()),
				zap.Int("page", page),
				zap.Int("records_kept", len(all)),
				zap.Error(err),
			)
			if p.hooks.OnError != nil {
				p.hooks.OnError(p.source.Name(), page, err)
			}
			break
		}

		if p.hooks.OnPage != nil {
			p.hooks.OnPage(p.source.Name(), page, len(records))
		}

		if len(records) == 0 {
			p.logger.Debug("source exhausted",
				zap.String("source", p.source.Name()),
				zap.Int("page", page),
			)
			break
		}

		all = append(all, records...)
		p.logger.Debug("page fetched",
			zap.String("source", p.source.Name()),
			zap.Int("page", page),
			zap.Int("pages", p.cfg.Pages),
			zap.Int("records", len(records)),
		)
	}

	if len(all) == 0 {
		if lastErr != nil {
			var ce *core.Error
			if !errors.As(lastErr, &ce) {
				lastErr = core.WrapError(core.ErrCollectorFailed, lastErr)
			}
			return nil, lastErr
		}
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("%s returned no records", p.source.Name()))
	}

	p.logger.Info("market data collected",
		zap.String("source", p.source.Name()),
		zap.Int("records", len(all)),
	)
	return all, nil
}
