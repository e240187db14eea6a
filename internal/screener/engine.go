package screener

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/screener/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine runs the derive, classify and aggregate pipeline over a record set
type Engine struct {
	registry *Registry
	workers  int
	logger   *zap.Logger
}

// NewEngine creates a new screening engine
func NewEngine(reg *Registry, logger ...*zap.Logger) *Engine {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Engine{
		registry: reg,
		workers:  1,
		logger:   l,
	}
}

// SetWorkers sets how many records are classified concurrently.
// Values below 2 classify sequentially.
func (e *Engine) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	e.workers = n
}

// Registry returns the category registry the engine screens against
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Run screens records and returns the report. Per-category match order is
// always the scan order of records, regardless of the worker count.
func (e *Engine) Run(ctx context.Context, records []core.MarketRecord) (*Report, error) {
	batches := make([][]MatchResult, len(records))

	if e.workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)

		for i := range records {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				batches[i] = e.screenRecord(records[i])
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, rec := range records {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			batches[i] = e.screenRecord(rec)
		}
	}

	report := Aggregate(e.registry, batches, len(records))
	report.ID = uuid.NewString()
	report.GeneratedAt = time.Now().UTC()

	e.logger.Debug("screening complete",
		zap.String("report_id", report.ID),
		zap.Int("scanned", report.Scanned),
		zap.Int("matches", report.TotalMatches),
		zap.Int("workers", e.workers),
	)

	return report, nil
}

func (e *Engine) screenRecord(rec core.MarketRecord) []MatchResult {
	return Classify(rec, Derive(rec), e.registry)
}
