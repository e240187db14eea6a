package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/newthinker/screener/internal/collector"
	"github.com/newthinker/screener/internal/config"
	"github.com/newthinker/screener/internal/export"
	"github.com/newthinker/screener/internal/metrics"
	"github.com/newthinker/screener/internal/screener"
	"github.com/newthinker/screener/internal/storage/history"
	"go.uber.org/zap"
)

// App is the main application orchestrator: it fetches market data, screens
// it and hands the report to the history, metrics and export sinks.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	sources  *collector.Registry
	engine   *screener.Engine
	history  history.Store
	exporter *export.Exporter
	metrics  *metrics.Registry
	closers  []io.Closer

	interval time.Duration
	runMu    sync.Mutex

	mu      sync.RWMutex
	running bool
	stopReq bool
	cancel  context.CancelFunc
	runs    int
	lastRun time.Time
	lastErr error
}

// New creates an App with no sources or sinks registered
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("building category registry: %w", err)
	}

	engine := screener.NewEngine(reg, logger)
	engine.SetWorkers(cfg.Screen.Workers)

	interval := cfg.Server.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		sources:  collector.NewRegistry(),
		engine:   engine,
		history:  history.NewMemoryStore(cfg.Server.History),
		interval: interval,
	}, nil
}

// RegisterSource adds a market data source
func (a *App) RegisterSource(s collector.Source) {
	a.sources.Register(s)
}

// SetExporter enables report export after each run
func (a *App) SetExporter(e *export.Exporter) {
	a.exporter = e
}

// SetMetrics enables metrics recording
func (a *App) SetMetrics(m *metrics.Registry) {
	a.metrics = m
}

// SetInterval sets the screening interval
func (a *App) SetInterval(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.interval = d
}

// RunOnce performs one fetch and screen cycle and returns its report
func (a *App) RunOnce(ctx context.Context) (*screener.Report, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	start := time.Now()
	report, err := a.run(ctx)
	if a.metrics != nil {
		a.metrics.RecordRun(err, time.Since(start).Seconds())
	}

	a.mu.Lock()
	a.runs++
	a.lastErr = err
	if err == nil {
		a.lastRun = report.GeneratedAt
	}
	a.mu.Unlock()

	if err != nil {
		return nil, err
	}

	a.logger.Info("screening run complete",
		zap.String("report", report.ID),
		zap.Int("scanned", report.Scanned),
		zap.Int("matches", report.TotalMatches),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

func (a *App) run(ctx context.Context) (*screener.Report, error) {
	src, err := a.sources.MustGet(a.cfg.Source.Provider)
	if err != nil {
		return nil, err
	}

	paginator := collector.NewPaginator(src, collector.PaginatorConfig{
		Pages:   a.cfg.Source.Pages,
		PerPage: a.cfg.Source.PerPage,
		Delay:   a.cfg.Source.PageDelay,
	}, a.logger)
	if a.metrics != nil {
		paginator.SetHooks(a.metrics.PaginatorHooks())
	}

	records, err := paginator.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting from %s: %w", src.Name(), err)
	}

	report, err := a.engine.Run(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("screening: %w", err)
	}
	report.Source = src.Name()

	if err := a.history.Save(ctx, report); err != nil {
		a.logger.Warn("failed to keep report in history", zap.Error(err))
	}
	if a.metrics != nil {
		a.metrics.RecordReport(report)
	}
	a.export(ctx, report)

	return report, nil
}

// export is best effort: a failed upload is logged and the run still succeeds
func (a *App) export(ctx context.Context, report *screener.Report) {
	if a.exporter == nil {
		return
	}
	if _, err := a.exporter.Export(ctx, report); err != nil {
		a.logger.Error("report export failed", zap.String("report", report.ID), zap.Error(err))
		return
	}
	if _, err := a.exporter.Prune(ctx, a.cfg.Export.RetainDays); err != nil {
		a.logger.Warn("pruning exported reports failed", zap.Error(err))
	}
}

// Start runs a cycle immediately and then every interval until ctx is done
// or Stop is called
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	if a.stopReq {
		a.stopReq = false
		a.mu.Unlock()
		return context.Canceled
	}
	a.running = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	interval := a.interval
	a.mu.Unlock()

	defer func() {
		cancel()
		a.mu.Lock()
		a.running = false
		a.cancel = nil
		a.mu.Unlock()
	}()

	a.logger.Info("screener starting",
		zap.String("source", a.cfg.Source.Provider),
		zap.Int("categories", a.engine.Registry().Len()),
		zap.Duration("interval", interval),
	)

	a.cycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("screener shutting down")
			return ctx.Err()
		case <-ticker.C:
			a.cycle(ctx)
		}
	}
}

func (a *App) cycle(ctx context.Context) {
	if _, err := a.RunOnce(ctx); err != nil && ctx.Err() == nil {
		a.logger.Error("screening run failed", zap.Error(err))
	}
}

// Stop stops the screening loop. A Stop that arrives before the loop has
// started makes the next Start return immediately.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		return
	}
	a.stopReq = true
}

// Close releases resources such as cache connections
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Latest returns the most recent report, if any
func (a *App) Latest(ctx context.Context) (*screener.Report, error) {
	return a.history.Latest(ctx)
}

// History returns the report store
func (a *App) History() history.Store {
	return a.history
}

// Registry returns the category registry
func (a *App) Registry() *screener.Registry {
	return a.engine.Registry()
}

// Exporter returns the report exporter, nil when export is disabled
func (a *App) Exporter() *export.Exporter {
	return a.exporter
}

// Metrics returns the metrics registry, nil when disabled
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Stats returns application statistics
func (a *App) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"running":    a.running,
		"runs":       a.runs,
		"source":     a.cfg.Source.Provider,
		"sources":    a.sources.Names(),
		"categories": a.engine.Registry().Len(),
		"interval":   a.interval.String(),
		"export":     a.exporter != nil,
	}
	if !a.lastRun.IsZero() {
		stats["last_run"] = a.lastRun
	}
	if a.lastErr != nil {
		stats["last_error"] = a.lastErr.Error()
	}
	return stats
}
