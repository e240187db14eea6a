package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/screener/internal/config"
	"github.com/newthinker/screener/internal/core"
	"github.com/newthinker/screener/internal/export"
	"github.com/newthinker/screener/internal/metrics"
	"github.com/newthinker/screener/internal/storage/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	name  string
	pages [][]core.MarketRecord
	err   error

	mu    sync.Mutex
	calls int
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) FetchPage(ctx context.Context, page, perPage int) ([]core.MarketRecord, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if page > len(m.pages) {
		return nil, nil
	}
	return m.pages[page-1], nil
}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func momentum(symbol string) core.MarketRecord {
	return core.MarketRecord{
		Symbol:    symbol,
		Price:     core.Float(90),
		Change24h: core.Float(5),
		Change7d:  core.Float(1),
		Change30d: core.Float(0),
		Volume24h: core.Float(3e7),
		MarketCap: core.Float(3e8),
		ATH:       core.Float(300),
	}
}

func counterValue(t *testing.T, reg *metrics.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Source.Provider = "mock"
	cfg.Source.Pages = 3
	cfg.Source.PerPage = 2
	cfg.Source.PageDelay = 0
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, src *mockSource) *App {
	t.Helper()
	a, err := New(cfg, nil)
	require.NoError(t, err)
	a.RegisterSource(src)
	return a
}

func TestApp_New(t *testing.T) {
	a, err := New(testConfig(), nil)
	require.NoError(t, err)

	stats := a.Stats()
	assert.False(t, stats["running"].(bool))
	assert.Equal(t, 6, stats["categories"])
	assert.Nil(t, a.Metrics())
}

func TestApp_New_BadCategories(t *testing.T) {
	cfg := testConfig()
	cfg.Categories = []config.CategoryConfig{{Key: "bad", Direction: "long", H24: []float64{3, 1}}}

	_, err := New(cfg, nil)
	assert.True(t, errors.Is(err, core.ErrInvalidRange))
}

func TestApp_RunOnce(t *testing.T) {
	src := &mockSource{
		name: "mock",
		pages: [][]core.MarketRecord{
			{momentum("aaa"), {Symbol: "flat"}},
			{momentum("bbb")},
		},
	}
	a := newTestApp(t, testConfig(), src)
	reg := metrics.NewRegistry()
	a.SetMetrics(reg)

	report, err := a.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "mock", report.Source)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.TotalMatches)
	// Page 3 comes back empty and ends the walk
	assert.Equal(t, 3, src.callCount())

	latest, err := a.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.ID, latest.ID)

	assert.Equal(t, float64(1), counterValue(t, reg, "screener_runs_total"))
	assert.Equal(t, float64(3), counterValue(t, reg, "screener_pages_fetched_total"))
	assert.Equal(t, 1, a.Stats()["runs"])
}

func TestApp_RunOnce_UnknownSource(t *testing.T) {
	cfg := testConfig()
	cfg.Source.Provider = "nowhere"
	a := newTestApp(t, cfg, &mockSource{name: "mock"})

	_, err := a.RunOnce(context.Background())
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
	assert.NotEmpty(t, a.Stats()["last_error"])
}

func TestApp_RunOnce_SourceFails(t *testing.T) {
	src := &mockSource{name: "mock", err: core.ErrCollectorFailed}
	a := newTestApp(t, testConfig(), src)

	_, err := a.RunOnce(context.Background())
	assert.True(t, errors.Is(err, core.ErrCollectorFailed))
	assert.False(t, errors.Is(err, core.ErrNoData))

	_, err = a.Latest(context.Background())
	assert.True(t, errors.Is(err, core.ErrNoData), "failed runs are not kept")
}

func TestApp_RunOnce_Exports(t *testing.T) {
	src := &mockSource{name: "mock", pages: [][]core.MarketRecord{{momentum("aaa")}}}
	a := newTestApp(t, testConfig(), src)

	fs, err := export.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	exporter, err := export.NewExporter(fs, "yaml")
	require.NoError(t, err)
	a.SetExporter(exporter)

	report, err := a.RunOnce(context.Background())
	require.NoError(t, err)

	paths, err := exporter.List(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, exporter.PathFor(report), paths[0])
}

func TestApp_StartStop(t *testing.T) {
	src := &mockSource{name: "mock", pages: [][]core.MarketRecord{{momentum("aaa")}}}
	a := newTestApp(t, testConfig(), src)
	a.SetInterval(10 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- a.Start(context.Background())
	}()

	require.Eventually(t, func() bool {
		count, _ := a.History().Count(context.Background(), history.ListFilter{})
		return count >= 2
	}, 2*time.Second, 5*time.Millisecond)

	assert.Error(t, a.Start(context.Background()), "second start should fail while running")

	a.Stop()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.False(t, a.Stats()["running"].(bool))
}

func TestApp_StopBeforeStart(t *testing.T) {
	src := &mockSource{name: "mock", pages: [][]core.MarketRecord{{momentum("aaa")}}}
	a := newTestApp(t, testConfig(), src)

	a.Stop()

	done := make(chan error, 1)
	go func() {
		done <- a.Start(context.Background())
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("loop kept running after an early stop")
	}
	assert.Zero(t, src.callCount(), "no cycle should run")
	assert.False(t, a.Stats()["running"].(bool))
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Cache.Type = "memory"
	cfg.Export.Enabled = true
	cfg.Export.Path = t.TempDir()

	a, err := NewFromConfig(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{"coingecko"}, a.Stats()["sources"])
	assert.NotNil(t, a.Metrics())
	assert.True(t, a.Stats()["export"].(bool))
}

func TestNewFromConfig_BadCache(t *testing.T) {
	cfg := config.Defaults()
	cfg.Cache.Type = "redis"

	_, err := NewFromConfig(cfg, nil)
	assert.True(t, errors.Is(err, core.ErrConfigMissing))
}
