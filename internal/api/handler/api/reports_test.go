package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/screener/internal/api/response"
	"github.com/newthinker/screener/internal/app"
	"github.com/newthinker/screener/internal/config"
	"github.com/newthinker/screener/internal/core"
	"github.com/newthinker/screener/internal/screener"
	"github.com/newthinker/screener/internal/storage/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScreener struct {
	store   *history.MemoryStore
	reg     *screener.Registry
	scanErr error
}

func newFakeScreener() *fakeScreener {
	return &fakeScreener{
		store: history.NewMemoryStore(10),
		reg:   screener.DefaultRegistry(),
	}
}

func (f *fakeScreener) RunOnce(ctx context.Context) (*screener.Report, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	r := f.report("scan", time.Now(), "intraday_long")
	if err := f.store.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (f *fakeScreener) Registry() *screener.Registry { return f.reg }
func (f *fakeScreener) History() history.Store       { return f.store }
func (f *fakeScreener) Stats() map[string]any        { return map[string]any{"runs": 3} }

func (f *fakeScreener) report(id string, at time.Time, keys ...string) *screener.Report {
	r := screener.Aggregate(f.reg, nil, 5)
	r.ID = id
	r.Source = "coingecko"
	r.GeneratedAt = at
	for i := range r.Groups {
		for _, k := range keys {
			if r.Groups[i].Category.Key == k {
				r.Groups[i].Matches = append(r.Groups[i].Matches, screener.MatchResult{
					Category: k,
					Record:   core.MarketRecord{Symbol: "btc"},
				})
				r.TotalMatches++
			}
		}
	}
	return r
}

func (f *fakeScreener) seed(t *testing.T) {
	t.Helper()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Save(context.Background(), f.report("r1", base, "swing_long")))
	require.NoError(t, f.store.Save(context.Background(), f.report("r2", base.Add(time.Hour), "intraday_short")))
	require.NoError(t, f.store.Save(context.Background(), f.report("r3", base.Add(2*time.Hour), "swing_long", "intraday_long")))
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp response.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return data
}

func TestReportsHandler_Latest(t *testing.T) {
	f := newFakeScreener()
	f.seed(t)
	handler := NewReportsHandler(f)

	w := httptest.NewRecorder()
	handler.Latest(w, httptest.NewRequest("GET", "/api/report", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "r3", data["id"])
	assert.EqualValues(t, 2, data["total_matches"])
	assert.Len(t, data["groups"], 6)
}

func TestReportsHandler_Latest_Empty(t *testing.T) {
	handler := NewReportsHandler(newFakeScreener())

	w := httptest.NewRecorder()
	handler.Latest(w, httptest.NewRequest("GET", "/api/report", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportsHandler_List(t *testing.T) {
	f := newFakeScreener()
	f.seed(t)
	handler := NewReportsHandler(f)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
		total   int
	}{
		{name: "all", query: "", wantIDs: []string{"r3", "r2", "r1"}, total: 3},
		{name: "by category", query: "?category=swing_long", wantIDs: []string{"r3", "r1"}, total: 2},
		{name: "limit", query: "?limit=1", wantIDs: []string{"r3"}, total: 3},
		{name: "offset", query: "?offset=2", wantIDs: []string{"r1"}, total: 3},
		{name: "from", query: "?from=2024-03-01T12:30:00Z", wantIDs: []string{"r3", "r2"}, total: 2},
		{name: "bad limit ignored", query: "?limit=abc", wantIDs: []string{"r3", "r2", "r1"}, total: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.List(w, httptest.NewRequest("GET", "/api/reports"+tt.query, nil))

			require.Equal(t, http.StatusOK, w.Code)
			data := decodeData(t, w)

			reports := data["reports"].([]any)
			ids := make([]string, len(reports))
			for i, r := range reports {
				ids[i] = r.(map[string]any)["id"].(string)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.EqualValues(t, tt.total, data["total"])
		})
	}
}

func TestReportsHandler_List_SummaryCounts(t *testing.T) {
	f := newFakeScreener()
	f.seed(t)

	w := httptest.NewRecorder()
	NewReportsHandler(f).List(w, httptest.NewRequest("GET", "/api/reports?limit=1", nil))

	data := decodeData(t, w)
	first := data["reports"].([]any)[0].(map[string]any)
	counts := first["counts"].(map[string]any)
	assert.EqualValues(t, 1, counts["swing_long"])
	assert.EqualValues(t, 0, counts["swing_short"])
	assert.NotContains(t, first, "groups")
}

func TestReportsHandler_List_UnknownCategory(t *testing.T) {
	w := httptest.NewRecorder()
	NewReportsHandler(newFakeScreener()).List(w, httptest.NewRequest("GET", "/api/reports?category=scalp", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportsHandler_Get(t *testing.T) {
	f := newFakeScreener()
	f.seed(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/reports/{id}", NewReportsHandler(f).Get)

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "found", path: "/api/reports/r2", want: http.StatusOK},
		{name: "missing", path: "/api/reports/nope", want: http.StatusNotFound},
		{name: "one group", path: "/api/reports/r3?category=intraday_long", want: http.StatusOK},
		{name: "unknown group", path: "/api/reports/r3?category=scalp", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports/r3?category=intraday_long", nil))
	data := decodeData(t, w)
	assert.Len(t, data["matches"], 1)
}

func TestReportsHandler_Scan(t *testing.T) {
	f := newFakeScreener()

	w := httptest.NewRecorder()
	NewReportsHandler(f).Scan(w, httptest.NewRequest("POST", "/api/scan", nil))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "scan", decodeData(t, w)["id"])

	n, err := f.store.Count(context.Background(), history.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReportsHandler_Scan_SourceDown(t *testing.T) {
	f := newFakeScreener()
	f.scanErr = core.WrapError(core.ErrCircuitOpen, errors.New("coingecko"))

	w := httptest.NewRecorder()
	NewReportsHandler(f).Scan(w, httptest.NewRequest("POST", "/api/scan", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CIRCUIT_OPEN", resp.Error.Code)
}

func TestReportsHandler_Stats(t *testing.T) {
	w := httptest.NewRecorder()
	NewReportsHandler(newFakeScreener()).Stats(w, httptest.NewRequest("GET", "/api/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decodeData(t, w)["runs"])
}

func TestParseTime(t *testing.T) {
	assert.True(t, parseTime("").IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), parseTime("2024-03-01"))
	assert.Equal(t, 30, parseTime("2024-03-01T12:30:00Z").Minute())
}

type failingSource struct {
	err error
}

func (s failingSource) Name() string { return "coingecko" }

func (s failingSource) FetchPage(ctx context.Context, page, perPage int) ([]core.MarketRecord, error) {
	return nil, s.err
}

func TestReportsHandler_Scan_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{
			name:     "rate limited",
			err:      core.WrapError(core.ErrRateLimited, errors.New("429 after backoff")),
			wantCode: http.StatusServiceUnavailable,
			wantErr:  "RATE_LIMITED",
		},
		{
			name:     "upstream failure",
			err:      core.WrapError(core.ErrCollectorFailed, errors.New("status 500")),
			wantCode: http.StatusBadGateway,
			wantErr:  "COLLECTOR_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Source.PageDelay = 0
			a, err := app.New(cfg, nil)
			require.NoError(t, err)
			a.RegisterSource(failingSource{err: tt.err})

			w := httptest.NewRecorder()
			NewReportsHandler(a).Scan(w, httptest.NewRequest("POST", "/api/scan", nil))

			require.Equal(t, tt.wantCode, w.Code)

			var resp response.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}
