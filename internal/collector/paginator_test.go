package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/newthinker/screener/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedSource serves fixed pages and fails on the configured page
type pagedSource struct {
	pages    [][]core.MarketRecord
	failPage int
	failErr  error
	calls    []int
}

func (s *pagedSource) Name() string { return "paged" }

func (s *pagedSource) FetchPage(ctx context.Context, page, perPage int) ([]core.MarketRecord, error) {
	s.calls = append(s.calls, page)
	if page == s.failPage {
		if s.failErr != nil {
			return nil, s.failErr
		}
		return nil, core.WrapError(core.ErrCollectorFailed, errors.New("boom"))
	}
	if page > len(s.pages) {
		return nil, nil
	}
	return s.pages[page-1], nil
}

func page(prefix string, n int) []core.MarketRecord {
	out := make([]core.MarketRecord, n)
	for i := range out {
		out[i] = core.MarketRecord{Symbol: fmt.Sprintf("%s%d", prefix, i)}
	}
	return out
}

func TestPaginator_CollectsAllPages(t *testing.T) {
	src := &pagedSource{pages: [][]core.MarketRecord{page("a", 2), page("b", 2)}}
	p := NewPaginator(src, PaginatorConfig{Pages: 2, PerPage: 2}, nil)

	var observed []int
	p.SetHooks(Hooks{OnPage: func(source string, page, records int) {
		observed = append(observed, records)
	}})

	records, err := p.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "a0", records[0].Symbol)
	assert.Equal(t, "b1", records[3].Symbol)
	assert.Equal(t, []int{2, 2}, observed)
}

func TestPaginator_StopsOnEmptyPage(t *testing.T) {
	src := &pagedSource{pages: [][]core.MarketRecord{page("a", 3)}}
	p := NewPaginator(src, PaginatorConfig{Pages: 4, PerPage: 3}, nil)

	records, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, []int{1, 2}, src.calls)
}

func TestPaginator_KeepsPagesBeforeError(t *testing.T) {
	src := &pagedSource{
		pages:    [][]core.MarketRecord{page("a", 2), page("b", 2), page("c", 2)},
		failPage: 2,
	}
	p := NewPaginator(src, PaginatorConfig{Pages: 3, PerPage: 2}, nil)

	var failed []int
	p.SetHooks(Hooks{OnError: func(source string, page int, err error) {
		failed = append(failed, page)
	}})

	records, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, []int{1, 2}, src.calls)
	assert.Equal(t, []int{2}, failed)
}

func TestPaginator_FirstPageErrorIsReturned(t *testing.T) {
	tests := []struct {
		name    string
		failErr error
		want    *core.Error
	}{
		{name: "collector failure", want: core.ErrCollectorFailed},
		{name: "rate limited", failErr: core.WrapError(core.ErrRateLimited, errors.New("429 twice")), want: core.ErrRateLimited},
		{name: "circuit open", failErr: core.ErrCircuitOpen, want: core.ErrCircuitOpen},
		{name: "plain error", failErr: errors.New("connection reset"), want: core.ErrCollectorFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &pagedSource{failPage: 1, failErr: tt.failErr}
			p := NewPaginator(src, PaginatorConfig{Pages: 3}, nil)

			_, err := p.Collect(context.Background())
			assert.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, core.ErrNoData, "a failed fetch is not an empty source")
			assert.Equal(t, []int{1}, src.calls)
		})
	}
}

func TestPaginator_NoDataOnEmptySource(t *testing.T) {
	p := NewPaginator(&pagedSource{}, PaginatorConfig{Pages: 2}, nil)

	_, err := p.Collect(context.Background())
	assert.ErrorIs(t, err, core.ErrNoData)
}

func TestPaginator_PacesRequests(t *testing.T) {
	src := &pagedSource{pages: [][]core.MarketRecord{page("a", 1), page("b", 1), page("c", 1)}}
	p := NewPaginator(src, PaginatorConfig{Pages: 3, Delay: 30 * time.Millisecond}, nil)

	start := time.Now()
	_, err := p.Collect(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestPaginator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &pagedSource{pages: [][]core.MarketRecord{page("a", 1)}}
	p := NewPaginator(src, PaginatorConfig{Pages: 1}, nil)

	_, err := p.Collect(ctx)
	assert.Error(t, err)
	assert.Empty(t, src.calls)
}
