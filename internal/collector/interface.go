package collector

import (
	"context"

	"github.com/newthinker/screener/internal/core"
)

// Source defines the interface for paginated market data sources
type Source interface {
	// Name returns the source identifier (e.g., "coingecko")
	Name() string

	// FetchPage fetches one page of market records, 1-based.
	// An empty page means the source has no more records.
	FetchPage(ctx context.Context, page, perPage int) ([]core.MarketRecord, error)
}
