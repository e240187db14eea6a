package history

import (
	"context"
	"time"

	"github.com/newthinker/screener/internal/screener"
)

// Store keeps recent screening reports for the lifetime of the process.
type Store interface {
	// Save adds a report. Reports must not be modified after saving.
	Save(ctx context.Context, report *screener.Report) error

	// Get retrieves a report by its ID.
	Get(ctx context.Context, id string) (*screener.Report, error)

	// Latest returns the most recently saved report.
	Latest(ctx context.Context) (*screener.Report, error)

	// List returns reports matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*screener.Report, error)

	// Count returns the number of reports matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter defines criteria for listing reports.
type ListFilter struct {
	Category string // only reports with at least one match in this category
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}
