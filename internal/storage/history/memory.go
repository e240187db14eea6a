package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/newthinker/screener/internal/core"
	"github.com/newthinker/screener/internal/screener"
)

// MemoryStore is a bounded in-memory report store. Once full, the oldest
// report is dropped on each save.
type MemoryStore struct {
	reports []*screener.Report // oldest first
	maxSize int
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize < 1 {
		maxSize = 1
	}
	return &MemoryStore{
		reports: make([]*screener.Report, 0, maxSize),
		maxSize: maxSize,
	}
}

// Save adds a report to the store.
func (m *MemoryStore) Save(ctx context.Context, report *screener.Report) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("report has no id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports = append(m.reports, report)

	// Trim if over capacity (remove oldest)
	if len(m.reports) > m.maxSize {
		m.reports = append(m.reports[:0], m.reports[len(m.reports)-m.maxSize:]...)
	}

	return nil
}

// Get retrieves a report by ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (*screener.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, core.WrapError(core.ErrNoData, fmt.Errorf("report %s not found", id))
}

// Latest returns the newest report.
func (m *MemoryStore) Latest(ctx context.Context) (*screener.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.reports) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no report yet"))
	}
	return m.reports[len(m.reports)-1], nil
}

// List returns reports matching the filter, newest first.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]*screener.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*screener.Report{}
	for i := len(m.reports) - 1; i >= 0; i-- {
		if matches(m.reports[i], filter) {
			result = append(result, m.reports[i])
		}
	}

	// Apply offset and limit
	if filter.Offset >= len(result) {
		return []*screener.Report{}, nil
	}
	if filter.Offset > 0 {
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Count returns the count of matching reports.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, r := range m.reports {
		if matches(r, filter) {
			count++
		}
	}
	return count, nil
}

func matches(r *screener.Report, filter ListFilter) bool {
	if filter.Category != "" {
		if g, _ := r.Group(filter.Category); len(g) == 0 {
			return false
		}
	}
	if !filter.From.IsZero() && r.GeneratedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && r.GeneratedAt.After(filter.To) {
		return false
	}
	return true
}
