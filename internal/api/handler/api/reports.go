package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/newthinker/screener/internal/api/response"
	"github.com/newthinker/screener/internal/screener"
	"github.com/newthinker/screener/internal/storage/history"
)

const defaultListLimit = 50

// Screener is the application surface the HTTP handlers depend on.
type Screener interface {
	RunOnce(ctx context.Context) (*screener.Report, error)
	Registry() *screener.Registry
	History() history.Store
	Stats() map[string]any
}

// ReportSummary is the list view of a report, without the matches.
type ReportSummary struct {
	ID           string         `json:"id"`
	Source       string         `json:"source,omitempty"`
	GeneratedAt  time.Time      `json:"generated_at"`
	Scanned      int            `json:"scanned"`
	TotalMatches int            `json:"total_matches"`
	Counts       map[string]int `json:"counts"`
}

// Summarize builds the list view of r.
func Summarize(r *screener.Report) ReportSummary {
	return ReportSummary{
		ID:           r.ID,
		Source:       r.Source,
		GeneratedAt:  r.GeneratedAt,
		Scanned:      r.Scanned,
		TotalMatches: r.TotalMatches,
		Counts:       r.Counts(),
	}
}

// ReportsHandler serves screening reports.
type ReportsHandler struct {
	app Screener
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(app Screener) *ReportsHandler {
	return &ReportsHandler{app: app}
}

// Latest returns the most recent report.
func (h *ReportsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.History().Latest(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, report)
}

// List returns report summaries matching query parameters, newest first.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := history.ListFilter{
		Category: q.Get("category"),
		From:     parseTime(q.Get("from")),
		To:       parseTime(q.Get("to")),
		Limit:    defaultListLimit,
	}

	if filter.Category != "" {
		if _, ok := h.app.Registry().Get(filter.Category); !ok {
			response.Error(w, http.StatusBadRequest, unknownCategory(filter.Category))
			return
		}
	}

	if limit := q.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	if offset := q.Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil && n > 0 {
			filter.Offset = n
		}
	}

	store := h.app.History()
	reports, err := store.List(r.Context(), filter)
	if err != nil {
		response.Fail(w, err)
		return
	}

	count, _ := store.Count(r.Context(), filter)

	summaries := make([]ReportSummary, len(reports))
	for i, rep := range reports {
		summaries[i] = Summarize(rep)
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"reports": summaries,
		"total":   count,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// Get returns a single report by ID. With ?category=key only that group is
// returned.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.History().Get(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}

	key := r.URL.Query().Get("category")
	if key == "" {
		response.JSON(w, http.StatusOK, report)
		return
	}

	for _, g := range report.Groups {
		if g.Category.Key == key {
			response.JSON(w, http.StatusOK, g)
			return
		}
	}
	response.Error(w, http.StatusNotFound, unknownCategory(key))
}

// Scan runs a screening cycle and returns its report.
func (h *ReportsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.RunOnce(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, report)
}

// Stats returns runtime statistics.
func (h *ReportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.app.Stats())
}

// parseTime accepts RFC3339 or a plain date; anything else is ignored.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}
