package screener

import "time"

// Group is the set of matches for one category, in scan order.
type Group struct {
	Category CategoryDefinition `json:"category" yaml:"category"`
	Matches  []MatchResult      `json:"matches" yaml:"matches"`
}

// Report is the outcome of one screening run.
type Report struct {
	ID           string    `json:"id" yaml:"id"`
	Source       string    `json:"source,omitempty" yaml:"source,omitempty"`
	GeneratedAt  time.Time `json:"generated_at" yaml:"generated_at"`
	Scanned      int       `json:"scanned" yaml:"scanned"`
	TotalMatches int       `json:"total_matches" yaml:"total_matches"`
	Groups       []Group   `json:"groups" yaml:"groups"`
}

// Aggregate groups per-record match batches by category. Every registry category
// gets a group, even an empty one, and groups follow registry order. Within a
// group matches keep the order of batches. No deduplication is done: a record in
// two categories appears in both.
func Aggregate(reg *Registry, batches [][]MatchResult, scanned int) *Report {
	report := &Report{
		Scanned: scanned,
		Groups:  make([]Group, len(reg.defs)),
	}

	for i, d := range reg.defs {
		report.Groups[i] = Group{Category: d, Matches: []MatchResult{}}
	}

	for _, batch := range batches {
		for _, m := range batch {
			i, ok := reg.index[m.Category]
			if !ok {
				continue
			}
			report.Groups[i].Matches = append(report.Groups[i].Matches, m)
			report.TotalMatches++
		}
	}

	return report
}

// Group returns the matches for a category key
func (r *Report) Group(key string) ([]MatchResult, bool) {
	for _, g := range r.Groups {
		if g.Category.Key == key {
			return g.Matches, true
		}
	}
	return nil, false
}

// Counts returns the number of matches per category key
func (r *Report) Counts() map[string]int {
	counts := make(map[string]int, len(r.Groups))
	for _, g := range r.Groups {
		counts[g.Category.Key] = len(g.Matches)
	}
	return counts
}
