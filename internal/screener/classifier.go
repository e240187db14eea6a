package screener

import (
	"fmt"

	"github.com/newthinker/screener/internal/core"
)

// Qualifier is the state of the distance-from-ATH check on a matched record.
// It never removes a record from a category.
type Qualifier int

const (
	// QualifierIndeterminate means the distance from ATH could not be computed
	QualifierIndeterminate Qualifier = iota
	QualifierSatisfied
	QualifierNotSatisfied
)

func (q Qualifier) String() string {
	switch q {
	case QualifierSatisfied:
		return "satisfied"
	case QualifierNotSatisfied:
		return "not_satisfied"
	default:
		return "indeterminate"
	}
}

// MarshalText encodes the qualifier by name for JSON and YAML output.
func (q Qualifier) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText parses a qualifier name
func (q *Qualifier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "satisfied":
		*q = QualifierSatisfied
	case "not_satisfied":
		*q = QualifierNotSatisfied
	case "indeterminate":
		*q = QualifierIndeterminate
	default:
		return fmt.Errorf("unknown qualifier %q", text)
	}
	return nil
}

// MatchResult records that a record passed a category's primary criteria.
type MatchResult struct {
	Category  string            `json:"category" yaml:"category"`
	Record    core.MarketRecord `json:"record" yaml:"record"`
	Metrics   DerivedMetrics    `json:"metrics" yaml:"metrics"`
	Qualifier Qualifier         `json:"ath_qualifier" yaml:"ath_qualifier"`
}

// MatchesPrimary evaluates the 24h, 7d, 30d and volume/market-cap criteria.
func (d CategoryDefinition) MatchesPrimary(rec core.MarketRecord, m DerivedMetrics) bool {
	return d.H24.Contains(rec.Change24h) &&
		d.D7.Contains(rec.Change7d) &&
		d.D30.Contains(rec.Change30d) &&
		d.VolMcap.Contains(m.VolMcap)
}

// Qualify evaluates the distance-from-ATH criterion.
func (d CategoryDefinition) Qualify(m DerivedMetrics) Qualifier {
	if m.FromATH == nil {
		return QualifierIndeterminate
	}
	if d.FromATH.Contains(m.FromATH) {
		return QualifierSatisfied
	}
	return QualifierNotSatisfied
}

// Classify returns one result per category whose primary criteria the record
// satisfies, in registry order. Categories are evaluated independently.
func Classify(rec core.MarketRecord, m DerivedMetrics, reg *Registry) []MatchResult {
	var matches []MatchResult

	for _, d := range reg.defs {
		if !d.MatchesPrimary(rec, m) {
			continue
		}
		matches = append(matches, MatchResult{
			Category:  d.Key,
			Record:    rec,
			Metrics:   m,
			Qualifier: d.Qualify(m),
		})
	}

	return matches
}
