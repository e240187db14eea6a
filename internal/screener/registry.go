package screener

import (
	"fmt"

	"github.com/newthinker/screener/internal/core"
)

// CategoryDefinition describes one signal category: the four primary ranges a
// record must satisfy, plus the informational distance-from-ATH range.
type CategoryDefinition struct {
	Key       string         `json:"key" yaml:"key"`
	Label     string         `json:"label" yaml:"label"`
	Icon      string         `json:"icon,omitempty" yaml:"icon,omitempty"`
	Direction core.Direction `json:"direction" yaml:"direction"`
	H24       Range          `json:"h24" yaml:"h24"`
	D7        Range          `json:"d7" yaml:"d7"`
	D30       Range          `json:"d30" yaml:"d30"`
	VolMcap   Range          `json:"vol_mcap" yaml:"vol_mcap"`
	FromATH   Range          `json:"from_ath" yaml:"from_ath"`
}

// IsLong reports whether the category signals a long entry
func (d CategoryDefinition) IsLong() bool {
	return d.Direction == core.DirectionLong
}

// Validate checks the definition for configuration errors
func (d CategoryDefinition) Validate() error {
	if d.Key == "" {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("category key is empty"))
	}
	if !d.Direction.IsValid() {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("category %s: unknown direction %q", d.Key, d.Direction))
	}

	ranges := []struct {
		name string
		r    Range
	}{
		{"h24", d.H24},
		{"d7", d.D7},
		{"d30", d.D30},
		{"vol_mcap", d.VolMcap},
		{"from_ath", d.FromATH},
	}
	for _, nr := range ranges {
		if err := nr.r.Validate(); err != nil {
			return fmt.Errorf("category %s %s: %w", d.Key, nr.name, err)
		}
	}
	return nil
}

// Registry is an immutable, ordered set of category definitions.
// Iteration order is the order the definitions were supplied in.
type Registry struct {
	defs  []CategoryDefinition
	index map[string]int
}

// NewRegistry validates the definitions and builds a registry from them.
func NewRegistry(defs ...CategoryDefinition) (*Registry, error) {
	r := &Registry{
		defs:  make([]CategoryDefinition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}

	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[d.Key]; dup {
			return nil, core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("duplicate category key %q", d.Key))
		}
		if d.Label == "" {
			d.Label = d.Key
		}
		r.index[d.Key] = len(r.defs)
		r.defs = append(r.defs, d)
	}

	return r, nil
}

// DefaultRegistry returns a registry holding DefaultCategories.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultCategories()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Categories returns a copy of the definitions in registry order
func (r *Registry) Categories() []CategoryDefinition {
	out := make([]CategoryDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Get retrieves a category by key
func (r *Registry) Get(key string) (CategoryDefinition, bool) {
	i, ok := r.index[key]
	if !ok {
		return CategoryDefinition{}, false
	}
	return r.defs[i], true
}

// Keys returns the category keys in registry order
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.defs))
	for i, d := range r.defs {
		keys[i] = d.Key
	}
	return keys
}

// Len returns the number of categories
func (r *Registry) Len() int {
	return len(r.defs)
}

// DefaultCategories returns the built-in momentum categories, longs first.
func DefaultCategories() []CategoryDefinition {
	return []CategoryDefinition{
		{
			Key:       "intraday_long",
			Label:     "INTRADAY LONG",
			Icon:      "▲ ",
			Direction: core.DirectionLong,
			H24:       Between(2, 8),
			D7:        Between(-3, 5),
			D30:       Between(-10, 10),
			VolMcap:   Between(0.03, 0.15),
			FromATH:   Between(-75, -40),
		},
		{
			Key:       "semi_swing_long",
			Label:     "SEMI-SWING LONG",
			Icon:      "▲▲",
			Direction: core.DirectionLong,
			H24:       Between(0, 10),
			D7:        Between(5, 20),
			D30:       Between(-5, 25),
			VolMcap:   Between(0.02, 0.12),
			FromATH:   Between(-85, -50),
		},
		{
			Key:       "swing_long",
			Label:     "SWING LONG",
			Icon:      "▲▲▲",
			Direction: core.DirectionLong,
			H24:       Any(),
			D7:        Between(10, 40),
			D30:       Between(15, 60),
			VolMcap:   Between(0.01, 0.08),
			FromATH:   Between(-95, -75),
		},
		{
			Key:       "intraday_short",
			Label:     "INTRADAY SHORT",
			Icon:      "▼ ",
			Direction: core.DirectionShort,
			H24:       Between(-8, -3),
			D7:        Between(-12, -5),
			D30:       Between(-20, -10),
			VolMcap:   Between(0.03, 0.12),
			FromATH:   Between(-75, -50),
		},
		{
			Key:       "semi_swing_short",
			Label:     "SEMI-SWING SHORT",
			Icon:      "▼▼",
			Direction: core.DirectionShort,
			H24:       Between(-10, -2),
			D7:        Between(-25, -10),
			D30:       Between(-40, -20),
			VolMcap:   Between(0.02, 0.10),
			FromATH:   Between(-85, -60),
		},
		{
			Key:       "swing_short",
			Label:     "SWING SHORT",
			Icon:      "▼▼▼",
			Direction: core.DirectionShort,
			H24:       Any(),
			D7:        Between(-40, -15),
			D30:       Between(-60, -30),
			VolMcap:   Between(0.01, 0.06),
			FromATH:   Between(-95, -70),
		},
	}
}
