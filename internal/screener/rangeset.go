package screener

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/newthinker/screener/internal/core"
	"gopkg.in/yaml.v3"
)

// Range is an inclusive [Min, Max] bound on one metric.
// The zero value is unconstrained: it accepts every value, including a missing one.
type Range struct {
	Bounded bool
	Min     float64
	Max     float64
}

// Any returns the unconstrained range
func Any() Range {
	return Range{}
}

// Between returns the inclusive range [min, max]
func Between(min, max float64) Range {
	return Range{Bounded: true, Min: min, Max: max}
}

// Contains reports whether value lies inside the range.
// Unconstrained ranges contain everything; bounded ranges never contain a missing value.
func (r Range) Contains(value *float64) bool {
	if !r.Bounded {
		return true
	}
	if value == nil {
		return false
	}
	return r.Min <= *value && *value <= r.Max
}

// Validate rejects bounded ranges whose minimum exceeds the maximum.
func (r Range) Validate() error {
	if !r.Bounded {
		return nil
	}
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return core.WrapError(core.ErrInvalidRange, fmt.Errorf("NaN bound in %s", r))
	}
	if r.Min > r.Max {
		return core.WrapError(core.ErrInvalidRange, fmt.Errorf("%g > %g", r.Min, r.Max))
	}
	return nil
}

func (r Range) String() string {
	if !r.Bounded {
		return "any"
	}
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// MarshalJSON encodes a bounded range as [min, max] and an unconstrained one as null.
func (r Range) MarshalJSON() ([]byte, error) {
	if !r.Bounded {
		return []byte("null"), nil
	}
	return json.Marshal([2]float64{r.Min, r.Max})
}

// UnmarshalJSON accepts null or a two element array.
func (r *Range) UnmarshalJSON(data []byte) error {
	var bounds []float64
	if err := json.Unmarshal(data, &bounds); err != nil {
		return err
	}
	if bounds == nil {
		*r = Any()
		return nil
	}
	if len(bounds) != 2 {
		return fmt.Errorf("range needs 2 bounds, got %d", len(bounds))
	}
	*r = Between(bounds[0], bounds[1])
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (r Range) MarshalYAML() (interface{}, error) {
	if !r.Bounded {
		return nil, nil
	}
	return []float64{r.Min, r.Max}, nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	var bounds []float64
	if err := value.Decode(&bounds); err != nil {
		return err
	}
	if bounds == nil {
		*r = Any()
		return nil
	}
	if len(bounds) != 2 {
		return fmt.Errorf("range needs 2 bounds, got %d", len(bounds))
	}
	*r = Between(bounds[0], bounds[1])
	return nil
}
