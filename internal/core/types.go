package core

// Direction is the trade side a category signals
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// IsValid reports whether d is a recognised direction
func (d Direction) IsValid() bool {
	return d == DirectionLong || d == DirectionShort
}

// MarketRecord is one instrument snapshot from a market data source.
// Every numeric field is optional: nil means the source did not report it.
type MarketRecord struct {
	ID        string   `json:"id,omitempty" yaml:"id,omitempty"`
	Symbol    string   `json:"symbol" yaml:"symbol"`
	Name      string   `json:"name,omitempty" yaml:"name,omitempty"`
	Price     *float64 `json:"current_price" yaml:"current_price"`
	Change24h *float64 `json:"change_24h" yaml:"change_24h"`
	Change7d  *float64 `json:"change_7d" yaml:"change_7d"`
	Change30d *float64 `json:"change_30d" yaml:"change_30d"`
	Volume24h *float64 `json:"total_volume" yaml:"total_volume"`
	MarketCap *float64 `json:"market_cap" yaml:"market_cap"`
	ATH       *float64 `json:"ath" yaml:"ath"`
}

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 {
	return &v
}
