package screener

import "github.com/newthinker/screener/internal/core"

// DerivedMetrics holds the ratios computed from a raw record.
// A nil field is undefined, which is distinct from zero.
type DerivedMetrics struct {
	VolMcap *float64 `json:"vol_mcap" yaml:"vol_mcap"`
	FromATH *float64 `json:"from_ath" yaml:"from_ath"`
}

// Derive computes the volume/market-cap ratio and the percentage distance from the
// all-time high. Each is left undefined when its inputs are missing or the divisor
// is not positive.
func Derive(rec core.MarketRecord) DerivedMetrics {
	var m DerivedMetrics

	if rec.Volume24h != nil && rec.MarketCap != nil && *rec.MarketCap > 0 {
		m.VolMcap = core.Float(*rec.Volume24h / *rec.MarketCap)
	}

	if rec.Price != nil && rec.ATH != nil && *rec.ATH > 0 {
		m.FromATH = core.Float((*rec.Price - *rec.ATH) / *rec.ATH * 100)
	}

	return m
}
