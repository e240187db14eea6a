// Package sizing computes fixed-risk position sizes for cross-margin trades.
package sizing

import (
	"fmt"
	"math"

	"github.com/newthinker/screener/internal/core"
)

// LeverageBuffer inflates the minimum leverage to absorb fees and slippage.
const LeverageBuffer = 1.5

// Input describes a planned trade. RiskPct is the share of the balance lost
// if the stop is hit, in percent.
type Input struct {
	Balance  float64
	RiskPct  float64
	Entry    float64
	StopLoss float64
}

// Result holds the computed position.
type Result struct {
	Side         core.Direction // long when the stop sits below entry
	Quantity     float64        // base asset units
	Notional     float64        // Quantity * Entry, in quote currency
	RiskAmount   float64        // quote currency lost at the stop
	StopDistance float64        // |entry - stop| as a percent of entry
	SafeLeverage int
}

// Validate checks the input for values the formulas cannot handle
func (in Input) Validate() error {
	switch {
	case !(in.Balance > 0):
		return core.WrapError(core.ErrInvalidSizing, fmt.Errorf("balance must be positive, got %g", in.Balance))
	case !(in.RiskPct > 0 && in.RiskPct <= 100):
		return core.WrapError(core.ErrInvalidSizing, fmt.Errorf("risk must be in (0, 100], got %g", in.RiskPct))
	case !(in.Entry > 0) || !(in.StopLoss > 0):
		return core.WrapError(core.ErrInvalidSizing, fmt.Errorf("prices must be positive"))
	case in.Entry == in.StopLoss:
		return core.WrapError(core.ErrInvalidSizing, fmt.Errorf("stop loss equals entry"))
	}
	return nil
}

// Calculate sizes a position so that hitting the stop loses RiskPct of the
// balance. SafeLeverage is the buffered leverage needed to open the notional.
func Calculate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	delta := math.Abs(in.Entry - in.StopLoss)
	risk := in.Balance * in.RiskPct / 100
	qty := risk / delta
	notional := qty * in.Entry

	side := core.DirectionLong
	if in.StopLoss > in.Entry {
		side = core.DirectionShort
	}

	return Result{
		Side:         side,
		Quantity:     qty,
		Notional:     notional,
		RiskAmount:   risk,
		StopDistance: delta / in.Entry * 100,
		SafeLeverage: int(math.Floor(LeverageBuffer * notional / in.Balance)),
	}, nil
}

// TakeProfit returns the exit price that earns rr times the risked distance
func TakeProfit(in Input, rr float64) float64 {
	delta := math.Abs(in.Entry - in.StopLoss)
	if in.StopLoss > in.Entry {
		return in.Entry - rr*delta
	}
	return in.Entry + rr*delta
}
