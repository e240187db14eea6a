package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/newthinker/screener/internal/api/response"
	"github.com/newthinker/screener/internal/core"
	"github.com/newthinker/screener/internal/sizing"
)

// SizeRequest is the body of a position sizing request.
type SizeRequest struct {
	Balance  float64 `json:"balance"`
	RiskPct  float64 `json:"risk_pct"`
	Entry    float64 `json:"entry"`
	StopLoss float64 `json:"stop_loss"`
	RR       float64 `json:"rr,omitempty"`
}

// SizeResponse is the computed position.
type SizeResponse struct {
	Side         core.Direction `json:"side"`
	Quantity     float64        `json:"quantity"`
	Notional     float64        `json:"notional"`
	RiskAmount   float64        `json:"risk_amount"`
	StopDistance float64        `json:"stop_distance_pct"`
	SafeLeverage int            `json:"safe_leverage"`
	TakeProfit   *float64       `json:"take_profit,omitempty"`
}

// SizingHandler computes fixed-risk position sizes.
type SizingHandler struct{}

// NewSizingHandler creates a new sizing handler.
func NewSizingHandler() *SizingHandler {
	return &SizingHandler{}
}

// Calculate sizes the position described by the request body.
func (h *SizingHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req SizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrInvalidSizing, fmt.Errorf("decoding body: %w", err)))
		return
	}

	in := sizing.Input{
		Balance:  req.Balance,
		RiskPct:  req.RiskPct,
		Entry:    req.Entry,
		StopLoss: req.StopLoss,
	}
	res, err := sizing.Calculate(in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	resp := SizeResponse{
		Side:         res.Side,
		Quantity:     res.Quantity,
		Notional:     res.Notional,
		RiskAmount:   res.RiskAmount,
		StopDistance: res.StopDistance,
		SafeLeverage: res.SafeLeverage,
	}
	if req.RR > 0 {
		tp := sizing.TakeProfit(in, req.RR)
		resp.TakeProfit = &tp
	}

	response.JSON(w, http.StatusOK, resp)
}
