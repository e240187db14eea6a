package main

import (
	"fmt"

	"github.com/newthinker/screener/internal/render"
	"github.com/newthinker/screener/internal/sizing"
	"github.com/spf13/cobra"
)

var sizeFlags struct {
	balance float64
	risk    float64
	entry   float64
	stop    float64
	rr      []float64
}

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Size a fixed-risk position for a screened coin",
	Long: `Compute the position quantity that loses --risk percent of --balance
when the stop loss is hit, plus the notional and a buffered leverage.`,
	RunE: runSize,
}

func init() {
	f := sizeCmd.Flags()
	f.Float64Var(&sizeFlags.balance, "balance", 0, "account balance in quote currency (required)")
	f.Float64Var(&sizeFlags.risk, "risk", 1, "percent of balance to risk")
	f.Float64Var(&sizeFlags.entry, "entry", 0, "entry price (required)")
	f.Float64Var(&sizeFlags.stop, "stop", 0, "stop loss price (required)")
	f.Float64SliceVar(&sizeFlags.rr, "rr", []float64{1, 2, 3}, "reward/risk multiples to print take-profit levels for")

	sizeCmd.MarkFlagRequired("balance")
	sizeCmd.MarkFlagRequired("entry")
	sizeCmd.MarkFlagRequired("stop")

	rootCmd.AddCommand(sizeCmd)
}

func runSize(cmd *cobra.Command, args []string) error {
	in := sizing.Input{
		Balance:  sizeFlags.balance,
		RiskPct:  sizeFlags.risk,
		Entry:    sizeFlags.entry,
		StopLoss: sizeFlags.stop,
	}
	res, err := sizing.Calculate(in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Side          : %s\n", res.Side)
	fmt.Fprintf(out, "Quantity      : %.6f\n", res.Quantity)
	fmt.Fprintf(out, "Notional      : %s\n", render.FormatPrice(&res.Notional))
	fmt.Fprintf(out, "Risk amount   : %s\n", render.FormatPrice(&res.RiskAmount))
	fmt.Fprintf(out, "Stop distance : %.2f%%\n", res.StopDistance)
	fmt.Fprintf(out, "Safe leverage : %dx\n", res.SafeLeverage)
	for _, rr := range sizeFlags.rr {
		tp := sizing.TakeProfit(in, rr)
		fmt.Fprintf(out, "TP %-4g R     : %s\n", rr, render.FormatPrice(&tp))
	}
	return nil
}
