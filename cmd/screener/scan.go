package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newthinker/screener/internal/app"
	"github.com/newthinker/screener/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scanFlags struct {
	format   string
	color    string
	pages    int
	perPage  int
	currency string
	export   bool
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Fetch markets once and print the screening report",
	RunE:  runScan,
}

func init() {
	addScanFlags(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

func addScanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&scanFlags.format, "format", "f", "", "output format: table, json or yaml")
	f.StringVar(&scanFlags.color, "color", "", "color mode: auto, always or never")
	f.IntVar(&scanFlags.pages, "pages", 0, "number of market pages to fetch")
	f.IntVar(&scanFlags.perPage, "per-page", 0, "records per page")
	f.StringVar(&scanFlags.currency, "currency", "", "quote currency")
	f.BoolVar(&scanFlags.export, "export", false, "also export the report to the configured storage")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if scanFlags.format != "" {
		cfg.Output.Format = scanFlags.format
	}
	if scanFlags.color != "" {
		cfg.Output.Color = scanFlags.color
	}
	if scanFlags.pages > 0 {
		cfg.Source.Pages = scanFlags.pages
	}
	if scanFlags.perPage > 0 {
		cfg.Source.PerPage = scanFlags.perPage
	}
	if scanFlags.currency != "" {
		cfg.Source.Currency = scanFlags.currency
	}
	if scanFlags.export {
		cfg.Export.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	color, err := render.ColorEnabled(cfg.Output.Color, out)
	if err != nil {
		return err
	}
	renderer, err := render.New(cfg.Output.Format, color)
	if err != nil {
		return err
	}

	a, err := app.NewFromConfig(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("scanning markets",
		zap.String("source", cfg.Source.Provider),
		zap.Int("pages", cfg.Source.Pages),
		zap.Int("per_page", cfg.Source.PerPage),
	)

	report, err := a.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	return renderer.Render(out, report)
}
