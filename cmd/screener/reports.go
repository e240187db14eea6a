package main

import (
	"context"
	"fmt"

	"github.com/newthinker/screener/internal/app"
	"github.com/newthinker/screener/internal/render"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse exported reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exported report paths",
	RunE:  runReportsList,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print an exported report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

var (
	reportsFormat string
	pruneDays     int
)

var reportsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete exported reports older than --keep-days",
	RunE:  runReportsPrune,
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsPruneCmd)

	reportsShowCmd.Flags().StringVarP(&reportsFormat, "format", "f", "table", "output format: table, json or yaml")
	reportsPruneCmd.Flags().IntVar(&pruneDays, "keep-days", 7, "days of reports to keep")
}

func runReportsList(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	exp, err := app.NewExporter(cfg, log)
	if err != nil {
		return err
	}

	paths, err := exp.List(context.Background())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
	return nil
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	exp, err := app.NewExporter(cfg, log)
	if err != nil {
		return err
	}

	report, err := exp.Load(context.Background(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color, err := render.ColorEnabled(cfg.Output.Color, out)
	if err != nil {
		return err
	}
	renderer, err := render.New(reportsFormat, color)
	if err != nil {
		return err
	}
	return renderer.Render(out, report)
}

func runReportsPrune(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	exp, err := app.NewExporter(cfg, log)
	if err != nil {
		return err
	}

	n, err := exp.Prune(context.Background(), pruneDays)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d report(s)\n", n)
	return nil
}
