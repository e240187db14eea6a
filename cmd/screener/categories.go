package main

import (
	"fmt"

	"github.com/newthinker/screener/internal/render"
	"github.com/spf13/cobra"
)

var categoriesFormat string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the screening categories and their ranges",
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().StringVarP(&categoriesFormat, "format", "f", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if categoriesFormat == render.FormatTable {
		color, err := render.ColorEnabled(cfg.Output.Color, out)
		if err != nil {
			return err
		}
		return render.Categories(out, reg.Categories(), color)
	}

	data, err := render.MarshalValue(reg.Categories(), categoriesFormat)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, string(data))
	return err
}
