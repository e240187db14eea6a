package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/newthinker/screener/internal/screener"
)

// Categories prints the registry as a reference table
func Categories(w io.Writer, defs []screener.CategoryDefinition, color bool) error {
	p := NewPalette(color)

	if _, err := fmt.Fprintln(w, p.Dim(fmt.Sprintf("  %-18s %-6s %-14s %-14s %-14s %-14s %s",
		"KEY", "SIDE", "24h%", "7d%", "30d%", "VOL/MCAP", "FROM ATH"))); err != nil {
		return err
	}
	fmt.Fprintln(w, p.Dim("  "+strings.Repeat("·", 100)))

	for _, d := range defs {
		fmt.Fprintf(w, "  %s %s %-14s %-14s %-14s %-14s %s\n",
			p.BoldSide(d.IsLong(), padRight(d.Key, 18)),
			p.Side(d.IsLong(), padRight(string(d.Direction), 6)),
			d.H24, d.D7, d.D30, d.VolMcap,
			p.Yellow(d.FromATH.String()),
		)
	}
	return nil
}
