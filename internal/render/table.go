package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/newthinker/screener/internal/screener"
)

const ruleWidth = 86

// Table renders a report as the console layout: a banner, one block per
// category and a summary.
type Table struct {
	palette  Palette
	location *time.Location
}

// NewTable creates a table renderer. Timestamps are shown in local time.
func NewTable(color bool) *Table {
	return &Table{palette: NewPalette(color), location: time.Local}
}

func (t *Table) Render(w io.Writer, report *screener.Report) error {
	bw := bufio.NewWriter(w)
	t.header(bw, report)
	for _, g := range report.Groups {
		t.group(bw, g)
	}
	t.summary(bw, report)
	return bw.Flush()
}

func (t *Table) header(w io.Writer, r *screener.Report) {
	p := t.palette
	source := r.Source
	if source == "" {
		source = "market data"
	}
	title := fmt.Sprintf("   CRYPTO SCREENER  ·  %s", source)
	inner := ruleWidth - 2

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Bold("╔"+strings.Repeat("═", inner)+"╗"))
	fmt.Fprintln(w, p.Bold("║")+p.Cyan(padRight(title, inner))+p.Bold("║"))
	fmt.Fprintln(w, p.Bold("╚"+strings.Repeat("═", inner)+"╝"))
	fmt.Fprintln(w, p.Dim(fmt.Sprintf("  %s  ·  run %s",
		r.GeneratedAt.In(t.location).Format("2006-01-02 15:04:05"), r.ID)))
}

func (t *Table) group(w io.Writer, g screener.Group) {
	p := t.palette
	long := g.Category.IsLong()
	rule := strings.Repeat("─", ruleWidth)

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Side(long, rule))
	fmt.Fprintln(w, p.BoldSide(long, fmt.Sprintf("  %s  %s  [%d %s]",
		g.Category.Icon, g.Category.Label, len(g.Matches), plural(len(g.Matches), "signal"))))
	fmt.Fprintln(w, p.Side(long, rule))

	if len(g.Matches) == 0 {
		fmt.Fprintln(w, p.Dim("  no coins matched this category"))
		return
	}

	fmt.Fprintln(w, p.Dim(fmt.Sprintf("  %-10s %12s %9s %9s %9s %9s %9s %10s  %s",
		"COIN", "PRICE", "24h%", "7d%", "30d%", "VOL/MCAP", "FROM ATH", "MCAP", "ATH")))
	fmt.Fprintln(w, p.Dim("  "+strings.Repeat("·", ruleWidth-2)))

	for _, m := range g.Matches {
		t.row(w, m)
	}
}

// row pads every cell before coloring it so escapes do not skew alignment
func (t *Table) row(w io.Writer, m screener.MatchResult) {
	p := t.palette
	rec := m.Record

	fmt.Fprintf(w, "  %s %s %s %s %s %s %s %s  %s\n",
		p.Bold(padRight(strings.ToUpper(rec.Symbol), 10)),
		padLeft(FormatPrice(rec.Price), 12),
		p.Signed(rec.Change24h, padLeft(FormatPct(rec.Change24h), 9)),
		p.Signed(rec.Change7d, padLeft(FormatPct(rec.Change7d), 9)),
		p.Signed(rec.Change30d, padLeft(FormatPct(rec.Change30d), 9)),
		p.Cyan(padLeft(FormatRatio(m.Metrics.VolMcap), 9)),
		p.Dim(padLeft(FormatPct(m.Metrics.FromATH), 9)),
		p.Dim(padLeft(FormatMcap(rec.MarketCap), 10)),
		t.athMark(m.Qualifier),
	)
}

func (t *Table) athMark(q screener.Qualifier) string {
	switch q {
	case screener.QualifierSatisfied:
		return t.palette.Green("✓")
	case screener.QualifierNotSatisfied:
		return t.palette.Red("✗")
	default:
		return t.palette.Dim("—")
	}
}

func (t *Table) summary(w io.Writer, r *screener.Report) {
	p := t.palette
	rule := strings.Repeat("─", ruleWidth)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, p.Bold("  SUMMARY"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Coins scanned : %s\n", p.Cyan(fmt.Sprint(r.Scanned)))
	total := p.Dim("0")
	if r.TotalMatches > 0 {
		total = p.Green(fmt.Sprint(r.TotalMatches))
	}
	fmt.Fprintf(w, "  Total signals : %s\n", total)
	fmt.Fprintln(w)

	for _, g := range r.Groups {
		fmt.Fprintf(w, "  %s  %s : %s\n",
			g.Category.Icon, padRight(g.Category.Label, 20),
			p.Side(g.Category.IsLong(), fmt.Sprint(len(g.Matches))))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Dim("  ATH ✓ = distance from ATH inside the category's ATH range"))
	fmt.Fprintln(w, p.Dim("  ATH ✗ = outside the ATH range, the coin still qualifies"))
	fmt.Fprintln(w, p.Dim("  ATH — = price or ATH missing"))
	fmt.Fprintln(w)
}

func padRight(s string, width int) string {
	if n := width - len([]rune(s)); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := width - len([]rune(s)); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
