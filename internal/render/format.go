package render

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const na = "N/A"

var printer = message.NewPrinter(language.English)

// FormatPct renders a signed percentage with two decimals
func FormatPct(v *float64) string {
	if v == nil {
		return na
	}
	sign := ""
	if *v >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, *v)
}

// FormatPrice picks the precision by magnitude so that sub-cent coins stay
// readable and large prices get thousands separators.
func FormatPrice(v *float64) string {
	if v == nil {
		return na
	}
	switch p := *v; {
	case p < 0.001:
		return fmt.Sprintf("$%.6f", p)
	case p < 1:
		return fmt.Sprintf("$%.4f", p)
	case p < 1000:
		return fmt.Sprintf("$%.2f", p)
	default:
		return printer.Sprintf("$%.0f", p)
	}
}

// FormatMcap abbreviates market caps to billions or millions
func FormatMcap(v *float64) string {
	if v == nil {
		return na
	}
	switch m := *v; {
	case m >= 1e9:
		return fmt.Sprintf("$%.2fB", m/1e9)
	case m >= 1e6:
		return fmt.Sprintf("$%.1fM", m/1e6)
	default:
		return printer.Sprintf("$%.0f", m)
	}
}

// FormatRatio renders the volume/market-cap ratio
func FormatRatio(v *float64) string {
	if v == nil {
		return na
	}
	return fmt.Sprintf("%.4f", *v)
}
