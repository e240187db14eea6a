package render

import (
	"fmt"
	"io"
	"os"

	"github.com/newthinker/screener/internal/core"
	"golang.org/x/term"
)

// Color modes accepted by ColorEnabled
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "1"
	ansiDim    = "2"
	ansiRed    = "91"
	ansiGreen  = "92"
	ansiYellow = "93"
	ansiCyan   = "96"
	ansiWhite  = "97"
)

// ColorEnabled resolves a color mode for w. Auto colors only terminals and
// honours NO_COLOR.
func ColorEnabled(mode string, w io.Writer) (bool, error) {
	switch mode {
	case ColorAlways:
		return true, nil
	case ColorNever:
		return false, nil
	case ColorAuto, "":
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false, nil
		}
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown color mode %q", mode))
	}
}

// Palette wraps text in ANSI escapes when enabled
type Palette struct {
	enabled bool
}

func NewPalette(enabled bool) Palette {
	return Palette{enabled: enabled}
}

func (p Palette) paint(s string, codes ...string) string {
	if !p.enabled || len(codes) == 0 {
		return s
	}
	seq := "\033[" + codes[0]
	for _, c := range codes[1:] {
		seq += ";" + c
	}
	return seq + "m" + s + ansiReset
}

func (p Palette) Green(s string) string  { return p.paint(s, ansiGreen) }
func (p Palette) Red(s string) string    { return p.paint(s, ansiRed) }
func (p Palette) Yellow(s string) string { return p.paint(s, ansiYellow) }
func (p Palette) Cyan(s string) string   { return p.paint(s, ansiCyan) }
func (p Palette) Dim(s string) string    { return p.paint(s, ansiDim) }
func (p Palette) Bold(s string) string   { return p.paint(s, ansiBold, ansiWhite) }

// Side colors long text green and short text red
func (p Palette) Side(long bool, s string) string {
	if long {
		return p.Green(s)
	}
	return p.Red(s)
}

// BoldSide is Side in bold
func (p Palette) BoldSide(long bool, s string) string {
	if long {
		return p.paint(s, ansiBold, ansiGreen)
	}
	return p.paint(s, ansiBold, ansiRed)
}

// Signed colors a value by sign, dimming missing values
func (p Palette) Signed(v *float64, s string) string {
	switch {
	case v == nil:
		return p.Dim(s)
	case *v >= 0:
		return p.Green(s)
	default:
		return p.Red(s)
	}
}
