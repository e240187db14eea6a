package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/newthinker/screener/internal/core"
)

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer

	tests := []struct {
		mode string
		want bool
	}{
		{ColorAlways, true},
		{ColorNever, false},
		{ColorAuto, false}, // a buffer is never a terminal
		{"", false},
	}
	for _, tt := range tests {
		got, err := ColorEnabled(tt.mode, &buf)
		if err != nil {
			t.Fatalf("mode %q: %v", tt.mode, err)
		}
		if got != tt.want {
			t.Errorf("mode %q = %v, want %v", tt.mode, got, tt.want)
		}
	}

	if _, err := ColorEnabled("rainbow", &buf); !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestPalette(t *testing.T) {
	off := NewPalette(false)
	if got := off.Green("up"); got != "up" {
		t.Errorf("disabled palette should not paint, got %q", got)
	}

	on := NewPalette(true)
	if got := on.Green("up"); got != "\033[92mup\033[0m" {
		t.Errorf("unexpected green: %q", got)
	}
	if got := on.BoldSide(false, "x"); got != "\033[1;91mx\033[0m" {
		t.Errorf("unexpected bold red: %q", got)
	}
	if got := on.Signed(nil, "n"); got != "\033[2mn\033[0m" {
		t.Errorf("missing value should be dim, got %q", got)
	}
	if got := on.Signed(core.Float(-1), "d"); got != on.Red("d") {
		t.Errorf("negative value should be red, got %q", got)
	}
}
