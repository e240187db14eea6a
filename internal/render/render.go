package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/newthinker/screener/internal/core"
	"github.com/newthinker/screener/internal/screener"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Renderer writes a report to w
type Renderer interface {
	Render(w io.Writer, report *screener.Report) error
}

// New returns the renderer for format. color only affects the table.
func New(format string, color bool) (Renderer, error) {
	switch format {
	case FormatTable, "":
		return NewTable(color), nil
	case FormatJSON:
		return encoded(FormatJSON), nil
	case FormatYAML:
		return encoded(FormatYAML), nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown output format %q", format))
	}
}

type encoded string

func (e encoded) Render(w io.Writer, report *screener.Report) error {
	data, err := Marshal(report, string(e))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Marshal encodes a report as json or yaml
func Marshal(report *screener.Report, format string) ([]byte, error) {
	return MarshalValue(report, format)
}

// MarshalValue encodes any value the way reports are encoded.
func MarshalValue(v any, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("cannot encode as %q", format))
	}
}

// Unmarshal decodes a report written by Marshal
func Unmarshal(data []byte, format string) (*screener.Report, error) {
	var report screener.Report
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &report); err != nil {
			return nil, err
		}
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("cannot decode report as %q", format))
	}
	return &report, nil
}
