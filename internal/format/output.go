package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gosuri/uitable"
)

// Table is implemented by payloads that have a plain-text tabular rendering.
type Table interface {
	Header() []any
	Rows() [][]any
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - text (requires v to implement Table)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "text":
		t, ok := v.(Table)
		if !ok {
			return fmt.Errorf("format text: %T has no text rendering", v)
		}
		return WriteTable(w, t)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteTable writes t as aligned columns.
func WriteTable(w io.Writer, t Table) error {
	tbl := uitable.New()
	tbl.Separator = "  "
	if h := t.Header(); len(h) > 0 {
		tbl.AddRow(h...)
	}
	for _, r := range t.Rows() {
		tbl.AddRow(r...)
	}
	_, err := fmt.Fprintln(w, tbl)
	return err
}
