package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	xansi "github.com/charmbracelet/x/ansi"
	"gopkg.in/yaml.v3"
)

// Texter is implemented by payloads with a human layout of their own.
type Texter interface {
	Text() string
}

// DefaultCellWidth caps table cells so long descriptions do not wrap the terminal.
const DefaultCellWidth = 48

// Table is a plain header + rows payload for text output.
type Table struct {
	Headers []string
	Rows    [][]string

	// Empty is printed instead of the table when there are no rows.
	Empty string

	// CellWidth overrides DefaultCellWidth; <= 0 uses the default.
	CellWidth int
}

func (t Table) Text() string {
	if len(t.Rows) == 0 && t.Empty != "" {
		return t.Empty
	}
	width := t.CellWidth
	if width <= 0 {
		width = DefaultCellWidth
	}
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = truncateCell(c, width)
		}
		rows = append(rows, cells)
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers(t.Headers...).
		Rows(rows...)
	return tbl.String()
}

// truncateCell flattens newlines and cuts s to width terminal cells.
func truncateCell(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Truncate(s, width, "…")
}

// WriteText renders v for humans. The CLI envelope {"data": ..., "_hints": [...]}
// is unwrapped: data is rendered, hints follow as "hint:" lines. Payloads that are
// not Texters are rendered as YAML.
func WriteText(w io.Writer, v any) error {
	data := v
	var hints []string
	if env, ok := v.(map[string]any); ok {
		if d, ok := env["data"]; ok {
			data = d
		}
		switch h := env["_hints"].(type) {
		case []string:
			hints = h
		}
	}

	body, err := renderText(data)
	if err != nil {
		return err
	}
	body = strings.TrimRight(body, "\n")
	if body != "" {
		if _, err := fmt.Fprintln(w, body); err != nil {
			return err
		}
	}
	for _, h := range hints {
		if _, err := fmt.Fprintf(w, "hint: %s\n", h); err != nil {
			return err
		}
	}
	return nil
}

func renderText(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case Texter:
		return t.Text(), nil
	}

	// Round-trip through JSON so YAML keys follow the json tags.
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(x)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
