// Package table implements the dynamic tables embedded in a CV document.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// Placeholder fills every cell that has no value.
const Placeholder = "-"

var (
	ErrLastColumn   = errors.New("table must keep at least one column")
	ErrColumnRange  = errors.New("column index out of range")
	ErrRowRange     = errors.New("row index out of range")
	ErrTableRange   = errors.New("table index out of range")
	ErrStaleEdit    = errors.New("edited table no longer exists")
	ErrEditorClosed = errors.New("table editor already closed")
	ErrEmptySheet   = errors.New("spreadsheet has no rows")

	ErrUnreadableWorkbook = errors.New("file is not a readable xlsx workbook")
)

// Styles are the optional per-table colors.
type Styles struct {
	HeaderBg    string `json:"headerBg,omitempty"`
	HeaderText  string `json:"headerText,omitempty"`
	BorderColor string `json:"borderColor,omitempty"`
	TextColor   string `json:"textColor,omitempty"`
}

// Resolved holds the concrete table colors used at render time.
type Resolved struct {
	HeaderBg    string `json:"headerBg"`
	HeaderText  string `json:"headerText"`
	BorderColor string `json:"borderColor"`
	TextColor   string `json:"textColor"`
	// OuterBorder is the frame color; transparent unless a border color was chosen.
	OuterBorder string `json:"outerBorder"`
}

// Resolve falls back to the active palette's primary color for the header.
func (s *Styles) Resolve(primary string) Resolved {
	var in Styles
	if s != nil {
		in = *s
	}
	r := Resolved{
		HeaderBg:    or(in.HeaderBg, primary),
		HeaderText:  or(in.HeaderText, "#ffffff"),
		BorderColor: or(in.BorderColor, "#e5e7eb"),
		TextColor:   or(in.TextColor, "inherit"),
		OuterBorder: or(in.BorderColor, "transparent"),
	}
	return r
}

// Table is a titled grid of strings. Every row has exactly len(Headers) cells.
type Table struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Styles  *Styles    `json:"styles,omitempty"`
}

// New returns the starter table offered when the user adds a table.
func New(id string) Table {
	return Table{
		ID:      id,
		Title:   "New Table",
		Headers: []string{"Column 1", "Column 2"},
		Rows:    [][]string{{Placeholder, Placeholder}},
	}
}

// Clone deep-copies t.
func (t Table) Clone() Table {
	out := t
	out.Headers = append([]string(nil), t.Headers...)
	if out.Headers == nil {
		out.Headers = []string{}
	}
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	if t.Styles != nil {
		s := *t.Styles
		out.Styles = &s
	}
	return out
}

// Normalize pads short rows with the placeholder and truncates long ones.
// It reports whether anything changed.
func (t *Table) Normalize() bool {
	changed := false
	if t.Headers == nil {
		t.Headers = []string{}
		changed = true
	}
	if t.Rows == nil {
		t.Rows = [][]string{}
		changed = true
	}
	width := len(t.Headers)
	for i, row := range t.Rows {
		if len(row) == width {
			continue
		}
		changed = true
		t.Rows[i] = fit(row, width)
	}
	return changed
}

// FromRows builds a table from tabular records: the first record is the
// header row and every cell that is empty becomes the placeholder.
func FromRows(id, title string, records [][]string) (Table, error) {
	if len(records) == 0 {
		return Table{}, ErrEmptySheet
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = cell(h)
	}
	if len(headers) == 0 {
		return Table{}, fmt.Errorf("header row: %w", ErrEmptySheet)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(headers))
		for i := range row {
			if i < len(rec) {
				row[i] = cell(rec[i])
			} else {
				row[i] = Placeholder
			}
		}
		rows = append(rows, row)
	}

	return Table{ID: id, Title: title, Headers: headers, Rows: rows}, nil
}

func fit(row []string, width int) []string {
	out := make([]string, width)
	for i := range out {
		if i < len(row) {
			out[i] = row[i]
		} else {
			out[i] = Placeholder
		}
	}
	return out
}

func cell(v string) string {
	if strings.TrimSpace(v) == "" {
		return Placeholder
	}
	return v
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
