package table

import "fmt"

// Editor mutates an isolated deep copy of one committed table. Nothing
// reaches the document until Commit; Cancel drops the working copy.
type Editor struct {
	index  int
	work   Table
	closed bool
}

// Edit opens an editor on tables[index].
func Edit(tables []Table, index int) (*Editor, error) {
	if index < 0 || index >= len(tables) {
		return nil, fmt.Errorf("edit table %d: %w", index, ErrTableRange)
	}
	work := tables[index].Clone()
	work.Normalize()
	return &Editor{index: index, work: work}, nil
}

// Index returns the position of the table being edited.
func (e *Editor) Index() int { return e.index }

// Table returns a copy of the working table.
func (e *Editor) Table() Table { return e.work.Clone() }

// AddColumn appends a header and extends every row with the placeholder.
func (e *Editor) AddColumn() error {
	if e.closed {
		return ErrEditorClosed
	}
	e.work.Headers = append(e.work.Headers, fmt.Sprintf("Col %d", len(e.work.Headers)+1))
	for i := range e.work.Rows {
		e.work.Rows[i] = append(e.work.Rows[i], Placeholder)
	}
	return nil
}

// RemoveColumn drops column index from the headers and from every row.
func (e *Editor) RemoveColumn(index int) error {
	if e.closed {
		return ErrEditorClosed
	}
	if index < 0 || index >= len(e.work.Headers) {
		return ErrColumnRange
	}
	if len(e.work.Headers) <= 1 {
		return ErrLastColumn
	}
	e.work.Headers = remove(e.work.Headers, index)
	for i := range e.work.Rows {
		e.work.Rows[i] = remove(e.work.Rows[i], index)
	}
	return nil
}

// AddRow appends a row of placeholders.
func (e *Editor) AddRow() error {
	if e.closed {
		return ErrEditorClosed
	}
	row := make([]string, len(e.work.Headers))
	for i := range row {
		row[i] = Placeholder
	}
	e.work.Rows = append(e.work.Rows, row)
	return nil
}

func (e *Editor) RemoveRow(index int) error {
	if e.closed {
		return ErrEditorClosed
	}
	if index < 0 || index >= len(e.work.Rows) {
		return ErrRowRange
	}
	e.work.Rows = append(e.work.Rows[:index:index], e.work.Rows[index+1:]...)
	return nil
}

func (e *Editor) UpdateHeader(index int, value string) error {
	if e.closed {
		return ErrEditorClosed
	}
	if index < 0 || index >= len(e.work.Headers) {
		return ErrColumnRange
	}
	e.work.Headers[index] = value
	return nil
}

func (e *Editor) UpdateCell(row, col int, value string) error {
	if e.closed {
		return ErrEditorClosed
	}
	if row < 0 || row >= len(e.work.Rows) {
		return ErrRowRange
	}
	if col < 0 || col >= len(e.work.Headers) {
		return ErrColumnRange
	}
	e.work.Rows[row][col] = value
	return nil
}

func (e *Editor) SetTitle(title string) error {
	if e.closed {
		return ErrEditorClosed
	}
	e.work.Title = title
	return nil
}

// SetStyles replaces the table colors; nil clears them.
func (e *Editor) SetStyles(s *Styles) error {
	if e.closed {
		return ErrEditorClosed
	}
	if s == nil {
		e.work.Styles = nil
		return nil
	}
	cp := *s
	e.work.Styles = &cp
	return nil
}

// Commit returns a copy of tables with the working table written back at its
// original index and closes the editor. The input slice is not modified.
func (e *Editor) Commit(tables []Table) ([]Table, error) {
	if e.closed {
		return nil, ErrEditorClosed
	}
	if e.index >= len(tables) {
		return nil, ErrStaleEdit
	}
	out := make([]Table, len(tables))
	for i := range tables {
		out[i] = tables[i].Clone()
	}
	out[e.index] = e.work.Clone()
	e.closed = true
	return out, nil
}

// Cancel discards the working copy.
func (e *Editor) Cancel() {
	e.closed = true
}

func remove(values []string, index int) []string {
	out := make([]string, 0, len(values)-1)
	out = append(out, values[:index]...)
	return append(out, values[index+1:]...)
}
