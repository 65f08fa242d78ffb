package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() []Table {
	return []Table{
		{ID: "t1", Title: "Languages", Headers: []string{"A", "B"}, Rows: [][]string{{"1", "2"}}},
		{ID: "t2", Title: "Other", Headers: []string{"X"}, Rows: [][]string{{"x"}}},
	}
}

func TestEditor_AddColumnPadsRows(t *testing.T) {
	tables := sample()
	ed, err := Edit(tables, 0)
	require.NoError(t, err)

	require.NoError(t, ed.AddColumn())
	got := ed.Table()
	assert.Equal(t, []string{"A", "B", "Col 3"}, got.Headers)
	assert.Equal(t, [][]string{{"1", "2", Placeholder}}, got.Rows)

	// 提交前文档不受影响。
	assert.Equal(t, []string{"A", "B"}, tables[0].Headers)
}

func TestEditor_AddThenRemoveRestoresTable(t *testing.T) {
	tables := sample()
	ed, err := Edit(tables, 0)
	require.NoError(t, err)

	require.NoError(t, ed.AddColumn())
	require.NoError(t, ed.RemoveColumn(2))
	out, err := ed.Commit(tables)
	require.NoError(t, err)
	assert.Equal(t, tables, out)
}

func TestEditor_RemoveLastColumnRejected(t *testing.T) {
	ed, err := Edit(sample(), 1)
	require.NoError(t, err)

	assert.ErrorIs(t, ed.RemoveColumn(0), ErrLastColumn)
	assert.ErrorIs(t, ed.RemoveColumn(5), ErrColumnRange)
	assert.Equal(t, []string{"X"}, ed.Table().Headers)
}

func TestEditor_RowsAndCells(t *testing.T) {
	tables := sample()
	ed, err := Edit(tables, 0)
	require.NoError(t, err)

	require.NoError(t, ed.AddRow())
	require.NoError(t, ed.UpdateCell(1, 1, "z"))
	require.NoError(t, ed.UpdateHeader(0, "Name"))
	require.NoError(t, ed.SetTitle("Renamed"))
	require.NoError(t, ed.SetStyles(&Styles{HeaderBg: "#000000"}))
	assert.ErrorIs(t, ed.UpdateCell(4, 0, "x"), ErrRowRange)
	assert.ErrorIs(t, ed.UpdateCell(0, 9, "x"), ErrColumnRange)

	out, err := ed.Commit(tables)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out[0].Title)
	assert.Equal(t, []string{"Name", "B"}, out[0].Headers)
	assert.Equal(t, [][]string{{"1", "2"}, {Placeholder, "z"}}, out[0].Rows)
	assert.Equal(t, "#000000", out[0].Styles.HeaderBg)
	assert.Equal(t, tables[1], out[1])

	// 已提交的编辑器不能再次使用。
	assert.ErrorIs(t, ed.AddRow(), ErrEditorClosed)
	_, err = ed.Commit(tables)
	assert.ErrorIs(t, err, ErrEditorClosed)

	ed2, err := Edit(out, 0)
	require.NoError(t, err)
	require.NoError(t, ed2.RemoveRow(0))
	assert.Len(t, ed2.Table().Rows, 1)
	assert.ErrorIs(t, ed2.RemoveRow(3), ErrRowRange)
}

func TestEditor_CancelLeavesDocument(t *testing.T) {
	tables := sample()
	ed, err := Edit(tables, 0)
	require.NoError(t, err)
	require.NoError(t, ed.UpdateCell(0, 0, "changed"))
	ed.Cancel()

	assert.Equal(t, "1", tables[0].Rows[0][0])
	_, err = ed.Commit(tables)
	assert.ErrorIs(t, err, ErrEditorClosed)
}

func TestEditor_StaleIndex(t *testing.T) {
	tables := sample()
	ed, err := Edit(tables, 1)
	require.NoError(t, err)

	_, err = ed.Commit(tables[:1])
	assert.ErrorIs(t, err, ErrStaleEdit)

	_, err = Edit(tables, 2)
	assert.ErrorIs(t, err, ErrTableRange)
}

func TestNormalize(t *testing.T) {
	tb := Table{Headers: []string{"a", "b", "c"}, Rows: [][]string{{"1"}, {"1", "2", "3", "4"}}}
	assert.True(t, tb.Normalize())
	assert.Equal(t, [][]string{{"1", Placeholder, Placeholder}, {"1", "2", "3"}}, tb.Rows)
	assert.False(t, tb.Normalize())
}

func TestFromRows(t *testing.T) {
	tb, err := FromRows("id", "Sheet", [][]string{{"Name", ""}, {"x"}, {"y", " ", "extra"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", Placeholder}, tb.Headers)
	assert.Equal(t, [][]string{{"x", Placeholder}, {"y", Placeholder}}, tb.Rows)

	_, err = FromRows("id", "", nil)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestStylesResolve(t *testing.T) {
	var s *Styles
	r := s.Resolve("#3b82f6")
	assert.Equal(t, Resolved{
		HeaderBg:    "#3b82f6",
		HeaderText:  "#ffffff",
		BorderColor: "#e5e7eb",
		TextColor:   "inherit",
		OuterBorder: "transparent",
	}, r)

	r = (&Styles{BorderColor: "#111111"}).Resolve("#3b82f6")
	assert.Equal(t, "#111111", r.OuterBorder)
}

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Language", "Level"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Sinhala", "Native"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"English"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	rows, err := ReadWorkbook(&buf)
	require.NoError(t, err)
	tb, err := FromRows("x", TitleFromFilename("/tmp/skills.xlsx"), rows)
	require.NoError(t, err)

	assert.Equal(t, "skills", tb.Title)
	assert.Equal(t, []string{"Language", "Level"}, tb.Headers)
	assert.Equal(t, [][]string{{"Sinhala", "Native"}, {"English", Placeholder}}, tb.Rows)

	_, err = ReadWorkbook(bytes.NewReader([]byte("not a workbook")))
	assert.ErrorIs(t, err, ErrUnreadableWorkbook)
}

func TestNewTable(t *testing.T) {
	tb := New("t9")
	assert.Equal(t, "New Table", tb.Title)
	assert.Equal(t, []string{"Column 1", "Column 2"}, tb.Headers)
	assert.Equal(t, [][]string{{Placeholder, Placeholder}}, tb.Rows)
}
