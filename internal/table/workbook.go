package table

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook returns the rows of the first sheet of an .xlsx workbook.
func ReadWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// TitleFromFilename strips the directory and the .xlsx extension.
func TitleFromFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if strings.EqualFold(filepath.Ext(base), ".xlsx") {
		base = base[:len(base)-len(".xlsx")]
	}
	if base == "" || base == "." {
		return "Imported Table"
	}
	return base
}
