package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"smartCV/internal/resume"
	"smartCV/internal/table"
)

var tableImportCmd = &cobra.Command{
	Use:   "table-import",
	Short: "Append the first sheet of an .xlsx workbook to a resume as a custom table",
	RunE:  runTableImport,
}

var (
	tableImportInput    string
	tableImportWorkbook string
	tableImportOutput   string
)

func init() {
	tableImportCmd.Flags().StringVarP(&tableImportInput, "in", "i", "", "Path to resume JSON (required)")
	tableImportCmd.Flags().StringVarP(&tableImportWorkbook, "xlsx", "x", "", "Path to .xlsx workbook (required)")
	tableImportCmd.Flags().StringVarP(&tableImportOutput, "out", "o", "-", "Output path, - for stdout")
	mustRequire(tableImportCmd, "in", "xlsx")

	rootCmd.AddCommand(tableImportCmd)
}

func runTableImport(cmd *cobra.Command, _ []string) error {
	doc, cfg, hasConfig, err := readBundle(tableImportInput)
	if err != nil {
		return err
	}

	f, err := os.Open(tableImportWorkbook)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := table.ReadWorkbook(f)
	if err != nil {
		return err
	}
	t, err := table.FromRows(resume.NewID(), table.TitleFromFilename(tableImportWorkbook), rows)
	if err != nil {
		return err
	}
	doc.CustomTables = append(doc.CustomTables, t)

	if !hasConfig {
		cfg = nil
	}
	data, err := resume.Encode(doc, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "imported %q: %d columns, %d rows\n", t.Title, len(t.Headers), len(t.Rows))
	return writeOutput(cmd, tableImportOutput, data)
}
