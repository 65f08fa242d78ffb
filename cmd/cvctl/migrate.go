package main

import (
	"github.com/spf13/cobra"

	"smartCV/internal/resume"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade a resume file written by an older version",
	Long:  "Decodes the file, fills in fields older versions did not write and re-exports it. Running it twice changes nothing.",
	RunE:  runMigrate,
}

var (
	migrateInput  string
	migrateOutput string
)

func init() {
	migrateCmd.Flags().StringVarP(&migrateInput, "in", "i", "", "Path to resume JSON (required)")
	migrateCmd.Flags().StringVarP(&migrateOutput, "out", "o", "-", "Output path, - for stdout")
	mustRequire(migrateCmd, "in")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	doc, cfg, hasConfig, err := readBundle(migrateInput)
	if err != nil {
		return err
	}
	if !hasConfig {
		cfg = nil
	}
	data, err := resume.Encode(doc, cfg)
	if err != nil {
		return err
	}
	return writeOutput(cmd, migrateOutput, data)
}
