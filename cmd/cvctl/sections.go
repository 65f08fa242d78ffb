package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"smartCV/internal/layout"
	"smartCV/internal/resume"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the styleable sections of a layout",
	RunE:  runSections,
}

var (
	sectionsTemplate string
	sectionsInput    string
)

func init() {
	sectionsCmd.Flags().StringVarP(&sectionsTemplate, "template", "t", string(resume.TemplateModern), "Layout: modern, classic or creative")
	sectionsCmd.Flags().StringVarP(&sectionsInput, "in", "i", "", "Resume JSON; when set, style overrides the layout ignores are listed too")

	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, _ []string) error {
	tpl := resume.TemplateID(sectionsTemplate)
	if !tpl.Valid() {
		return fmt.Errorf("unknown template %q", sectionsTemplate)
	}

	out := cmd.OutOrStdout()
	for _, id := range layout.Sections(tpl) {
		fmt.Fprintln(out, id)
	}

	if sectionsInput == "" {
		return nil
	}
	doc, _, _, err := readBundle(sectionsInput)
	if err != nil {
		return err
	}
	for _, id := range layout.Orphans(doc, tpl) {
		fmt.Fprintf(out, "%s (unused)\n", id)
	}
	return nil
}
