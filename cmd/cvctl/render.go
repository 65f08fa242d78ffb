package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"smartCV/internal/config"
	"smartCV/internal/layout"
	"smartCV/internal/logging"
	"smartCV/internal/pdf"
	"smartCV/internal/render"
	"smartCV/internal/resume"
)

const (
	formatTree = "tree"
	formatHTML = "html"
	formatPDF  = "pdf"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a resume file as a layout tree, HTML or PDF",
	RunE:  runRender,
}

var (
	renderInput  string
	renderFormat string
	renderOutput string
)

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to exported resume JSON (required)")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", formatHTML, "Output format: tree, html or pdf")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "-", "Output path, - for stdout")
	mustRequire(renderCmd, "in")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	doc, cfg, _, err := readBundle(renderInput)
	if err != nil {
		return err
	}

	var out []byte
	switch renderFormat {
	case formatTree:
		out, err = json.MarshalIndent(layout.Build(doc, cfg), "", "  ")
	case formatHTML:
		out, err = render.Document(doc, cfg)
	case formatPDF:
		out, err = printPDF(cmd.Context(), doc, cfg)
	default:
		return fmt.Errorf("unknown format %q (want tree, html or pdf)", renderFormat)
	}
	if err != nil {
		return err
	}
	return writeOutput(cmd, renderOutput, out)
}

func printPDF(ctx context.Context, doc *resume.Document, cfg *resume.AppConfig) ([]byte, error) {
	html, err := render.Document(doc, cfg)
	if err != nil {
		return nil, err
	}
	appCfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	// 日志写到 stderr，stdout 可能是 PDF 本身。
	logger := logging.New(os.Stderr, appCfg.Log.Level, appCfg.Log.Format)

	printer := pdf.NewGenerator(appCfg.Export.BrowserBin, render.RenderReadyID, logger)
	printer.Timeout = appCfg.Export.Timeout
	return printer.Print(ctx, html)
}
