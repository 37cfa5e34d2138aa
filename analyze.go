package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/geo-optimizer/backend/analyzer"
	"github.com/geo-optimizer/backend/report"
)

// Output formats of the analyze command.
const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatYAML     = "yaml"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze a single page and print the report",
		Example: `  geo-optimizer analyze example.com/blog/post
  geo-optimizer analyze https://example.com --format json
  geo-optimizer analyze https://example.com --pdf report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
	cmd.Flags().StringP("format", "f", formatMarkdown, "Output format: markdown, json or yaml")
	cmd.Flags().String("pdf", "", "Also write a PDF report to this file")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != formatMarkdown && format != formatJSON && format != formatYAML {
		return fmt.Errorf("unsupported format %q (use markdown, json or yaml)", format)
	}
	pdfPath, err := cmd.Flags().GetString("pdf")
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := newAnalyzer(cfg, logger, nil, nil).Analyze(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("analyze %s: %w", args[0], err)
	}

	if err := writeAnalysis(cmd.OutOrStdout(), a, format); err != nil {
		return err
	}
	if pdfPath != "" {
		return writePDF(pdfPath, a)
	}
	return nil
}

func writeAnalysis(w io.Writer, a *analyzer.Analysis, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(a); err != nil {
			return err
		}
		return enc.Close()
	default:
		return report.Markdown(w, a)
	}
}

func writePDF(path string, a *analyzer.Analysis) error {
	data, err := report.PDF(a)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
