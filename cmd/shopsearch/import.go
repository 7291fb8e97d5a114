package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/xhad/shopsearch/internal/models"
)

var importType string

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a product or order file",
	Long: `Replaces the product or order collection with the records in a CSV or
HTML table file. The file can be a local path or an http(s) URL.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importType, "type", "t", "products", "record type: products or orders")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	domain, err := models.ParseDomain(importType)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var bar *progressbar.ProgressBar
	onProgress := func(done, total int) {
		if bar == nil {
			bar = getProgressBar(out, total, "Embedding records...")
		}
		bar.Set(done)
	}

	a, err := newApp(cmd.Context(), onProgress)
	if err != nil {
		return err
	}
	defer a.Close()

	color.Blue("\nImporting %s into %s\n", args[0], domain.Collection())

	report, err := a.ingestor.Import(cmd.Context(), domain, args[0])
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintln(out)
	if report.Degraded() {
		color.Yellow("%s\n", report.Summary())
		for _, e := range report.Errors {
			color.Yellow("  - %v\n", e)
		}
	} else {
		color.Green("✓ %s\n", report.Summary())
	}
	if len(report.Discovery.Categories) > 0 {
		fmt.Fprintf(out, "Categories: %v\n", report.Discovery.Categories)
	}
	fmt.Fprintf(out, "Columns: %v\n", report.Discovery.Keywords)
	return nil
}
