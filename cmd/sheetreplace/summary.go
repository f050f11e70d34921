package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	sheetreplace "github.com/ideamans/go-sheetreplace"
)

func printSummary(w io.Writer, dest string, bundle *sheetreplace.Bundle, batch *sheetreplace.BatchResult) {
	title := color.New(color.Bold, color.FgCyan).Sprint("sheetreplace")
	fmt.Fprintf(w, "\n%s %s\n\n", title, color.New(color.Faint).Sprint("• "+dest))

	for _, f := range batch.Files {
		fmt.Fprintf(w, "  %s %-40s %s\n",
			color.New(color.FgGreen).Sprint("✓"),
			f.SourceFilename,
			color.New(color.FgYellow).Sprintf("%d cells", f.ReplacedCount))
	}
	for _, f := range batch.Failures {
		fmt.Fprintf(w, "  %s %-40s %s\n",
			color.New(color.FgRed).Sprint("✗"),
			f.Filename,
			color.New(color.Faint).Sprint(f.Err.Error()))
	}

	fmt.Fprintf(w, "\n%s files, %s replacements, %s failed\n",
		color.New(color.Bold).Sprint(bundle.Metadata.FileCount),
		color.New(color.Bold).Sprint(bundle.Metadata.TotalReplacedCount),
		color.New(color.Bold).Sprint(bundle.Metadata.FailedCount))
}
