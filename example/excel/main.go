package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/xuri/excelize/v2"

	sheetreplace "github.com/ideamans/go-sheetreplace"
	"github.com/ideamans/go-sheetreplace/adapters/excel"
)

func main() {
	ctx := context.Background()

	// Create a small workbook to work on
	if err := writeSample("./example_data.xlsx"); err != nil {
		log.Fatalf("Failed to create sample: %v", err)
	}

	// Replace with italic blue highlighting instead of the default bold red
	config := sheetreplace.DefaultConfig()
	config.Highlight = sheetreplace.Style{Italic: true, Color: "0000FF"}

	transformer := sheetreplace.NewTransformer(excel.New(nil), sheetreplace.ReplacementSpec{
		Find:    "Engineering",
		Replace: "R&D",
	}, config)

	result, err := transformer.TransformJob(ctx, sheetreplace.FileJob{
		Filename: "example_data.xlsx",
		Path:     "./example_data.xlsx",
	})
	if err != nil {
		log.Fatalf("Failed to transform: %v", err)
	}

	if err := os.WriteFile(result.OutputFilename, result.Data, 0o644); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Printf("Wrote %s (%d cells replaced)\n", result.OutputFilename, result.ReplacedCount)
}

func writeSample(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"name", "department", "age", "active"},
		{"Alice Johnson", "Engineering", 30, true},
		{"Bob Smith", "  Sales  ", 25, true},
		{"Charlie Brown", "Engineering / Platform Engineering", 35, false},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
