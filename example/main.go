package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	sheetreplace "github.com/ideamans/go-sheetreplace"
	"github.com/ideamans/go-sheetreplace/adapters/excel"
	"github.com/ideamans/go-sheetreplace/adapters/googlesheets"
	"github.com/ideamans/go-sheetreplace/adapters/ziparchive"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	// Read the first sheet of a Google spreadsheet
	source, err := googlesheets.NewWithJSONKeyFile(ctx, googlesheets.Config{
		SpreadsheetID: "your-spreadsheet-id",
		Name:          "budget.xlsx",
	}, "./service-account.json")
	if err != nil {
		return errors.Errorf("failed to create source: %w", err)
	}

	processor := sheetreplace.New(excel.New(nil), ziparchive.New(nil), sheetreplace.DefaultConfig())

	bundle, batch, err := processor.Process(ctx, &sheetreplace.Request{
		Spec:    sheetreplace.ReplacementSpec{Find: "2025", Replace: "2026"},
		Sources: []sheetreplace.GridSource{source},
	})
	if err != nil {
		return errors.Errorf("failed to process: %w", err)
	}

	if err := os.WriteFile(bundle.Filename, bundle.Data, 0o644); err != nil {
		return errors.Errorf("failed to write bundle: %w", err)
	}
	fmt.Printf("Wrote %s: %d cells replaced\n", bundle.Filename, batch.TotalReplacedCount)
	for _, f := range batch.Files {
		fmt.Printf("  %s -> %s\n", f.SourceFilename, f.OutputFilename)
	}
	return nil
}
