// Package common holds fixtures shared by the cross-package test suites.
package common

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	sheetreplace "github.com/ideamans/go-sheetreplace"
	"github.com/ideamans/go-sheetreplace/adapters/excel"
	"github.com/ideamans/go-sheetreplace/adapters/ziparchive"
)

// FixedTime is the clock reading used by every suite
var FixedTime = time.Date(2026, 10, 16, 9, 5, 3, 0, time.UTC)

// SourceTestCase represents a grid source under test
type SourceTestCase struct {
	Name        string
	Source      sheetreplace.GridSource
	Description string
}

// Context returns a context carrying a logger that writes to t
func Context(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

// CreateTestProcessor creates a processor with the real codecs, a fixed
// clock and a per-test temp directory
func CreateTestProcessor(t *testing.T, config *sheetreplace.Config) *sheetreplace.Processor {
	t.Helper()
	cfg := sheetreplace.Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.TempDir == "" {
		cfg.TempDir = t.TempDir()
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return FixedTime }
	}
	return sheetreplace.New(excel.New(nil), ziparchive.New(nil), &cfg)
}

// Workbook builds an xlsx whose first sheet holds rows of text
func Workbook(t *testing.T, rows ...[]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, s := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellStr("Sheet1", cell, s); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// Zip packs entries in the given order
func Zip(t *testing.T, names []string, data [][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write(data[i]); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// BundleEntries opens a bundle and returns the first sheet of every entry
func BundleEntries(t *testing.T, data []byte) map[string][][]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open bundle: %v", err)
	}

	entries := map[string][][]string{}
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", zf.Name, err)
		}
		f, err := excelize.OpenReader(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", zf.Name, err)
		}
		rows, err := f.GetRows(f.GetSheetList()[0])
		f.Close()
		if err != nil {
			t.Fatalf("rows of %s: %v", zf.Name, err)
		}
		entries[zf.Name] = rows
	}
	return entries
}

// LoadEnvFile sets KEY=VALUE pairs from path that are not set yet
func LoadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, value)
		}
	}
	return nil
}
