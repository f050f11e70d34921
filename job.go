package sheetreplace

import (
	"bytes"
	"context"
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

// FileJob is one input file of a batch. Exactly one of Data, Path and
// Source supplies its content.
type FileJob struct {
	Filename string     // Original filename, used to derive the output name
	Path     string     // Spreadsheet staged on disk
	Data     []byte     // Spreadsheet held in memory
	Source   GridSource // Grid provided without a spreadsheet binary
}

// FileResult is the outcome of one successfully transformed job
type FileResult struct {
	Index          int    // Position of the job in the submitted batch
	SourceFilename string // FileJob.Filename
	OutputFilename string // "{stem}Replace{count}-{stamp}.xlsx"
	ReplacedCount  int    // Number of cells that matched
	Data           []byte // Encoded output spreadsheet
}

// FileFailure records a job that could not be transformed
type FileFailure struct {
	Index    int
	Filename string
	Err      error
}

// BatchResult aggregates the outcome of a batch
type BatchResult struct {
	TotalReplacedCount int
	Files              []FileResult
	Failures           []FileFailure
}

// loadGrid obtains the job's grid through its source or the codec
func (j FileJob) loadGrid(ctx context.Context, codec Codec) (*Grid, error) {
	if j.Source != nil {
		return j.Source.LoadGrid(ctx)
	}

	var r io.Reader
	switch {
	case j.Data != nil:
		r = bytes.NewReader(j.Data)
	case j.Path != "":
		f, err := os.Open(j.Path)
		if err != nil {
			return nil, errors.Errorf("failed to open staged file: %w", err)
		}
		defer f.Close()
		r = f
	default:
		return nil, errors.Errorf("job %q has no content", j.Filename)
	}

	return codec.Decode(ctx, r)
}
