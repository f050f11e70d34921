package sheetreplace

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// stampLayout renders month, day, two-digit year, hour, minute, second
const stampLayout = "010206150405"

// Transformer applies one ReplacementSpec to cells, files and batches
type Transformer struct {
	spec   ReplacementSpec
	codec  Codec
	config Config
}

// NewTransformer creates a transformer for one batch
func NewTransformer(codec Codec, spec ReplacementSpec, config *Config) *Transformer {
	return &Transformer{
		spec:   spec,
		codec:  codec,
		config: config.withDefaults(),
	}
}

// TransformGrid rewrites every cell of grid into a new grid and returns it
// with the number of matched cells.
func (t *Transformer) TransformGrid(grid *Grid) (*Grid, int) {
	out := &Grid{
		SheetName: grid.SheetName,
		Rows:      make([][]Value, len(grid.Rows)),
	}

	replaced := 0
	for r, row := range grid.Rows {
		outRow := make([]Value, len(row))
		for c, cell := range row {
			v, matched := t.TransformCell(cell)
			if matched {
				replaced++
			}
			outRow[c] = v
		}
		out.Rows[r] = outRow
	}

	return out, replaced
}

// TransformFile rewrites grid and encodes it as the output of originalFilename
func (t *Transformer) TransformFile(ctx context.Context, grid *Grid, originalFilename string) (*FileResult, error) {
	out, replaced := t.TransformGrid(grid)

	name := OutputFilename(originalFilename, replaced, t.config.Now())
	data, err := t.codec.Encode(ctx, out)
	if err != nil {
		return nil, fileError(ErrEncode, originalFilename, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("file", originalFilename).
		Str("output", name).
		Int("replaced", replaced).
		Msg("file transformed")

	return &FileResult{
		SourceFilename: originalFilename,
		OutputFilename: name,
		ReplacedCount:  replaced,
		Data:           data,
	}, nil
}

// TransformJob loads the job's first sheet and transforms it
func (t *Transformer) TransformJob(ctx context.Context, job FileJob) (*FileResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	grid, err := job.loadGrid(ctx, t.codec)
	if err != nil {
		return nil, fileError(ErrDecode, job.Filename, err)
	}

	return t.TransformFile(ctx, grid, job.Filename)
}

// OutputFilename derives "{stem}Replace{count}-{MMDDYYhhmmss}.xlsx"
func OutputFilename(originalFilename string, replaced int, at time.Time) string {
	return fmt.Sprintf("%sReplace%d-%s.xlsx", stem(originalFilename), replaced, at.Format(stampLayout))
}

// stem returns the base name without its last extension. Both '/' and '\'
// separate directories since archive entry names may use either.
func stem(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
