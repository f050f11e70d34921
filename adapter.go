package sheetreplace

import (
	"context"
	"io"
)

// Codec reads and writes spreadsheet binaries
type Codec interface {
	// Decode reads the first sheet of a spreadsheet into a grid
	Decode(ctx context.Context, r io.Reader) (*Grid, error)

	// Encode writes a single-sheet spreadsheet holding grid
	Encode(ctx context.Context, grid *Grid) ([]byte, error)
}

// Entry is one named blob inside an archive
type Entry struct {
	Name string
	Data []byte
}

// Archive reads and writes bundles of named blobs
type Archive interface {
	// Unpack calls fn for every regular file entry of the archive, in archive order
	Unpack(ctx context.Context, r io.ReaderAt, size int64, fn func(name string, r io.Reader) error) error

	// Pack writes entries, in order, as a new archive to w
	Pack(ctx context.Context, w io.Writer, entries []Entry) error
}

// GridSource provides a grid directly, for inputs that are not spreadsheet binaries
type GridSource interface {
	// Name is used as the original filename of the job
	Name() string

	// LoadGrid fetches the first sheet as a grid
	LoadGrid(ctx context.Context) (*Grid, error)
}
