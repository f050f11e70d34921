package sheetreplace

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/tozd/go/errors"
)

var fixedTime = time.Date(2026, 10, 16, 9, 5, 3, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

// textGrid builds a grid of text cells
func textGrid(rows ...[]string) *Grid {
	g := &Grid{SheetName: "Sheet1", Rows: make([][]Value, len(rows))}
	for i, row := range rows {
		g.Rows[i] = make([]Value, len(row))
		for j, s := range row {
			g.Rows[i][j] = TextValue(s)
		}
	}
	return g
}

// fakeCodec decodes by looking the payload up in grids and encodes with fmt
type fakeCodec struct {
	grids     map[string]*Grid
	encodeErr error
	delay     time.Duration

	mu      sync.Mutex
	running int32
	peak    int32
}

func (c *fakeCodec) Decode(ctx context.Context, r io.Reader) (*Grid, error) {
	n := atomic.AddInt32(&c.running, 1)
	defer atomic.AddInt32(&c.running, -1)
	c.mu.Lock()
	if n > c.peak {
		c.peak = n
	}
	c.mu.Unlock()

	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.delay):
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	g, ok := c.grids[string(data)]
	if !ok {
		return nil, errors.Errorf("corrupt workbook %q", string(data))
	}
	return g, nil
}

func (c *fakeCodec) Encode(_ context.Context, grid *Grid) ([]byte, error) {
	if c.encodeErr != nil {
		return nil, c.encodeErr
	}
	var b strings.Builder
	for _, row := range grid.Rows {
		fmt.Fprintf(&b, "%#v\n", row)
	}
	return []byte(b.String()), nil
}

func (c *fakeCodec) maxConcurrent() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peak
}

// memArchive keeps packed entries in memory
type memArchive struct {
	packed  []Entry
	packErr error
}

func (a *memArchive) Unpack(ctx context.Context, r io.ReaderAt, size int64, fn func(name string, r io.Reader) error) error {
	return errors.New("not supported")
}

func (a *memArchive) Pack(_ context.Context, w io.Writer, entries []Entry) error {
	if a.packErr != nil {
		return a.packErr
	}
	a.packed = append([]Entry(nil), entries...)
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\n", e.Name); err != nil {
			return err
		}
	}
	return nil
}
