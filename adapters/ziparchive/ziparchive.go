// Package ziparchive implements sheetreplace.Archive on top of archive/zip.
package ziparchive

import (
	"archive/zip"
	"context"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	sheetreplace "github.com/ideamans/go-sheetreplace"
	"gitlab.com/tozd/go/errors"
)

// Config holds configuration for the zip archive
type Config struct {
	Store    bool        // Write entries uncompressed instead of deflated
	Modified time.Time   // Modification time of written entries (default: now)
	Mode     fs.FileMode // Permission bits of written entries (default: 0644)
}

// Archive implements sheetreplace.Archive for zip files
type Archive struct {
	config Config
}

// New creates a zip archive codec. A nil config uses defaults.
func New(config *Config) *Archive {
	a := &Archive{}
	if config != nil {
		a.config = *config
	}
	if a.config.Mode == 0 {
		a.config.Mode = 0o644
	}
	return a
}

// Unpack calls fn with every regular file entry. Directory entries and names
// that are absolute or climb out of the archive root are skipped.
func (a *Archive) Unpack(ctx context.Context, r io.ReaderAt, size int64, fn func(name string, r io.Reader) error) error {
	zr, err := zip.NewReader(r, size)
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		return errors.Errorf("failed to read zip: %w", err)
	}

	for _, zf := range zr.File {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if zf.FileInfo().IsDir() || !safeName(zf.Name) {
			continue
		}
		if err := a.visit(zf, fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) visit(zf *zip.File, fn func(name string, r io.Reader) error) error {
	rc, err := zf.Open()
	if err != nil {
		return errors.Errorf("failed to open entry %s: %w", zf.Name, err)
	}
	defer rc.Close()

	if err := fn(zf.Name, rc); err != nil {
		return errors.Errorf("failed to extract entry %s: %w", zf.Name, err)
	}
	return nil
}

// Pack writes entries into a new zip archive
func (a *Archive) Pack(ctx context.Context, w io.Writer, entries []sheetreplace.Entry) error {
	zw := zip.NewWriter(w)

	modified := a.config.Modified
	if modified.IsZero() {
		modified = time.Now()
	}
	method := zip.Deflate
	if a.config.Store {
		method = zip.Store
	}

	for _, e := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		header := &zip.FileHeader{
			Name:     e.Name,
			Method:   method,
			Modified: modified,
		}
		header.SetMode(a.config.Mode & fs.ModePerm)

		ew, err := zw.CreateHeader(header)
		if err != nil {
			return errors.Errorf("failed to create entry %s: %w", e.Name, err)
		}
		if _, err := ew.Write(e.Data); err != nil {
			return errors.Errorf("failed to write entry %s: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Errorf("failed to finish zip: %w", err)
	}
	return nil
}

// safeName rejects entry names that would escape the extraction root
func safeName(name string) bool {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" || strings.HasPrefix(name, "/") || (len(name) > 1 && name[1] == ':') {
		return false
	}
	for _, part := range strings.Split(path.Clean(name), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
