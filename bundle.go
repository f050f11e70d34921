package sheetreplace

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// BundleMetadata is reported beside the archive, never inside it
type BundleMetadata struct {
	FileCount          int
	TotalReplacedCount int
	FailedCount        int
}

// Bundle is the downloadable archive of a batch
type Bundle struct {
	Filename string   // "processed_files_{YYYYMMDDhhmmss}.zip"
	Data     []byte   // Archive bytes
	Entries  []string // Entry names in archive order
	Metadata BundleMetadata
}

// BundleFilename names the archive returned for a batch finished at `at`
func BundleFilename(at time.Time) string {
	return fmt.Sprintf("processed_files_%s.zip", at.Format("20060102150405"))
}

// Assemble packs every file of batch into one archive. Output names that
// repeat within the batch get a numeric suffix so nothing is overwritten.
func Assemble(ctx context.Context, archive Archive, batch *BatchResult, at time.Time) (*Bundle, error) {
	entries := make([]Entry, 0, len(batch.Files))
	names := make([]string, 0, len(batch.Files))
	used := make(map[string]bool, len(batch.Files))

	for _, f := range batch.Files {
		name := uniqueName(f.OutputFilename, used)
		used[name] = true
		names = append(names, name)
		entries = append(entries, Entry{Name: name, Data: f.Data})
	}

	var buf bytes.Buffer
	if err := archive.Pack(ctx, &buf, entries); err != nil {
		return nil, fileError(ErrArchive, "", err)
	}

	return &Bundle{
		Filename: BundleFilename(at),
		Data:     buf.Bytes(),
		Entries:  names,
		Metadata: BundleMetadata{
			FileCount:          len(batch.Files),
			TotalReplacedCount: batch.TotalReplacedCount,
			FailedCount:        len(batch.Failures),
		},
	}, nil
}

// uniqueName returns name, or name with "-2", "-3", ... before its
// extension, whichever is first unused.
func uniqueName(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", base, n, ext)
		if !used[candidate] {
			return candidate
		}
	}
}
