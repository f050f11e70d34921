package sheetreplace

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/ideamans/go-sheetreplace/internal/workspace"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Processor runs whole requests: ingestion, batch and bundle
type Processor struct {
	config  Config
	codec   Codec
	archive Archive
}

// New creates a processor with the given codecs and configuration
func New(codec Codec, archive Archive, config *Config) *Processor {
	return &Processor{
		config:  config.withDefaults(),
		codec:   codec,
		archive: archive,
	}
}

// Process transforms every spreadsheet of req and bundles the results.
// Files that fail are reported in the BatchResult and left out of the
// bundle. Staged files are removed before Process returns.
func (p *Processor) Process(ctx context.Context, req *Request) (*Bundle, *BatchResult, error) {
	logger := zerolog.Ctx(ctx)

	ws, err := workspace.New(p.config.TempDir)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			logger.Error().Err(err).Str("dir", ws.Dir()).Msg("workspace cleanup failed")
		}
	}()

	jobs, err := p.collectJobs(ctx, ws, req)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().Int("jobs", len(jobs)).Str("find", req.Spec.Find).Msg("batch collected")

	batch, err := NewTransformer(p.codec, req.Spec, &p.config).RunBatch(ctx, jobs)
	if err != nil {
		return nil, nil, err
	}

	bundle, err := Assemble(ctx, p.archive, batch, p.config.Now())
	if err != nil {
		return nil, nil, err
	}

	return bundle, batch, nil
}

// collectJobs stages uploads in ws and turns them into jobs
func (p *Processor) collectJobs(ctx context.Context, ws *workspace.Workspace, req *Request) ([]FileJob, error) {
	logger := zerolog.Ctx(ctx)

	var jobs []FileJob
	remaining := p.config.MaxExtractedBytes
	for _, up := range req.Uploads {
		switch {
		case isArchive(up.Filename):
			extracted, err := p.unpack(ctx, ws, up, &remaining)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, extracted...)
		case MatchesAny(p.config.Patterns, up.Filename):
			path, err := ws.Write(up.Filename, bytes.NewReader(up.Data))
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, FileJob{Filename: up.Filename, Path: path})
		default:
			logger.Warn().Str("file", up.Filename).Msg("upload ignored: not a spreadsheet or zip")
		}
	}

	for _, src := range req.Sources {
		jobs = append(jobs, FileJob{Filename: src.Name(), Source: src})
	}

	if len(jobs) == 0 {
		return nil, ErrNoSpreadsheets
	}
	return jobs, nil
}

// unpack writes the upload to ws, then extracts its spreadsheet entries.
// Extracted bytes are charged to remaining; no entry may exceed
// MaxEntryBytes.
func (p *Processor) unpack(ctx context.Context, ws *workspace.Workspace, up Upload, remaining *int64) ([]FileJob, error) {
	archivePath, err := ws.Write(up.Filename, bytes.NewReader(up.Data))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.Errorf("failed to open staged archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Errorf("failed to stat staged archive: %w", err)
	}

	var jobs []FileJob
	err = p.archive.Unpack(ctx, f, info.Size(), func(name string, r io.Reader) error {
		if !MatchesAny(p.config.Patterns, name) {
			zerolog.Ctx(ctx).Debug().Str("archive", up.Filename).Str("entry", name).Msg("entry ignored")
			return nil
		}
		limit := min(p.config.MaxEntryBytes, *remaining)
		lr := &io.LimitedReader{R: r, N: limit + 1}
		path, err := ws.Write(name, lr)
		if err != nil {
			return err
		}
		if lr.N == 0 {
			return errors.Errorf("%w: entry %s is larger than %d bytes", ErrExtractLimit, name, limit)
		}
		*remaining -= limit + 1 - lr.N
		jobs = append(jobs, FileJob{Filename: name, Path: path})
		return nil
	})
	if errors.Is(err, ErrExtractLimit) {
		return nil, fileError(ErrIngestion, up.Filename, err)
	}
	if err != nil {
		return nil, fileError(ErrIngestion, up.Filename, fileError(ErrArchive, "", err))
	}

	return jobs, nil
}
