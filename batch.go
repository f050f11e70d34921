package sheetreplace

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// outcome is what a worker hands to the aggregator for one job
type outcome struct {
	index  int
	job    FileJob
	result *FileResult
	err    error
}

// fold adds one outcome to the batch. Only the aggregator goroutine calls it.
func (b *BatchResult) fold(o outcome) {
	if o.err != nil {
		b.Failures = append(b.Failures, FileFailure{Index: o.index, Filename: o.job.Filename, Err: o.err})
		return
	}
	res := *o.result
	res.Index = o.index
	b.Files = append(b.Files, res)
	b.TotalReplacedCount += res.ReplacedCount
}

// RunBatch transforms jobs concurrently, at most MaxParallelism at a time.
// Failed files are recorded in BatchResult.Failures and do not stop their
// siblings unless FailFast is set. The batch itself fails when the context
// ends or when every job failed. Files and Failures are in job order.
func (t *Transformer) RunBatch(ctx context.Context, jobs []FileJob) (*BatchResult, error) {
	logger := zerolog.Ctx(ctx)
	result := &BatchResult{}
	if len(jobs) == 0 {
		return result, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.config.MaxParallelism)

	outcomes := make(chan outcome)
	aggregated := make(chan struct{})
	go func() {
		defer close(aggregated)
		for o := range outcomes {
			result.fold(o)
		}
	}()

	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := t.TransformJob(gctx, job)
			if err != nil {
				logger.Warn().Err(err).Str("file", job.Filename).Msg("file skipped")
			}
			outcomes <- outcome{index: i, job: job, result: res, err: err}
			if err != nil && t.config.FailFast {
				return err
			}
			return nil
		})
	}

	waitErr := g.Wait()
	close(outcomes)
	<-aggregated

	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("batch interrupted: %w", err)
	}
	if waitErr != nil {
		return nil, waitErr
	}

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Index < result.Files[j].Index })
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].Index < result.Failures[j].Index })

	if len(result.Files) == 0 {
		causes := make([]error, 0, len(result.Failures))
		for _, f := range result.Failures {
			causes = append(causes, f.Err)
		}
		return nil, errors.Join(ErrAllFailed, errors.Join(causes...))
	}

	logger.Info().
		Int("files", len(result.Files)).
		Int("failed", len(result.Failures)).
		Int("replaced", result.TotalReplacedCount).
		Msg("batch finished")

	return result, nil
}
