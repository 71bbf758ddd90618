package labstruct

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of extracting one file in a batch.
type FileResult struct {
	Path   string
	Report *Report
	Err    error
}

// ExtractFiles extracts every path with at most Options.Concurrency files in
// flight. Results are in input order; a failing file only sets its own Err.
// Once ctx is done, files not yet started fail with the context error.
func ExtractFiles(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	runID := uuid.NewString()
	log := log.With("run", runID)
	log.Info("batch started", "files", len(paths), "workers", opts.workers())

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for i, path := range paths {
		results[i].Path = path
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			report, err := ExtractFile(path, opts)
			if err != nil {
				log.Warn("file failed", "path", path, "error", err)
			}
			results[i].Report = report
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("batch finished", "files", len(paths), "failed", failed)
	return results, ctx.Err()
}
