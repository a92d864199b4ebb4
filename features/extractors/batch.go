package extractors

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ExtractBatch runs ex over independent clips with at most workers
// goroutines (runtime.NumCPU() when workers <= 0). Results keep the input
// order. Cancellation is observed between clips only; a clip that has
// started is always finished.
func ExtractBatch(ctx context.Context, ex Extractor, clips [][]float32, workers int) ([]Tensor, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, max(len(clips), 1))

	results := make([]Tensor, len(clips))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, clip := range clips {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ex.Extract(clip)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
