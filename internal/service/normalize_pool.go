package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// normalizeAll applies fn to every input on up to workers goroutines. Results
// and per-row errors keep input order; only cancellation fails the batch.
func normalizeAll[In, Out any](ctx context.Context, workers int, in []In, fn func(In) (Out, error)) ([]Out, []error, error) {
	results := make([]Out, len(in))
	errs := make([]error, len(in))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range in {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = fn(in[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, errs, nil
}
