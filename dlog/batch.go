package dlog

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"ecdlog/curve"
)

// LogAll solves q = x*p for every target in qs with at most workers
// concurrent calls to s (GOMAXPROCS when workers <= 0). Results are in the
// order of qs. The first failure cancels the remaining targets and is
// returned with the index of the target that caused it.
func LogAll(ctx context.Context, s Solver, c *curve.Curve, p curve.Point, qs []curve.Point, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(qs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range qs {
		i, q := i, q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.Log(c, p, q)
			if err != nil {
				return errors.Wrapf(err, "target %d", i)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
