package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs indexed jobs on at most Size goroutines.
// A Size of 0 or 1 runs jobs sequentially in index order on the caller's
// goroutine.
type Pool struct {
	Size int
}

// Job handles one item. It reports its own outcome; the pool only
// decides when it runs.
type Job func(i int)

// Run calls job for every index in [0, n). Cancellation is checked before
// each job starts, never while one is running, so a job always completes
// once begun. It returns ctx.Err() if not every job was started.
func (p Pool) Run(ctx context.Context, n int, job Job) error {
	if p.Size <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			job(i)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Size)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			job(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
