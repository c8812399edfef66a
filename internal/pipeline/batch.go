// SPDX-License-Identifier: MIT
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"eqlab/internal/log"
)

// ProcessBatch runs independent jobs with at most parallelism in flight.
// The first failure cancels jobs that have not started; results of jobs
// that finished are still returned at their index.
func ProcessBatch(ctx context.Context, jobs []Options, parallelism int) ([]Result, error) {
	if parallelism < 1 {
		parallelism = 1
	}
	log.Infof("Pipeline: Batch of %d files, %d at a time", len(jobs), parallelism)

	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := processFile(ctx, job)
			if err != nil {
				return fmt.Errorf("job %d (%s): %w", i, job.InputPath, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Errorf("Pipeline: Batch failed: %v", err)
		return results, err
	}
	return results, nil
}
