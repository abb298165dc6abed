package financials

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds ExtractAll when the caller passes 0.
const DefaultBatchConcurrency = 4

// ExtractAll runs ExtractFinancialData over independent filing directories in
// parallel. Results keep the order of dirs. The first failure cancels the
// remaining work and is returned with the directory it came from.
func ExtractAll(ctx context.Context, dirs []string, concurrency int) ([]*Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	results := make([]*Result, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := ExtractFinancialData(dir)
			if err != nil {
				return fmt.Errorf("%s: %w", dir, err)
			}
			log.Printf("[Extract] %s -> %s", dir, res.Source)
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
