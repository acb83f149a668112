package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Ensemble runs the same configuration once per seed, in parallel.
type Ensemble struct {
	logger    *slog.Logger
	numRuns   int
	seedStart int64
}

func NewEnsemble(logger *slog.Logger, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{logger: logger, numRuns: numRuns, seedStart: seedStart}
}

// Run returns one result per seed in seed order. Cfg.Seed is ignored.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)
			results[idx], errs[idx] = New(e.logger).Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	var result *multierror.Error
	for i, err := range errs {
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("seed %d: %w", e.seedStart+int64(i), err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return results, nil
}

// Mean averages one metric across results.
func Mean(results []*Result, metric string) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Metrics[metric]
	}
	return sum / float64(len(results))
}
