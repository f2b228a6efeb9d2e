// Package gather defines the collection operations run by the batch job.
package gather

import (
	"context"
	"fmt"
)

// Gatherer is the interface for all data gathering operations.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run performs one fetch-persist-snapshot cycle and returns a
	// human-readable status line.
	Run(ctx context.Context) (string, error)
}

// RunAll runs the gatherers strictly in order and stops at the first error.
// It returns the status lines of the gatherers that completed.
func RunAll(ctx context.Context, gs ...Gatherer) ([]string, error) {
	statuses := make([]string, 0, len(gs))
	for _, g := range gs {
		if err := ctx.Err(); err != nil {
			return statuses, err
		}
		status, err := g.Run(ctx)
		if err != nil {
			return statuses, fmt.Errorf("%s: %w", g.Name(), err)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
