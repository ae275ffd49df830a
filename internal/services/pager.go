package services

import (
	"context"

	"github.com/soracane/kwx/internal/shared"
)

// pageFunc fetches one page of a listing endpoint starting at offset.
// It reports whether further pages remain.
type pageFunc[T any] func(ctx context.Context, offset int) (items []T, more bool, err error)

// collectPages walks a paginated endpoint to completion, accumulating items
// in page order. Each page fetch is retried independently per the policy, so
// a transient failure mid-walk does not restart the accumulation.
func collectPages[T any](ctx context.Context, policy shared.RetryPolicy, fetch pageFunc[T]) ([]T, error) {
	var all []T
	offset := 0

	for {
		var items []T
		var more bool

		err := policy.Do(ctx, func() error {
			var err error
			items, more, err = fetch(ctx, offset)
			return err
		})
		if err != nil {
			return nil, err
		}

		all = append(all, items...)
		if !more || len(items) == 0 {
			break
		}
		offset += len(items)
	}

	return all, nil
}
