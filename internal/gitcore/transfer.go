package gitcore

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// transferConcurrency bounds how many objects TransferObjects copies in
// flight at once.
const transferConcurrency = 8

// TransferObjects copies every object in src into dst. Object writes are
// idempotent and content-addressed, so concurrent writers racing on the
// same hash write identical bytes — this is the one place the otherwise
// single-threaded command model uses a bounded worker pool. Independent
// per-object failures are aggregated rather than aborting the whole
// transfer at the first one.
func TransferObjects(src, dst *Store) error {
	hashes, err := src.All()
	if err != nil {
		return fmt.Errorf("gitcore: listing source objects: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(transferConcurrency)

	var mu sync.Mutex
	var errs error

	for _, h := range hashes {
		g.Go(func() error {
			content, ok := src.Read(h)
			if !ok {
				return nil
			}
			if _, err := dst.Write(content); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("copying object %s: %w", h, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errs
}
