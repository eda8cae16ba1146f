// Package txn defines the request-scoped transaction contract shared by the
// lifecycle and bootstrap services. Storage adapters provide a Runner whose
// InTx makes every store call inside fn run on one transaction; the
// in-memory stores use the pass-through Runner.
package txn

import "context"

// Runner executes fn within a single transaction. If fn returns an error the
// transaction rolls back and the error is returned unchanged.
type Runner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func (f RunnerFunc) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// Passthrough returns a Runner that just invokes fn. Backends without
// transactional semantics (the in-memory stores) use it.
func Passthrough() Runner {
	return RunnerFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
		return fn(ctx)
	})
}

// Snapshotter captures a store's state and returns a function restoring it.
// The in-memory stores implement it so tests can exercise rollback.
type Snapshotter interface {
	Snapshot() (restore func())
}

// SnapshotRunner returns a Runner that snapshots every store before invoking
// fn and restores them all when fn fails. It gives the in-memory stores the
// all-or-nothing semantics a real database transaction provides.
func SnapshotRunner(stores ...Snapshotter) Runner {
	return RunnerFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
		restores := make([]func(), 0, len(stores))
		for _, s := range stores {
			restores = append(restores, s.Snapshot())
		}

		if err := fn(ctx); err != nil {
			for i := len(restores) - 1; i >= 0; i-- {
				restores[i]()
			}
			return err
		}
		return nil
	})
}
