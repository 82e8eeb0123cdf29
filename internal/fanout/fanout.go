// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fanout runs one independent operation per input item concurrently
// and reports a result or failure for every item. A failing or panicking
// item never cancels or fails its siblings, and Run only returns after every
// operation has settled.
package fanout

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config controls one fan-out batch.
type Config struct {
	// Stage names the batch in log lines (e.g. "filter_papers").
	Stage string

	// Limit caps the number of operations in flight. Zero means unlimited.
	Limit int

	Logger zerolog.Logger
}

// Result pairs an input item with its operation's outcome. Exactly one of
// Value and Err is meaningful.
type Result[T, R any] struct {
	// Index is the item's position in the input slice.
	Index int
	Item  T
	Value R
	Err   error
}

// OK reports whether the operation succeeded.
func (r Result[T, R]) OK() bool { return r.Err == nil }

// PanicError wraps a value recovered from a panicking operation.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("operation panicked: %v", e.Value)
}

// Run calls op once per item and waits for all of them. The returned slice
// has len(items) entries and results[i] always belongs to items[i],
// whatever order the operations finish in. key names an item in failure
// logs; it may be nil.
func Run[T, R any](ctx context.Context, cfg Config, items []T, key func(T) string, op func(context.Context, T) (R, error)) []Result[T, R] {
	results := make([]Result[T, R], len(items))

	var g errgroup.Group
	if cfg.Limit > 0 {
		g.SetLimit(cfg.Limit)
	}

	for i, item := range items {
		g.Go(func() error {
			v, err := call(ctx, item, op)
			results[i] = Result[T, R]{Index: i, Item: item, Value: v, Err: err}
			if err != nil {
				ev := cfg.Logger.Warn().Str("stage", cfg.Stage).Int("index", i).Err(err)
				if key != nil {
					ev = ev.Str("item", key(item))
				}
				ev.Msg("fanout.item_failed")
			}
			// Failures are carried in results; never cancel siblings.
			return nil
		})
	}
	_ = g.Wait()

	ok := 0
	for _, r := range results {
		if r.OK() {
			ok++
		}
	}
	cfg.Logger.Debug().Str("stage", cfg.Stage).Int("total", len(items)).Int("ok", ok).
		Int("failed", len(items)-ok).Msg("fanout.complete")

	return results
}

func call[T, R any](ctx context.Context, item T, op func(context.Context, T) (R, error)) (v R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p}
		}
	}()
	return op(ctx, item)
}

// Successes returns the values of the successful results in input order.
func Successes[T, R any](results []Result[T, R]) []R {
	out := make([]R, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Value)
		}
	}
	return out
}

// Failed returns the number of failed results.
func Failed[T, R any](results []Result[T, R]) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
