package core

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency = 16
	DefaultTimeout     = 30 * time.Second
)

// Lookup is a single deferred query against a Source.
type Lookup func(ctx context.Context) Result

// RegistryLookup returns a Lookup resolving tag for name on src.
func RegistryLookup(src Source, name, tag string) Lookup {
	return func(ctx context.Context) Result {
		return src.RegistryVersion(ctx, name, tag)
	}
}

// InstalledLookup returns a Lookup for the installed version of name.
func InstalledLookup(src Source, name string) Lookup {
	return func(ctx context.Context) Result {
		return src.InstalledVersion(ctx, name)
	}
}

// FetchAll runs lookups in parallel and returns their results in the same
// order. Each lookup gets its own timeout; a lookup that fails or times out
// yields a failed Result without affecting the others.
func FetchAll(ctx context.Context, lookups []Lookup, concurrency int, timeout time.Duration) []Result {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	results := make([]Result, len(lookups))
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, lookup := range lookups {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Failed(err)
				return nil
			}

			lctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			results[i] = guard(lctx, lookup)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// guard converts a panicking lookup into a failed Result and enforces the
// context deadline for lookups that ignore it.
func guard(ctx context.Context, lookup Lookup) Result {
	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Failed(&panicError{value: r})
			}
		}()
		done <- lookup(ctx)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return Failed(ctx.Err())
	}
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("lookup panicked: %v", e.value)
}
