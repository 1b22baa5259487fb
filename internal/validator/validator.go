// Package validator implements ValidateBenchmarks: a dry-run compile pass
// over every (benchmark, language) pair in a suite, so that a broken
// benchmark is caught before any timing run starts rather than aborting a
// scheduler run partway through.
//
// Uses golang.org/x/sync/errgroup for the bounded-concurrency group
// rather than a hand-rolled channel/WaitGroup pool.
package validator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jpequegn/polybench/internal/adapter"
	"github.com/jpequegn/polybench/internal/cache"
	"github.com/jpequegn/polybench/internal/ir"
	"github.com/jpequegn/polybench/internal/langs"
)

// Stats summarizes one ValidateBenchmarks run.
type Stats struct {
	Attempted int
	CacheHits int
	Built     int
	Failed    int
}

// Failure records one (benchmark, language) pair that failed to compile.
type Failure struct {
	BenchFullName string
	Lang          langs.Lang
	Err           error
}

// Options configures a validation pass.
type Options struct {
	// Concurrency bounds how many compiles run at once. Defaults to 4.
	Concurrency int
	// AdapterVersion is mixed into the cache key so an adapter upgrade
	// invalidates previously-cached compiles.
	AdapterVersion string
}

// ValidateBenchmarks enumerates every (benchmark, language) pair in
// suite, checks the compile cache, and on a miss calls the adapter's
// CompileCheck, aggregating Stats and any Failures. Bounded concurrency
// keeps a suite with hundreds of benchmarks from spawning hundreds of
// simultaneous toolchain invocations.
func ValidateBenchmarks(ctx context.Context, suite *ir.SuiteIR, registry *adapter.Registry, c *cache.Cache, opts Options) (Stats, []Failure, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	var mu sync.Mutex
	var stats Stats
	var failures []Failure

	langOrder := suite.Languages()

	for _, spec := range suite.Benchmarks {
		spec := spec
		for _, l := range spec.Languages(langOrder) {
			l := l
			g.Go(func() error {
				a, err := registry.Get(l)
				if err != nil {
					mu.Lock()
					stats.Attempted++
					stats.Failed++
					failures = append(failures, Failure{BenchFullName: spec.FullName, Lang: l, Err: err})
					mu.Unlock()
					return nil
				}

				body := spec.Implementations[l]
				fixtureBytes := make(map[string][]byte, len(spec.FixtureRefs))
				for _, ref := range spec.FixtureRefs {
					if fx, ok := suite.Fixture(ref); ok {
						fixtureBytes[ref] = fx.Bytes
					}
				}
				key := cache.ComputeKey(l.String(), opts.AdapterVersion, body, fixtureBytes)

				mu.Lock()
				stats.Attempted++
				mu.Unlock()

				if _, ok := c.Get(key); ok {
					mu.Lock()
					stats.CacheHits++
					mu.Unlock()
					return nil
				}

				_, err = c.CompileOrGet(key, func() ([]byte, error) {
					if err := a.CompileCheck(gctx, spec); err != nil {
						return nil, err
					}
					return []byte("ok"), nil
				})

				mu.Lock()
				if err != nil {
					stats.Failed++
					failures = append(failures, Failure{BenchFullName: spec.FullName, Lang: l, Err: err})
				} else {
					stats.Built++
				}
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return stats, failures, fmt.Errorf("validator: %w", err)
	}
	return stats, failures, nil
}
