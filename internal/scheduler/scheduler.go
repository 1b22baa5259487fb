// Package scheduler runs a suite's benchmarks to completion: one
// benchmark at a time, one language at a time within it, in an order
// that depends on the suite's fairness mode.
//
// Legacy fairness runs languages in the suite's stable declaration order
// every run — simple, but prone to giving one language a systematic
// advantage from ambient machine state (thermal throttling, background
// GC, OS scheduling quantum boundaries) if it always runs first or last.
// Strict fairness runs a fresh pseudorandom permutation of languages on
// every run, so that advantage or disadvantage averages out across runs
// instead of consistently favoring one side. Grounded on
// original_source's scheduler_strict_legacy.rs test. Timing runs are
// never executed concurrently with each other, since that would itself
// violate fairness between languages racing for CPU.
package scheduler

import (
	"context"
	"fmt"

	"github.com/jpequegn/polybench/internal/adapter"
	"github.com/jpequegn/polybench/internal/anvil"
	"github.com/jpequegn/polybench/internal/ir"
	"github.com/jpequegn/polybench/internal/langs"
	"github.com/jpequegn/polybench/internal/measurement"
)

// RunResult is one (benchmark, language, run index)'s outcome.
type RunResult struct {
	BenchFullName string
	Lang          langs.Lang
	RunIndex      int
	Measurement   *measurement.Measurement
	Err           error
}

// Options configures one scheduler invocation.
type Options struct {
	// AnvilConfig is used when suite declares ir.Anvil as a shared
	// service; ignored otherwise.
	AnvilConfig anvil.Config
}

// Run executes every benchmark in suite against the adapters in
// registry, returning one RunResult per (benchmark, language, run).
// Adapters are initialized before the first benchmark and shut down
// after the last, regardless of whether any individual run failed — a
// failed run is recorded in its RunResult, not treated as fatal to the
// rest of the suite.
func Run(ctx context.Context, suite *ir.SuiteIR, registry *adapter.Registry, opts Options) ([]RunResult, error) {
	langOrder := suite.Languages()

	adapters := make(map[langs.Lang]adapter.Adapter, len(langOrder))
	for _, l := range langOrder {
		a, err := registry.Get(l)
		if err != nil {
			return nil, fmt.Errorf("scheduler: %w", err)
		}
		if err := a.Initialize(ctx, suite); err != nil {
			return nil, fmt.Errorf("scheduler: initialize %s: %w", l, err)
		}
		adapters[l] = a
	}
	defer func() {
		for _, a := range adapters {
			_ = a.Shutdown(ctx)
		}
	}()

	var svc *anvil.Service
	if suite.UsesService(ir.Anvil) {
		var err error
		svc, err = anvil.Spawn(ctx, opts.AnvilConfig)
		if err != nil {
			return nil, fmt.Errorf("scheduler: anvil: %w", err)
		}
		defer svc.Close()
		for _, a := range adapters {
			a.SetAnvilRPCURL(svc.RPCURL())
		}
	}

	var results []RunResult
	for _, spec := range suite.Benchmarks {
		benchLangs := spec.Languages(langOrder)
		count := spec.Count
		if count <= 0 {
			count = 1
		}

		for run := 0; run < count; run++ {
			order := benchLangs
			if spec.FairnessMode == ir.Strict {
				seed := seedFor(spec.FairnessSeed, suite.Name, spec.FullName, run)
				order = permute(benchLangs, seed)
			}

			// Precompile every participating language before any timed
			// work for this run, so permuting the run order under Strict
			// fairness can't let one language's compile time leak into
			// another's measured window.
			for _, l := range benchLangs {
				if err := ctx.Err(); err != nil {
					return results, err
				}
				if err := adapters[l].Precompile(ctx, spec); err != nil {
					return results, fmt.Errorf("scheduler: precompile %s/%s: %w", spec.FullName, l, err)
				}
			}

			for _, l := range order {
				if err := ctx.Err(); err != nil {
					return results, err
				}
				a := adapters[l]
				m, err := a.RunBenchmark(ctx, spec, suite)
				results = append(results, RunResult{
					BenchFullName: spec.FullName,
					Lang:          l,
					RunIndex:      run,
					Measurement:   m,
					Err:           err,
				})
			}
		}
	}

	return results, nil
}

// permute reorders langs according to the xorshift64 permutation of
// [0, len(langs)) seeded with seed.
func permute(order []langs.Lang, seed uint64) []langs.Lang {
	idx := shuffleIndices(len(order), seed)
	out := make([]langs.Lang, len(order))
	for i, j := range idx {
		out[i] = order[j]
	}
	return out
}
