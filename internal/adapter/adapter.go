// Package adapter defines the Runtime Adapter contract: the uniform
// interface each language plugs into the scheduler through, grounded on
// poly-bench-runtime's Runtime trait and on the executor.Executor this
// module used to carry (command execution, stderr capture, context
// cancellation).
package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/jpequegn/polybench/internal/ir"
	"github.com/jpequegn/polybench/internal/langs"
	"github.com/jpequegn/polybench/internal/measurement"
)

// Adapter is the contract every language runtime implements: initialize
// once per suite, generate and compile a check build of a benchmark
// (without timing it, for ValidateBenchmarks), optionally precompile it
// ahead of timed runs, run it for real and report a Measurement, then
// shut down.
type Adapter interface {
	Name() string
	Lang() langs.Lang

	// Initialize prepares the adapter for a suite: writing shared
	// project scaffolding, resolving the toolchain binary, etc.
	Initialize(ctx context.Context, suite *ir.SuiteIR) error

	// GenerateCheckSource renders the benchmark's body into the
	// language's native source form, without invoking the toolchain.
	GenerateCheckSource(spec *ir.BenchmarkSpec) (string, error)

	// CompileCheck compiles spec without running it, returning a
	// CompileError wrapping the toolchain's stderr on failure.
	CompileCheck(ctx context.Context, spec *ir.BenchmarkSpec) error

	// Precompile builds an artifact ahead of timed execution so that
	// RunBenchmark's wall-clock time excludes compilation. Optional:
	// adapters that compile from the language's source each run (e.g.
	// an interpreted language) may no-op here.
	Precompile(ctx context.Context, spec *ir.BenchmarkSpec) error

	// RunBenchmark executes spec for real and returns its Measurement.
	RunBenchmark(ctx context.Context, spec *ir.BenchmarkSpec, suite *ir.SuiteIR) (*measurement.Measurement, error)

	// Shutdown releases any resources Initialize acquired.
	Shutdown(ctx context.Context) error

	// SetAnvilRPCURL propagates the shared Anvil service's RPC endpoint
	// to benchmarks that need it; a no-op for adapters whose suites
	// never declare ir.Anvil as a shared service.
	SetAnvilRPCURL(url string)
}

// Registry maps a language to its configured Adapter, the way the
// since-deleted executor.ParserRegistry mapped a language string to its
// Parser.
type Registry struct {
	mu       sync.RWMutex
	adapters map[langs.Lang]Adapter
}

// NewRegistry builds an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[langs.Lang]Adapter)}
}

// Register adds or replaces the adapter for its own Lang().
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Lang()] = a
}

// Get returns the adapter configured for l, or an error naming the
// missing language.
func (r *Registry) Get(l langs.Lang) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[l]
	if !ok {
		return nil, fmt.Errorf("adapter: no adapter registered for language %s", l)
	}
	return a, nil
}

// All returns every registered adapter, in no particular order.
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	return out
}
