package scheduler

import (
	"context"
	"testing"

	"github.com/jpequegn/polybench/internal/adapter"
	"github.com/jpequegn/polybench/internal/ir"
	"github.com/jpequegn/polybench/internal/langs"
	"github.com/jpequegn/polybench/internal/measurement"
)

type countingAdapter struct {
	lang            langs.Lang
	runs            int
	precompileCalls int
	initialized     bool
	shutdownCall    bool
}

func (c *countingAdapter) Name() string     { return "counting" }
func (c *countingAdapter) Lang() langs.Lang { return c.lang }
func (c *countingAdapter) Initialize(ctx context.Context, suite *ir.SuiteIR) error {
	c.initialized = true
	return nil
}
func (c *countingAdapter) GenerateCheckSource(spec *ir.BenchmarkSpec) (string, error) {
	return "", nil
}
func (c *countingAdapter) CompileCheck(ctx context.Context, spec *ir.BenchmarkSpec) error { return nil }
func (c *countingAdapter) Precompile(ctx context.Context, spec *ir.BenchmarkSpec) error {
	c.precompileCalls++
	return nil
}
func (c *countingAdapter) RunBenchmark(ctx context.Context, spec *ir.BenchmarkSpec, suite *ir.SuiteIR) (*measurement.Measurement, error) {
	c.runs++
	return measurement.FromAggregate(1, float64(c.runs)), nil
}
func (c *countingAdapter) Shutdown(ctx context.Context) error {
	c.shutdownCall = true
	return nil
}
func (c *countingAdapter) SetAnvilRPCURL(url string) {}

func TestRunExecutesEveryLanguageForEveryBenchmark(t *testing.T) {
	suite := ir.NewSuiteIR("suite")
	b := ir.NewBenchmarkSpec(suite, "bench")
	b.Implementations[langs.Go] = "goBody()"
	b.Implementations[langs.Rust] = "rustBody()"
	b.Count = 2
	suite.Benchmarks = []*ir.BenchmarkSpec{b}

	registry := adapter.NewRegistry()
	goA := &countingAdapter{lang: langs.Go}
	rustA := &countingAdapter{lang: langs.Rust}
	registry.Register(goA)
	registry.Register(rustA)

	results, err := Run(context.Background(), suite, registry, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 2 langs * 2 runs = 4 results, got %d", len(results))
	}
	if !goA.initialized || !rustA.initialized {
		t.Error("expected both adapters to be initialized")
	}
	if !goA.shutdownCall || !rustA.shutdownCall {
		t.Error("expected both adapters to be shut down")
	}
}

func TestRunPrecompilesEveryLanguageBeforeEachRun(t *testing.T) {
	suite := ir.NewSuiteIR("suite")
	b := ir.NewBenchmarkSpec(suite, "bench")
	b.Implementations[langs.Go] = "goBody()"
	b.Implementations[langs.Rust] = "rustBody()"
	b.Count = 3
	b.FairnessMode = ir.Strict
	suite.Benchmarks = []*ir.BenchmarkSpec{b}

	registry := adapter.NewRegistry()
	goA := &countingAdapter{lang: langs.Go}
	rustA := &countingAdapter{lang: langs.Rust}
	registry.Register(goA)
	registry.Register(rustA)

	if _, err := Run(context.Background(), suite, registry, Options{}); err != nil {
		t.Fatal(err)
	}

	if goA.precompileCalls != 3 {
		t.Errorf("expected go to be precompiled once per run (3), got %d", goA.precompileCalls)
	}
	if rustA.precompileCalls != 3 {
		t.Errorf("expected rust to be precompiled once per run (3), got %d", rustA.precompileCalls)
	}
}

func TestRunLegacyModeUsesStableOrder(t *testing.T) {
	suite := ir.NewSuiteIR("suite")
	b := ir.NewBenchmarkSpec(suite, "bench")
	b.Implementations[langs.Go] = "goBody()"
	b.Implementations[langs.Rust] = "rustBody()"
	b.Count = 3
	b.FairnessMode = ir.Legacy
	suite.Benchmarks = []*ir.BenchmarkSpec{b}

	registry := adapter.NewRegistry()
	registry.Register(&countingAdapter{lang: langs.Go})
	registry.Register(&countingAdapter{lang: langs.Rust})

	results, err := Run(context.Background(), suite, registry, Options{})
	if err != nil {
		t.Fatal(err)
	}

	langOrder := suite.Languages()
	for run := 0; run < 3; run++ {
		base := run * len(langOrder)
		for i, l := range langOrder {
			if results[base+i].Lang != l {
				t.Errorf("legacy run %d: expected lang %v at position %d, got %v", run, l, i, results[base+i].Lang)
			}
		}
	}
}

func TestRunMissingAdapterErrors(t *testing.T) {
	suite := ir.NewSuiteIR("suite")
	b := ir.NewBenchmarkSpec(suite, "bench")
	b.Implementations[langs.Go] = "goBody()"
	suite.Benchmarks = []*ir.BenchmarkSpec{b}

	registry := adapter.NewRegistry() // no adapters
	if _, err := Run(context.Background(), suite, registry, Options{}); err == nil {
		t.Fatal("expected an error when no adapter is registered for a used language")
	}
}
