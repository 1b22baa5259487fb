package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jpequegn/polybench/internal/adapter"
	"github.com/jpequegn/polybench/internal/cache"
	"github.com/jpequegn/polybench/internal/ir"
	"github.com/jpequegn/polybench/internal/langs"
	"github.com/jpequegn/polybench/internal/measurement"
	"github.com/jpequegn/polybench/internal/validator"
)

// fakeValidateAdapter is a minimal adapter.Adapter used to drive
// validator.ValidateBenchmarks without invoking a real toolchain.
type fakeValidateAdapter struct {
	lang     langs.Lang
	failName string
}

func (f *fakeValidateAdapter) Name() string { return f.lang.String() }
func (f *fakeValidateAdapter) Lang() langs.Lang { return f.lang }
func (f *fakeValidateAdapter) Initialize(ctx context.Context, suite *ir.SuiteIR) error { return nil }
func (f *fakeValidateAdapter) GenerateCheckSource(spec *ir.BenchmarkSpec) (string, error) {
	return spec.Implementations[f.lang], nil
}
func (f *fakeValidateAdapter) CompileCheck(ctx context.Context, spec *ir.BenchmarkSpec) error {
	if spec.Name == f.failName {
		return fmt.Errorf("compile error in %s", spec.Name)
	}
	return nil
}
func (f *fakeValidateAdapter) Precompile(ctx context.Context, spec *ir.BenchmarkSpec) error {
	return nil
}
func (f *fakeValidateAdapter) RunBenchmark(ctx context.Context, spec *ir.BenchmarkSpec, suite *ir.SuiteIR) (*measurement.Measurement, error) {
	return measurement.FromAggregate(1, 1), nil
}
func (f *fakeValidateAdapter) Shutdown(ctx context.Context) error { return nil }
func (f *fakeValidateAdapter) SetAnvilRPCURL(url string)          {}

func TestValidateSuiteAllPass(t *testing.T) {
	suite := ir.NewSuiteIR("suite")
	suite.DefaultIterations = 10
	spec := ir.NewBenchmarkSpec(suite, "bench")
	spec.Implementations[langs.Go] = "doWork()"
	suite.Benchmarks = append(suite.Benchmarks, spec)

	registry := adapter.NewRegistry()
	registry.Register(&fakeValidateAdapter{lang: langs.Go})

	c, err := cache.New(filepath.Join(t.TempDir(), "cache"), 10)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	stats, failures, err := validator.ValidateBenchmarks(context.Background(), suite, registry, c, validator.Options{})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if stats.Failed != 0 || len(failures) != 0 {
		t.Fatalf("expected no failures, got %+v %+v", stats, failures)
	}
	if stats.Built != 1 {
		t.Errorf("expected 1 built, got %d", stats.Built)
	}
}

func TestValidateSuiteWithFailure(t *testing.T) {
	suite := ir.NewSuiteIR("suite")
	suite.DefaultIterations = 10
	spec := ir.NewBenchmarkSpec(suite, "badBench")
	spec.Implementations[langs.Go] = "doWork()"
	suite.Benchmarks = append(suite.Benchmarks, spec)

	registry := adapter.NewRegistry()
	registry.Register(&fakeValidateAdapter{lang: langs.Go, failName: "badBench"})

	c, err := cache.New(filepath.Join(t.TempDir(), "cache"), 10)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	stats, failures, err := validator.ValidateBenchmarks(context.Background(), suite, registry, c, validator.Options{})
	if err != nil {
		t.Fatalf("validate returned unexpected error: %v", err)
	}
	if stats.Failed != 1 || len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %+v %+v", stats, failures)
	}
}
