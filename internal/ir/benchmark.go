package ir

import (
	"strings"

	"github.com/jpequegn/polybench/internal/langs"
)

// FairnessMode selects how the scheduler orders languages within one
// benchmark's runs.
type FairnessMode int

const (
	// Legacy runs languages in stable declaration order every run.
	Legacy FairnessMode = iota
	// Strict runs a per-run pseudorandom permutation of languages.
	Strict
)

func (m FairnessMode) String() string {
	if m == Strict {
		return "strict"
	}
	return "legacy"
}

// BenchmarkKind distinguishes synchronous bodies from ones that must be
// awaited (e.g. a TypeScript benchmark wrapping a Promise).
type BenchmarkKind int

const (
	Sync BenchmarkKind = iota
	Async
)

// BenchmarkSpec is one benchmark within a suite, with one source body per
// participating language.
type BenchmarkSpec struct {
	Name     string
	FullName string

	Mode             SuiteMode
	Iterations       int64
	WarmupIterations int64
	TargetTimeNs     int64

	Implementations map[langs.Lang]string
	FixtureRefs     []string

	FairnessMode FairnessMode
	FairnessSeed *uint64

	Count int
	Kind  BenchmarkKind
}

// NewBenchmarkSpec builds a spec inheriting the suite's mode/defaults; the
// caller (or the IR lowerer) overrides individual fields afterward.
func NewBenchmarkSpec(suite *SuiteIR, name string) *BenchmarkSpec {
	spec := &BenchmarkSpec{
		Name:             name,
		FullName:         suite.Name + "_" + name,
		Mode:             suite.Mode,
		Iterations:       suite.DefaultIterations,
		WarmupIterations: suite.DefaultWarmupIterations,
		TargetTimeNs:     suite.DefaultTargetTimeNs,
		Implementations:  make(map[langs.Lang]string),
		FairnessMode:     Legacy,
		Count:            1,
		Kind:             Sync,
	}
	return spec
}

// HasLang reports whether the benchmark has a body for l.
func (b *BenchmarkSpec) HasLang(l langs.Lang) bool {
	_, ok := b.Implementations[l]
	return ok
}

// Languages returns the set of languages this benchmark must run, in the
// order given by order (typically suite.Languages()); languages the
// benchmark does not implement are skipped.
func (b *BenchmarkSpec) Languages(order []langs.Lang) []langs.Lang {
	out := make([]langs.Lang, 0, len(b.Implementations))
	for _, l := range order {
		if b.HasLang(l) {
			out = append(out, l)
		}
	}
	return out
}

// ExtractFixtureRefs computes FixtureRefs by a static textual scan of the
// benchmark's body in each language: a fixture name is considered
// referenced if it appears anywhere as a substring of any implementation.
// This mirrors the original implementation's extract_fixture_refs (a
// regex-style extractor, not a real parser) and shares its known
// limitation: a misspelled fixture reference is not caught here, and the
// benchmark instead fails at adapter compile time (spec.md §9, Open
// Question 1).
func (b *BenchmarkSpec) ExtractFixtureRefs(fixtures []*FixtureIR) {
	var refs []string
	for _, f := range fixtures {
		for _, body := range b.Implementations {
			if strings.Contains(body, f.Name) {
				refs = append(refs, f.Name)
				break
			}
		}
	}
	b.FixtureRefs = refs
}
