package ir

import (
	"testing"

	"github.com/jpequegn/polybench/internal/langs"
)

func TestBenchmarkSpecLanguages(t *testing.T) {
	s := NewSuiteIR("suite")
	b := NewBenchmarkSpec(s, "bench")
	b.Implementations[langs.Rust] = "fn bench() {}"
	b.Implementations[langs.Go] = "func Bench() {}"

	order := []langs.Lang{langs.Go, langs.TypeScript, langs.Rust}
	got := b.Languages(order)

	if len(got) != 2 || got[0] != langs.Go || got[1] != langs.Rust {
		t.Fatalf("unexpected language order: %v", got)
	}
}

func TestExtractFixtureRefs(t *testing.T) {
	s := NewSuiteIR("suite")
	b := NewBenchmarkSpec(s, "bench")
	b.Implementations[langs.Go] = "hash.Keccak256(shortData)"

	fixtures := []*FixtureIR{
		NewFixtureIR("shortData", []byte{1}),
		NewFixtureIR("longData", []byte{2}),
	}

	b.ExtractFixtureRefs(fixtures)

	if len(b.FixtureRefs) != 1 || b.FixtureRefs[0] != "shortData" {
		t.Fatalf("expected only shortData referenced, got %v", b.FixtureRefs)
	}
}

func TestFairnessModeString(t *testing.T) {
	if Legacy.String() != "legacy" {
		t.Error("Legacy should stringify to legacy")
	}
	if Strict.String() != "strict" {
		t.Error("Strict should stringify to strict")
	}
}
