package remap

import (
	"strings"
	"testing"
)

func testMappings() LineMappings {
	return LineMappings{
		{GenStart: 1, GenEnd: 5, BenchLine: 1, Section: "header"},
		{GenStart: 5, GenEnd: 10, BenchLine: 12, Section: "bench hash"},
		{GenStart: 10, GenEnd: 20, BenchLine: 20, Section: "bench sort"},
	}
}

func TestFindBenchLineWithinRange(t *testing.T) {
	m := testMappings()
	line, section, ok := m.FindBenchLine(7)
	if !ok {
		t.Fatal("expected a match for line 7")
	}
	if line != 12 || section != "bench hash" {
		t.Errorf("unexpected mapping: line=%d section=%s", line, section)
	}
}

func TestFindBenchLineOutOfRange(t *testing.T) {
	m := testMappings()
	if _, _, ok := m.FindBenchLine(100); ok {
		t.Error("expected no match for a line past every mapped range")
	}
	if _, _, ok := m.FindBenchLine(0); ok {
		t.Error("expected no match for a line before every mapped range")
	}
}

func TestFindBenchLineBoundary(t *testing.T) {
	m := testMappings()
	// GenEnd is exclusive: line 5 belongs to the second mapping, not the first.
	line, _, ok := m.FindBenchLine(5)
	if !ok || line != 12 {
		t.Errorf("expected boundary line 5 to map to bench line 12, got line=%d ok=%v", line, ok)
	}
}

func TestRemapRewritesMatchedLines(t *testing.T) {
	m := testMappings()
	stderr := "gen_test.go:7:3: undefined: foo\n"
	out := Remap(stderr, "suite.bench", m)
	if !strings.Contains(out, "suite.bench:12 (in bench hash)") {
		t.Errorf("expected remapped line, got: %s", out)
	}
}

func TestRemapLeavesUnmatchedLinesAlone(t *testing.T) {
	m := testMappings()
	stderr := "gen_test.go:500:1: syntax error\n"
	out := Remap(stderr, "suite.bench", m)
	if out != stderr {
		t.Errorf("expected unmatched coordinates to be left untouched, got: %s", out)
	}
}
