// Package remap translates compiler diagnostics pointing at a generated
// source file back into coordinates in the original `.bench` source the
// user wrote, so a Go compile error mentioning generated line 47 is
// reported against the `.bench` line the offending body line actually
// came from.
//
// Generalizes a single line-bearing error into a binary-searchable table
// of generated-range -> source-line mappings.
package remap

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// LineMapping records that generated lines [GenStart, GenEnd) came from
// BenchLine of the named Section in the original `.bench` source.
type LineMapping struct {
	GenStart int
	GenEnd   int
	BenchLine int
	Section   string
}

// LineMappings is a table of mappings in strictly increasing GenStart
// order, enabling binary search.
type LineMappings []LineMapping

// FindBenchLine returns the BenchLine (and section) whose generated range
// contains genLine, or (0, "", false) if genLine falls outside every
// mapped range (e.g. it points at generated boilerplate like the package
// declaration or import block).
func (m LineMappings) FindBenchLine(genLine int) (benchLine int, section string, ok bool) {
	// sort.Search finds the first mapping whose GenStart > genLine; the
	// containing mapping, if any, is the one just before it.
	i := sort.Search(len(m), func(i int) bool { return m[i].GenStart > genLine })
	if i == 0 {
		return 0, "", false
	}
	candidate := m[i-1]
	if genLine >= candidate.GenStart && genLine < candidate.GenEnd {
		return candidate.BenchLine, candidate.Section, true
	}
	return 0, "", false
}

// genLineRef matches a "<path>:<line>:<col>" coordinate as emitted by Go,
// TypeScript, rustc, and most other toolchains this module targets.
var genLineRef = regexp.MustCompile(`([\w./\\-]+):(\d+):(\d+)`)

// Remap rewrites every "<file>:<line>:<col>" occurrence in stderr whose
// line falls inside m's mapped ranges, replacing it with the original
// `.bench` source's line number and section name. Occurrences outside
// every mapped range are left untouched, since they point at generated
// scaffolding the user never wrote.
func Remap(stderr string, benchPath string, m LineMappings) string {
	return genLineRef.ReplaceAllStringFunc(stderr, func(match string) string {
		sub := genLineRef.FindStringSubmatch(match)
		if sub == nil {
			return match
		}
		line, err := strconv.Atoi(sub[2])
		if err != nil {
			return match
		}
		benchLine, section, ok := m.FindBenchLine(line)
		if !ok {
			return match
		}
		if section != "" {
			return fmt.Sprintf("%s:%d (in %s)", benchPath, benchLine, section)
		}
		return fmt.Sprintf("%s:%d", benchPath, benchLine)
	})
}
