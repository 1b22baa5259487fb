// Package measurement turns adapter output into comparable numbers.
//
// Three layers:
//
//	Measurement  - one (benchmark, language) run: ns/op, ops/sec, percentiles
//	Comparison   - one (benchmark, language A, language B) head-to-head
//	SuiteSummary - every benchmark in a suite, rolled up via geometric mean
//
// A Comparison's Ratio is Second.NanosPerOp / First.NanosPerOp: a ratio
// above 1 means First was faster. Ratios within tieTolerance (5%) of 1.0
// are reported as Tie rather than a winner, since two runs of the same
// implementation routinely differ by a few percent from scheduling noise
// alone.
package measurement
