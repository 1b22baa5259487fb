// Package adapter implements the Runtime Adapter contract used by the
// scheduler to compile and run one benchmark in one language.
//
//	Initialize        - once per suite: resolve toolchain, write scaffolding
//	GenerateCheckSource - render a benchmark's body into native source
//	CompileCheck       - compile only, for ValidateBenchmarks
//	Precompile         - build an artifact ahead of timed execution
//	RunBenchmark       - run for real, return a measurement.Measurement
//	Shutdown           - release resources acquired by Initialize
//
// GoAdapter is the reference implementation: it generates a `_test.go`
// file per benchmark and drives it through `go test -bench`, parsing its
// own `ns/op` / `B/op` / `allocs/op` output line.
package adapter
