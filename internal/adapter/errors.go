package adapter

import "fmt"

// RuntimeInitError reports that an adapter's Initialize failed, e.g.
// because the language's toolchain binary was not found on PATH.
type RuntimeInitError struct {
	Lang string
	Err  error
}

func (e *RuntimeInitError) Error() string {
	return fmt.Sprintf("adapter: %s: initialize: %v", e.Lang, e.Err)
}

func (e *RuntimeInitError) Unwrap() error { return e.Err }

// CompileError reports a failed CompileCheck or Precompile, carrying the
// toolchain stderr after it has been run through internal/remap, so its
// line references already point at the benchmark's own source.
type CompileError struct {
	Lang          string
	BenchFullName string
	Stderr        string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("adapter: %s: %s: compile failed:\n%s", e.Lang, e.BenchFullName, e.Stderr)
}
