package adapter

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jpequegn/polybench/internal/ir"
	"github.com/jpequegn/polybench/internal/langs"
	"github.com/jpequegn/polybench/internal/measurement"
	"github.com/jpequegn/polybench/internal/remap"
)

// goBenchRegex matches one line of `go test -bench` output:
// "BenchmarkName-N   iterations   ns/op   [B/op   allocs/op]".
var goBenchRegex = regexp.MustCompile(
	`^Benchmark(\S+)\s+(\d+)\s+(\d+(?:\.\d+)?)\s+ns/op(?:\s+(\d+)\s+B/op)?(?:\s+(\d+)\s+allocs/op)?`,
)

// GoAdapter runs Go-language benchmark bodies by generating a throwaway
// `_test.go` file per benchmark and driving it through `go test -bench`;
// this adapter sits on both ends of the pipe, generating the source as
// well as parsing its output.
type GoAdapter struct {
	goBin string
	root  string

	suite *ir.SuiteIR

	anvilURL string
}

// NewGoAdapter resolves the `go` binary on PATH and picks a scratch
// directory for generated modules.
func NewGoAdapter() (*GoAdapter, error) {
	bin, err := exec.LookPath("go")
	if err != nil {
		return nil, &RuntimeInitError{Lang: "go", Err: err}
	}
	root, err := os.MkdirTemp("", "polybench-go-*")
	if err != nil {
		return nil, &RuntimeInitError{Lang: "go", Err: err}
	}
	return &GoAdapter{goBin: bin, root: root}, nil
}

func (a *GoAdapter) Name() string     { return "go-testing" }
func (a *GoAdapter) Lang() langs.Lang { return langs.Go }

func (a *GoAdapter) Initialize(ctx context.Context, suite *ir.SuiteIR) error {
	a.suite = suite
	modPath := filepath.Join(a.root, "go.mod")
	content := "module polybenchgen\n\ngo 1.24\n"
	return os.WriteFile(modPath, []byte(content), 0o644)
}

func (a *GoAdapter) SetAnvilRPCURL(url string) { a.anvilURL = url }

// GenerateCheckSource renders spec's Go body into a complete `_test.go`
// file: package decl, fixture byte-slice vars, and the body wrapped in a
// standard `func BenchmarkX(b *testing.B)`.
func (a *GoAdapter) GenerateCheckSource(spec *ir.BenchmarkSpec) (string, error) {
	src, _, err := a.buildSource(spec)
	return src, err
}

// buildSource renders spec's Go body the same way GenerateCheckSource
// does, additionally returning a LineMappings table recording which
// generated lines came from which line of the benchmark's body, so a
// compile error pointing at the generated file can be reported against
// the line the user actually wrote.
//
// When spec.WarmupIterations is positive, the body is emitted twice: once
// inside a discarded warmup loop followed by b.ResetTimer(), then again
// inside the timed b.N loop. This keeps JIT/cache warmup and allocator
// state out of the measured window without b.N itself absorbing it.
func (a *GoAdapter) buildSource(spec *ir.BenchmarkSpec) (string, remap.LineMappings, error) {
	body, ok := spec.Implementations[langs.Go]
	if !ok {
		return "", nil, fmt.Errorf("adapter: go: %s has no go implementation", spec.FullName)
	}

	var b strings.Builder
	line := 1
	advance := func(n int) { line += n }

	fmt.Fprintf(&b, "package polybenchgen\n\n")
	advance(2)
	fmt.Fprintf(&b, "import \"testing\"\n\n")
	advance(2)

	for _, ref := range spec.FixtureRefs {
		fx := a.fixtureFor(ref)
		if fx == nil {
			continue
		}
		fmt.Fprintf(&b, "var %s = %s\n", fx.Name, renderByteSlice(fx.Bytes))
		advance(1)
	}
	if a.anvilURL != "" && a.suite != nil && a.suite.UsesService(ir.Anvil) {
		fmt.Fprintf(&b, "var anvilRPCURL = %q\n", a.anvilURL)
		advance(1)
	}
	b.WriteString("\n")
	advance(1)

	fmt.Fprintf(&b, "func Benchmark%s(b *testing.B) {\n", sanitizeIdent(spec.FullName))
	advance(1)

	bodyLines := strings.Split(body, "\n")
	mapping := make(remap.LineMappings, 0, len(bodyLines)*2)

	if spec.WarmupIterations > 0 {
		fmt.Fprintf(&b, "\tfor i := int64(0); i < %d; i++ {\n", spec.WarmupIterations)
		advance(1)
		for i, l := range bodyLines {
			fmt.Fprintf(&b, "\t\t%s\n", l)
			mapping = append(mapping, remap.LineMapping{
				GenStart:  line,
				GenEnd:    line + 1,
				BenchLine: i + 1,
				Section:   spec.Name,
			})
			advance(1)
		}
		b.WriteString("\t}\n")
		advance(1)
		b.WriteString("\tb.ResetTimer()\n")
		advance(1)
	}

	b.WriteString("\tfor i := 0; i < b.N; i++ {\n")
	advance(1)
	for i, l := range bodyLines {
		fmt.Fprintf(&b, "\t\t%s\n", l)
		mapping = append(mapping, remap.LineMapping{
			GenStart:  line,
			GenEnd:    line + 1,
			BenchLine: i + 1,
			Section:   spec.Name,
		})
		advance(1)
	}

	b.WriteString("\t}\n")
	b.WriteString("}\n")

	return b.String(), mapping, nil
}

func (a *GoAdapter) fixtureFor(name string) *ir.FixtureIR {
	if a.suite == nil {
		return nil
	}
	fx, _ := a.suite.Fixture(name)
	return fx
}

func renderByteSlice(data []byte) string {
	var b strings.Builder
	b.WriteString("[]byte{")
	for i, v := range data {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "0x%02x", v)
	}
	b.WriteString("}")
	return b.String()
}

func sanitizeIdent(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}

// writeSource materializes the generated file under a per-benchmark
// subdirectory of the adapter's scratch module root, also returning the
// line mapping needed to translate compiler diagnostics back to the
// benchmark body the user wrote.
func (a *GoAdapter) writeSource(spec *ir.BenchmarkSpec) (dir string, mapping remap.LineMappings, err error) {
	src, mapping, err := a.buildSource(spec)
	if err != nil {
		return "", nil, err
	}
	dir = filepath.Join(a.root, sanitizeIdent(spec.FullName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "bench_test.go")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return "", nil, err
	}
	return dir, mapping, nil
}

// remapStderr rewrites generated-file line references in stderr back to
// the benchmark's own source line, via internal/remap.
func remapStderr(stderr string, spec *ir.BenchmarkSpec, mapping remap.LineMappings) string {
	return remap.Remap(stderr, spec.FullName+".bench", mapping)
}

// CompileCheck compiles spec's generated source without running it, via
// `go test -c`, capturing stderr into a typed CompileError.
func (a *GoAdapter) CompileCheck(ctx context.Context, spec *ir.BenchmarkSpec) error {
	dir, mapping, err := a.writeSource(spec)
	if err != nil {
		return err
	}

	out := filepath.Join(dir, "check.bin")
	cmd := exec.CommandContext(ctx, a.goBin, "test", "-c", "-o", out)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &CompileError{Lang: "go", BenchFullName: spec.FullName, Stderr: remapStderr(stderr.String(), spec, mapping)}
	}
	return nil
}

// Precompile is a no-op for GoAdapter: `go test -bench` compiles and runs
// in one invocation, so there is no separate artifact step to cache ahead
// of RunBenchmark. (Cache reuse instead happens at the internal/cache
// layer, keyed on the generated source, so an unchanged benchmark skips
// CompileCheck during validation.)
func (a *GoAdapter) Precompile(ctx context.Context, spec *ir.BenchmarkSpec) error {
	return nil
}

// RunBenchmark drives `go test -bench=^Name$ -benchmem` and parses the
// single matching output line into a Measurement.
func (a *GoAdapter) RunBenchmark(ctx context.Context, spec *ir.BenchmarkSpec, suite *ir.SuiteIR) (*measurement.Measurement, error) {
	dir, mapping, err := a.writeSource(spec)
	if err != nil {
		return nil, err
	}

	benchName := sanitizeIdent(spec.FullName)
	args := []string{"test", "-run=^$", "-benchmem", "-bench=^Benchmark" + benchName + "$"}
	args = append(args, "-benchtime="+benchtimeArg(spec))

	cmd := exec.CommandContext(ctx, a.goBin, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, &CompileError{Lang: "go", BenchFullName: spec.FullName, Stderr: remapStderr(stderr.String(), spec, mapping)}
		}
		return nil, fmt.Errorf("adapter: go: %s: %w", spec.FullName, err)
	}

	return parseGoBenchOutput(stdout.Bytes(), spec.FullName)
}

func benchtimeArg(spec *ir.BenchmarkSpec) string {
	if spec.Mode == ir.TimeBased && spec.TargetTimeNs > 0 {
		ms := spec.TargetTimeNs / 1_000_000
		if ms < 1 {
			ms = 1
		}
		return strconv.FormatInt(ms, 10) + "ms"
	}
	n := spec.Iterations
	if n <= 0 {
		n = 1
	}
	return strconv.FormatInt(n, 10) + "x"
}

func parseGoBenchOutput(output []byte, fullName string) (*measurement.Measurement, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "Benchmark") {
			continue
		}
		matches := goBenchRegex.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		iterations, err := strconv.ParseInt(matches[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("adapter: go: %s: parse iterations: %w", fullName, err)
		}
		nanosPerOp, err := strconv.ParseFloat(matches[3], 64)
		if err != nil {
			return nil, fmt.Errorf("adapter: go: %s: parse ns/op: %w", fullName, err)
		}

		m := measurement.FromAggregate(iterations, nanosPerOp)

		if matches[4] != "" && matches[5] != "" {
			bytesOp, errB := strconv.ParseInt(matches[4], 10, 64)
			allocsOp, errA := strconv.ParseInt(matches[5], 10, 64)
			if errB == nil && errA == nil {
				m = m.WithAllocs(bytesOp, allocsOp)
			}
		}
		return m, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("adapter: go: %s: reading output: %w", fullName, err)
	}
	return nil, fmt.Errorf("adapter: go: %s: no benchmark result found in output", fullName)
}

func (a *GoAdapter) Shutdown(ctx context.Context) error {
	return os.RemoveAll(a.root)
}
