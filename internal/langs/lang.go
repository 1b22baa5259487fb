// Package langs defines the closed set of languages Poly-Bench benchmarks
// can target and the string aliases used when parsing a .bench file or a
// CLI flag.
package langs

import "fmt"

// Lang identifies one target language's toolchain.
type Lang int

const (
	Go Lang = iota
	TypeScript
	Rust
	Python
	C
	CSharp
	Zig
)

// All lists every supported language in declaration order.
var All = []Lang{Go, TypeScript, Rust, Python, C, CSharp, Zig}

// String returns the canonical lowercase name of the language.
func (l Lang) String() string {
	switch l {
	case Go:
		return "go"
	case TypeScript:
		return "typescript"
	case Rust:
		return "rust"
	case Python:
		return "python"
	case C:
		return "c"
	case CSharp:
		return "csharp"
	case Zig:
		return "zig"
	default:
		return fmt.Sprintf("lang(%d)", int(l))
	}
}

// aliases maps every accepted spelling (including the canonical name) to
// its Lang. Built once; Parse and ParseLang both use it.
var aliases = map[string]Lang{
	"go": Go,

	"typescript": TypeScript,
	"ts":         TypeScript,

	"rust": Rust,
	"rs":   Rust,

	"python": Python,
	"py":     Python,

	"c": C,

	"csharp": CSharp,
	"cs":     CSharp,
	"c#":     CSharp,

	"zig": Zig,
}

// ParseLang parses a language name or alias (case-sensitive, matching the
// DSL's own identifier casing) into a Lang.
func ParseLang(s string) (Lang, error) {
	if l, ok := aliases[s]; ok {
		return l, nil
	}
	return 0, fmt.Errorf("unknown language %q", s)
}

// IsValid reports whether l is one of the closed set of supported languages.
func (l Lang) IsValid() bool {
	return l >= Go && l <= Zig
}
