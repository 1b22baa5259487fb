package ir

import (
	"fmt"

	"github.com/jpequegn/polybench/internal/langs"
)

// Manifest lists the languages a project has enabled — produced by
// project scaffolding (out of scope) and consumed by the scheduler, which
// fails closed if a suite names a language absent from the manifest.
type Manifest struct {
	Enabled map[langs.Lang]bool
}

// NewManifest builds a manifest enabling exactly the given languages.
func NewManifest(enabled ...langs.Lang) *Manifest {
	m := &Manifest{Enabled: make(map[langs.Lang]bool, len(enabled))}
	for _, l := range enabled {
		m.Enabled[l] = true
	}
	return m
}

// Require returns an error naming the language if it is not enabled,
// matching the wording spec.md §6 prescribes.
func (m *Manifest) Require(l langs.Lang) error {
	if m == nil || !m.Enabled[l] {
		return fmt.Errorf("language %s not configured; run add-runtime", l)
	}
	return nil
}

// RuntimeConfig carries per-language project roots — the directories
// where go.mod, package.json, Cargo.toml, etc. live for each toolchain.
type RuntimeConfig struct {
	ProjectRoots map[langs.Lang]string
}

// NewRuntimeConfig builds an empty RuntimeConfig.
func NewRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{ProjectRoots: make(map[langs.Lang]string)}
}

// RootFor returns the configured project root for l, or "" if unset (the
// adapter then falls back to its own default, e.g. the current directory).
func (c *RuntimeConfig) RootFor(l langs.Lang) string {
	if c == nil {
		return ""
	}
	return c.ProjectRoots[l]
}
