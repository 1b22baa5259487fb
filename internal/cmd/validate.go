package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/jpequegn/polybench/internal/adapter"
	"github.com/jpequegn/polybench/internal/cache"
	"github.com/jpequegn/polybench/internal/validator"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compile-check every (benchmark, language) pair in a suite",
	Long: `Validate compiles every benchmark in every language it implements,
using the workspace compile cache so repeat validations of unchanged
benchmarks are instant.

Example:
  polybench validate --suite evm.yaml`,
	RunE: validateSuite,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("suite", "s", "", "path to suite definition file (required)")
	validateCmd.Flags().String("cache-dir", "", "compile cache directory (default: $POLYBENCH_CACHE_DIR or ./.polybench/cache)")
	validateCmd.Flags().Int("concurrency", 0, "number of concurrent compile checks (default 4)")
	validateCmd.Flags().String("adapter-version", "go1", "adapter version string mixed into the compile cache key")

	_ = validateCmd.MarkFlagRequired("suite")
}

func validateSuite(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	suitePath, _ := cmd.Flags().GetString("suite")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	adapterVersion, _ := cmd.Flags().GetString("adapter-version")

	suite, err := LoadSuiteIR(suitePath)
	if err != nil {
		return fmt.Errorf("failed to load suite: %w", err)
	}

	if cacheDir == "" {
		cacheDir = os.Getenv("POLYBENCH_CACHE_DIR")
	}
	if cacheDir == "" {
		cacheDir = ".polybench/cache"
	}
	c, err := cache.New(cacheDir, 500)
	if err != nil {
		return fmt.Errorf("failed to open compile cache: %w", err)
	}

	registry := adapter.NewRegistry()
	goAdapter, err := adapter.NewGoAdapter()
	if err != nil {
		return fmt.Errorf("failed to create go adapter: %w", err)
	}
	registry.Register(goAdapter)

	slog.Info("validating suite", "name", suite.Name, "benchmarks", len(suite.Benchmarks))

	opts := validator.Options{Concurrency: concurrency, AdapterVersion: adapterVersion}
	stats, failures, err := validator.ValidateBenchmarks(ctx, suite, registry, c, opts)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	output := map[string]interface{}{
		"stats":    stats,
		"failures": failures,
	}
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if stats.Failed > 0 {
		return fmt.Errorf("%d benchmark compile check(s) failed", stats.Failed)
	}

	return nil
}
