package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jpequegn/polybench/internal/adapter"
	"github.com/jpequegn/polybench/internal/anvil"
	"github.com/jpequegn/polybench/internal/measurement"
	"github.com/jpequegn/polybench/internal/scheduler"
	"github.com/jpequegn/polybench/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a suite's benchmarks across every implemented language",
	Long: `Run every benchmark in a suite file across its implemented languages,
store the measurements, and print a suite summary as JSON.

Example:
  polybench run --suite evm.yaml --db polybench.db
  polybench run --suite evm.yaml --watch`,
	RunE: runSuite,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("suite", "s", "", "path to suite definition file (required)")
	runCmd.Flags().String("db", "polybench.db", "path to the SQLite measurement store")
	runCmd.Flags().Bool("watch", false, "re-run the suite whenever the config file changes")

	_ = runCmd.MarkFlagRequired("suite")
}

func runSuite(cmd *cobra.Command, args []string) error {
	suitePath, _ := cmd.Flags().GetString("suite")
	dbPath, _ := cmd.Flags().GetString("db")
	watch, _ := cmd.Flags().GetBool("watch")

	run := func() error {
		return executeSuiteOnce(cmd.Context(), suitePath, dbPath)
	}

	if !watch {
		return run()
	}

	slog.Info("watching config for changes", "file", viper.ConfigFileUsed())
	viper.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config changed, re-running suite", "event", e.String())
		if err := run(); err != nil {
			slog.Error("suite run failed", "error", err)
		}
	})
	viper.WatchConfig()

	if err := run(); err != nil {
		return err
	}

	select {}
}

func executeSuiteOnce(ctx context.Context, suitePath, dbPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	suite, err := LoadSuiteIR(suitePath)
	if err != nil {
		return fmt.Errorf("failed to load suite: %w", err)
	}

	registry := adapter.NewRegistry()
	goAdapter, err := adapter.NewGoAdapter()
	if err != nil {
		return fmt.Errorf("failed to create go adapter: %w", err)
	}
	registry.Register(goAdapter)

	slog.Info("running suite", "name", suite.Name, "benchmarks", len(suite.Benchmarks))

	start := time.Now()
	results, err := scheduler.Run(ctx, suite, registry, scheduler.Options{AnvilConfig: anvil.Config{}})
	duration := time.Since(start)
	if err != nil {
		return fmt.Errorf("suite run failed: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	now := time.Now()
	flatResults, storedMeasurements := aggregateResults(results, now)

	suiteRun := &storage.SuiteRun{
		SuiteName:    suite.Name,
		Timestamp:    now,
		DurationNs:   int64(duration),
		Measurements: storedMeasurements,
	}
	if err := store.Save(suiteRun); err != nil {
		return fmt.Errorf("failed to save suite run: %w", err)
	}

	summary := measurement.Summarize(suite.Name, flatResults)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// aggregateResults merges the scheduler's raw per-(benchmark, language,
// run) results into one measurement.BenchmarkResult per benchmark, with
// one merged Measurement per language across all of a benchmark's `count`
// repeated runs (see measurement.MergeRuns) rather than letting only the
// last run survive, plus one storage.StoredMeasurement per (benchmark,
// language) ready to persist. Benchmarks are returned in first-seen
// order; languages within a benchmark are merged in sorted order so
// repeated runs produce stable output.
func aggregateResults(results []scheduler.RunResult, now time.Time) ([]*measurement.BenchmarkResult, []*storage.StoredMeasurement) {
	var byBenchOrder []string
	benchResults := make(map[string]*measurement.BenchmarkResult)
	runsByBenchLang := make(map[string]map[string][]*measurement.Measurement)

	for _, r := range results {
		if r.Err != nil {
			slog.Warn("benchmark run failed", "benchmark", r.BenchFullName, "lang", r.Lang, "error", r.Err)
			continue
		}

		if _, ok := benchResults[r.BenchFullName]; !ok {
			benchResults[r.BenchFullName] = &measurement.BenchmarkResult{FullName: r.BenchFullName, ByLang: make(map[string]*measurement.Measurement)}
			byBenchOrder = append(byBenchOrder, r.BenchFullName)
			runsByBenchLang[r.BenchFullName] = make(map[string][]*measurement.Measurement)
		}

		langKey := r.Lang.String()
		runsByBenchLang[r.BenchFullName][langKey] = append(runsByBenchLang[r.BenchFullName][langKey], r.Measurement)
	}

	var flatResults []*measurement.BenchmarkResult
	var storedMeasurements []*storage.StoredMeasurement
	for _, name := range byBenchOrder {
		res := benchResults[name]

		langNames := make([]string, 0, len(runsByBenchLang[name]))
		for l := range runsByBenchLang[name] {
			langNames = append(langNames, l)
		}
		sortStringsAsc(langNames)

		for _, lang := range langNames {
			merged := measurement.MergeRuns(runsByBenchLang[name][lang])
			res.ByLang[lang] = merged
			storedMeasurements = append(storedMeasurements, storage.FromMeasurement(name, lang, now, merged))
		}

		res.Comparisons = pairwiseComparisons(name, res.ByLang)
		for _, c := range res.Comparisons {
			slog.Info("benchmark comparison", "benchmark", name, "result", c.SpeedupDescription())
		}
		flatResults = append(flatResults, res)
	}

	return flatResults, storedMeasurements
}

// pairwiseComparisons builds a Comparison for every combination of two
// languages measured for the same benchmark, iterating languages in
// sorted order so repeated runs produce a stable comparison list.
func pairwiseComparisons(benchFullName string, byLang map[string]*measurement.Measurement) []*measurement.Comparison {
	langNames := make([]string, 0, len(byLang))
	for l := range byLang {
		langNames = append(langNames, l)
	}
	sortStringsAsc(langNames)

	var comparisons []*measurement.Comparison
	for i := 0; i < len(langNames); i++ {
		for j := i + 1; j < len(langNames); j++ {
			first, second := langNames[i], langNames[j]
			comparisons = append(comparisons, measurement.NewComparison(benchFullName, byLang[first], first, byLang[second], second))
		}
	}
	return comparisons
}

func sortStringsAsc(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
