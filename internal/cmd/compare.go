package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jpequegn/polybench/internal/analyzer"
	"github.com/jpequegn/polybench/internal/measurement"
	"github.com/jpequegn/polybench/internal/storage"
	"github.com/spf13/cobra"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two stored suite runs for regressions",
	Long: `Compare loads two suite runs from the measurement store, matches
their (benchmark, language) pairs, and reports which ones regressed,
improved, or held steady at the requested confidence level.

By default current is the most recent run and baseline is the run
before it; pass --baseline/--current as RFC3339 timestamps to compare
specific runs.

Example:
  polybench compare --suite evm --db polybench.db
  polybench compare --suite evm --baseline 2026-07-01T00:00:00Z --current 2026-07-30T00:00:00Z`,
	RunE: compareBenchmarks,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringP("suite", "s", "", "suite name to compare runs for (required)")
	compareCmd.Flags().String("db", "polybench.db", "path to the SQLite measurement store")
	compareCmd.Flags().String("baseline", "", "RFC3339 timestamp of the baseline run (default: second most recent)")
	compareCmd.Flags().String("current", "", "RFC3339 timestamp of the current run (default: most recent)")
	compareCmd.Flags().Float64P("confidence", "C", 0.95, "statistical confidence level for significance testing")
	compareCmd.Flags().Bool("save", true, "persist each comparison to the comparison history table")
	compareCmd.Flags().Bool("history", false, "attach trend/anomaly analysis from prior comparison history to each pair")
	compareCmd.Flags().Int("history-limit", 30, "max prior comparison_history rows to analyze per (benchmark, language) when --history is set")

	_ = compareCmd.MarkFlagRequired("suite")
}

func compareBenchmarks(cmd *cobra.Command, args []string) error {
	suiteName, _ := cmd.Flags().GetString("suite")
	dbPath, _ := cmd.Flags().GetString("db")
	baselineTS, _ := cmd.Flags().GetString("baseline")
	currentTS, _ := cmd.Flags().GetString("current")
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	save, _ := cmd.Flags().GetBool("save")
	withHistory, _ := cmd.Flags().GetBool("history")
	historyLimit, _ := cmd.Flags().GetInt("history-limit")

	if confidence <= 0 || confidence >= 1 {
		return fmt.Errorf("confidence level must be between 0 and 1 (e.g., 0.95 for 95%%)")
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	current, baseline, err := resolveRunPair(store, suiteName, baselineTS, currentTS)
	if err != nil {
		return err
	}

	slog.Info("comparing suite runs",
		"suite", suiteName,
		"baseline", baseline.Timestamp,
		"current", current.Timestamp)

	result := buildComparisonReport(baseline, current, confidence)
	result.SuiteName = suiteName

	if save {
		meta := map[string]string{}
		for _, pc := range result.Pairs {
			if err := store.SaveComparison(baseline.ID, current.ID, pc.BenchFullName, pc.Comparison, meta); err != nil {
				slog.Warn("failed to save comparison", "benchmark", pc.BenchFullName, "lang", pc.Lang, "error", err)
			}
		}
	}

	if withHistory {
		attachTrends(store, result, historyLimit)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode comparison report: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\nComparison Summary\n")
	fmt.Fprintf(os.Stderr, "Total:        %d\n", len(result.Pairs))
	fmt.Fprintf(os.Stderr, "Regressions:  %d\n", result.RegressionCount)
	fmt.Fprintf(os.Stderr, "Improvements: %d\n", result.ImprovementCount)
	fmt.Fprintf(os.Stderr, "Significant:  %d\n", result.SignificantCount)

	if result.RegressionCount > 0 {
		fmt.Fprintf(os.Stderr, "\nperformance regressions detected:\n")
		for _, pc := range result.Pairs {
			if pc.Comparison.Winner == measurement.First {
				fmt.Fprintf(os.Stderr, "  - %s [%s]: %s\n", pc.BenchFullName, pc.Lang, pc.Comparison.SpeedupDescription())
			}
		}
		return fmt.Errorf("performance regressions detected (%d)", result.RegressionCount)
	}

	return nil
}

// comparisonPair is one (benchmark, language) comparison between two
// suite runs, flattened for JSON output.
type comparisonPair struct {
	BenchFullName string                  `json:"bench_full_name"`
	Lang          string                  `json:"lang"`
	Comparison    *measurement.Comparison `json:"comparison"`
	Significant   bool                    `json:"significant"`
	PValue        float64                 `json:"p_value"`
	Trend         *analyzer.TrendResult   `json:"trend,omitempty"`
	Anomalies     []*analyzer.Anomaly     `json:"anomalies,omitempty"`
}

// attachTrends fills in each pair's Trend/Anomalies from the comparison
// history table, independent of the current baseline/current pair being
// reported. A pair with fewer than the analyzer's minimum data points is
// left without a trend rather than erroring the whole comparison.
func attachTrends(store *storage.SQLiteStorage, result *comparisonReport, limit int) {
	ta := analyzer.NewBasicTrendAnalyzer()
	for i := range result.Pairs {
		pc := &result.Pairs[i]
		hist, err := store.GetComparisonHistory(pc.BenchFullName, pc.Lang, limit)
		if err != nil {
			slog.Warn("failed to load comparison history", "benchmark", pc.BenchFullName, "lang", pc.Lang, "error", err)
			continue
		}
		if len(hist) >= ta.MinDataPoints {
			if trend, err := ta.CalculateTrend(hist, ta.MinDataPoints); err == nil {
				pc.Trend = trend
			}
		}
		pc.Anomalies = ta.DetectAnomalies(hist, ta.ZScoreThreshold)
	}
}

// comparisonReport is the full baseline-vs-current comparison result.
type comparisonReport struct {
	SuiteName        string           `json:"suite_name"`
	BaselineRunID    int64            `json:"baseline_run_id"`
	CurrentRunID     int64            `json:"current_run_id"`
	Pairs            []comparisonPair `json:"pairs"`
	RegressionCount  int              `json:"regression_count"`
	ImprovementCount int              `json:"improvement_count"`
	SignificantCount int              `json:"significant_count"`
}

// resolveRunPair picks the current and baseline suite runs to compare.
// Explicit timestamps win; otherwise current defaults to the latest run
// and baseline to the run immediately before it.
func resolveRunPair(store *storage.SQLiteStorage, suiteName, baselineTS, currentTS string) (current, baseline *storage.SuiteRun, err error) {
	if currentTS != "" {
		ts, perr := time.Parse(time.RFC3339, currentTS)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid --current timestamp: %w", perr)
		}
		current, err = store.GetByTimestamp(suiteName, ts)
	} else {
		current, err = store.GetLatest(suiteName)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load current run: %w", err)
	}
	if current == nil {
		return nil, nil, fmt.Errorf("no suite runs found for %q", suiteName)
	}

	if baselineTS != "" {
		ts, perr := time.Parse(time.RFC3339, baselineTS)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid --baseline timestamp: %w", perr)
		}
		baseline, err = store.GetByTimestamp(suiteName, ts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load baseline run: %w", err)
		}
		if baseline == nil {
			return nil, nil, fmt.Errorf("no suite run found at baseline timestamp %s", baselineTS)
		}
		return current, baseline, nil
	}

	runs, err := store.GetRange(suiteName, time.Time{}, current.Timestamp)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load run history: %w", err)
	}
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i].ID != current.ID {
			return current, runs[i], nil
		}
	}
	return nil, nil, fmt.Errorf("no baseline run available before %s; pass --baseline explicitly", current.Timestamp)
}

// buildComparisonReport matches measurements between baseline and current
// by (bench name, language) and computes a Comparison plus a significance
// test for each matched pair.
func buildComparisonReport(baseline, current *storage.SuiteRun, confidence float64) *comparisonReport {
	baselineByKey := make(map[string]*storage.StoredMeasurement, len(baseline.Measurements))
	for _, m := range baseline.Measurements {
		baselineByKey[m.BenchFullName+"\x00"+m.Lang] = m
	}

	report := &comparisonReport{
		BaselineRunID: baseline.ID,
		CurrentRunID:  current.ID,
	}

	for _, cur := range current.Measurements {
		base, ok := baselineByKey[cur.BenchFullName+"\x00"+cur.Lang]
		if !ok {
			continue
		}

		baseM := base.ToMeasurement()
		curM := cur.ToMeasurement()
		// SecondLang carries the real language name (not a "current"
		// placeholder) so a saved comparison's stored language column
		// matches what GetComparisonHistory/attachTrends later query by.
		comp := measurement.NewComparison(cur.BenchFullName, baseM, "baseline", curM, cur.Lang)
		significant, pValue := measurement.GetSignificance(baseM, curM, confidence)

		pair := comparisonPair{
			BenchFullName: cur.BenchFullName,
			Lang:          cur.Lang,
			Comparison:    comp,
			Significant:   significant,
			PValue:        pValue,
		}
		report.Pairs = append(report.Pairs, pair)

		switch comp.Winner {
		case measurement.First:
			report.RegressionCount++
		case measurement.Second:
			report.ImprovementCount++
		}
		if significant {
			report.SignificantCount++
		}
	}

	return report
}
