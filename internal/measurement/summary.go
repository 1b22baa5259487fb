package measurement

import "math"

// BenchmarkResult pairs a benchmark's full name with its per-language
// measurements, keyed by language string (internal/langs.Lang.String()).
type BenchmarkResult struct {
	FullName     string
	ByLang       map[string]*Measurement
	Comparisons  []*Comparison
}

// SuiteSummary rolls up every benchmark in a suite: per-benchmark
// comparisons plus an overall geometric-mean speedup per language pair,
// grounded on aggregator.go's calculateSuiteStats generalized from
// arithmetic to geometric mean (the right average for a set of ratios).
type SuiteSummary struct {
	SuiteName        string
	Results          []*BenchmarkResult
	GeoMeanSpeedups  map[string]float64 // "lang1/lang2" -> geometric mean speedup
	RegressionCount  int
	ImprovementCount int
}

// Summarize builds a SuiteSummary from a flat list of benchmark results,
// computing the geometric mean of First/Second speedups per language pair
// across all benchmarks that compared the same two languages. Speedup
// (not the signed Ratio) is what feeds the mean: it is always >= 1,
// normalized to whichever side actually won, so a 2x win and a 2x loss
// average to 2x rather than cancelling out to 1x.
func Summarize(suiteName string, results []*BenchmarkResult) *SuiteSummary {
	s := &SuiteSummary{
		SuiteName:       suiteName,
		Results:         results,
		GeoMeanSpeedups: make(map[string]float64),
	}

	speedupsByPair := make(map[string][]float64)
	for _, r := range results {
		for _, c := range r.Comparisons {
			key := c.FirstLang + "/" + c.SecondLang
			speedupsByPair[key] = append(speedupsByPair[key], c.Speedup)

			switch c.Winner {
			case First:
				// First (baseline side) was faster than Second: treat as
				// a regression of Second, the same orientation
				// compare.go and storage.SaveComparison use.
				s.RegressionCount++
			case Second:
				s.ImprovementCount++
			}
		}
	}

	for pair, speedups := range speedupsByPair {
		s.GeoMeanSpeedups[pair] = geometricMean(speedups)
	}

	return s
}

// geometricMean computes the nth root of the product of n speedups, the
// standard way to average a set of speedup factors without the bias
// arithmetic mean introduces.
func geometricMean(speedups []float64) float64 {
	if len(speedups) == 0 {
		return 1
	}
	logSum := 0.0
	for _, sp := range speedups {
		if sp <= 0 {
			continue
		}
		logSum += math.Log(sp)
	}
	return math.Exp(logSum / float64(len(speedups)))
}
