package measurement

import "testing"

func TestSummarizeGeoMean(t *testing.T) {
	results := []*BenchmarkResult{
		{
			FullName: "suite_benchA",
			Comparisons: []*Comparison{
				NewComparison("benchA", FromAggregate(1, 100), "go", FromAggregate(1, 200), "rust"),
			},
		},
		{
			FullName: "suite_benchB",
			Comparisons: []*Comparison{
				NewComparison("benchB", FromAggregate(1, 100), "go", FromAggregate(1, 50), "rust"),
			},
		},
	}

	summary := Summarize("suite", results)

	geoMean, ok := summary.GeoMeanSpeedups["go/rust"]
	if !ok {
		t.Fatal("expected a go/rust geometric mean entry")
	}
	// Ratios are 2.0 and 0.5, but both comparisons have a winner speedup
	// of 2.0x (benchA: go 2x faster than rust; benchB: rust 2x faster
	// than go), so the geometric mean of speedups is 2.0, not 1.0.
	if geoMean < 1.99 || geoMean > 2.01 {
		t.Errorf("expected geometric mean of speedups near 2.0, got %f", geoMean)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize("suite", nil)
	if len(summary.GeoMeanSpeedups) != 0 {
		t.Error("expected no speedup entries for an empty result set")
	}
}

func TestGeometricMeanSingleRatio(t *testing.T) {
	gm := geometricMean([]float64{4.0})
	if gm != 4.0 {
		t.Errorf("geometric mean of a single value should equal that value, got %f", gm)
	}
}
