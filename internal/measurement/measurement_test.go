package measurement

import "testing"

func TestFromSamples(t *testing.T) {
	m := FromSamples([]int64{100, 300, 200, 500, 400})

	if m.Iterations != 5 {
		t.Fatalf("expected 5 iterations, got %d", m.Iterations)
	}
	if *m.MinNanos != 100 {
		t.Errorf("expected min 100, got %d", *m.MinNanos)
	}
	if *m.MaxNanos != 500 {
		t.Errorf("expected max 500, got %d", *m.MaxNanos)
	}
	if m.NanosPerOp != 300 {
		t.Errorf("expected mean 300, got %f", m.NanosPerOp)
	}
	if m.OpsPerSec <= 0 {
		t.Errorf("expected positive ops/sec, got %f", m.OpsPerSec)
	}
}

func TestFromSamplesEmpty(t *testing.T) {
	m := FromSamples(nil)
	if m.Iterations != 0 {
		t.Errorf("expected zero iterations for empty samples, got %d", m.Iterations)
	}
}

func TestFromAggregate(t *testing.T) {
	m := FromAggregate(1000, 250.0)
	if m.Iterations != 1000 {
		t.Errorf("expected 1000 iterations, got %d", m.Iterations)
	}
	if m.NanosPerOp != 250.0 {
		t.Errorf("expected 250 ns/op, got %f", m.NanosPerOp)
	}
	if m.MinNanos != nil {
		t.Error("aggregate measurement should not have a min sample")
	}
}

func TestWithAllocs(t *testing.T) {
	m := FromAggregate(10, 5).WithAllocs(64, 2)
	if *m.BytesPerOp != 64 || *m.AllocsPerOp != 2 {
		t.Errorf("unexpected alloc stats: %+v %+v", m.BytesPerOp, m.AllocsPerOp)
	}
}

func TestPercentileClampsToLastIndex(t *testing.T) {
	m := FromSamples([]int64{1, 2, 3})
	if *m.P99Nanos != 3 {
		t.Errorf("expected p99 to clamp to max element 3, got %d", *m.P99Nanos)
	}
}

func TestMergeRunsSingleRunReturnedUnchanged(t *testing.T) {
	m := FromAggregate(100, 50)
	merged := MergeRuns([]*Measurement{m})
	if merged != m {
		t.Error("expected a single run to be returned unchanged")
	}
}

func TestMergeRunsSumsAggregateRuns(t *testing.T) {
	runs := []*Measurement{
		FromAggregate(1000, 100),
		FromAggregate(1000, 200),
		FromAggregate(1000, 300),
	}
	merged := MergeRuns(runs)

	if merged.Iterations != 3000 {
		t.Errorf("expected 3000 total iterations, got %d", merged.Iterations)
	}
	wantTotalNanos := int64(1000*100 + 1000*200 + 1000*300)
	if merged.TotalNanos != wantTotalNanos {
		t.Errorf("expected total nanos %d, got %d", wantTotalNanos, merged.TotalNanos)
	}
	wantNanosPerOp := float64(wantTotalNanos) / 3000
	if merged.NanosPerOp != wantNanosPerOp {
		t.Errorf("expected ns/op %f, got %f", wantNanosPerOp, merged.NanosPerOp)
	}
}

func TestMergeRunsConcatenatesSamples(t *testing.T) {
	runs := []*Measurement{
		FromSamples([]int64{100, 200}),
		FromSamples([]int64{300, 400}),
	}
	merged := MergeRuns(runs)

	if merged.Iterations != 4 {
		t.Fatalf("expected 4 merged iterations, got %d", merged.Iterations)
	}
	if *merged.MinNanos != 100 {
		t.Errorf("expected min 100, got %d", *merged.MinNanos)
	}
	if *merged.MaxNanos != 400 {
		t.Errorf("expected max 400, got %d", *merged.MaxNanos)
	}
}

func TestMergeRunsAveragesAllocs(t *testing.T) {
	runs := []*Measurement{
		FromAggregate(1000, 100).WithAllocs(10, 1),
		FromAggregate(1000, 100).WithAllocs(30, 3),
	}
	merged := MergeRuns(runs)

	if merged.BytesPerOp == nil || *merged.BytesPerOp != 20 {
		t.Errorf("expected averaged bytes/op 20, got %v", merged.BytesPerOp)
	}
	if merged.AllocsPerOp == nil || *merged.AllocsPerOp != 2 {
		t.Errorf("expected averaged allocs/op 2, got %v", merged.AllocsPerOp)
	}
}
