package storage

import (
	"time"

	"github.com/jpequegn/polybench/internal/measurement"
)

// Storage defines the interface for benchmark result storage.
type Storage interface {
	Init() error
	Close() error

	// Save persists one suite run's measurements.
	Save(run *SuiteRun) error

	// GetLatest retrieves the most recently saved suite run.
	GetLatest(suiteName string) (*SuiteRun, error)

	// GetByTimestamp retrieves a suite run by exact timestamp.
	GetByTimestamp(suiteName string, timestamp time.Time) (*SuiteRun, error)

	// GetRange retrieves suite runs within a time range.
	GetRange(suiteName string, start, end time.Time) ([]*SuiteRun, error)

	// GetHistory retrieves historical measurements for one benchmark in
	// one language, most recent first.
	GetHistory(benchFullName, lang string, limit int) ([]*StoredMeasurement, error)

	// Cleanup removes records older than retentionDays.
	Cleanup(retentionDays int) error
}

// SuiteRun is one complete execution of a suite: every (benchmark,
// language) measurement produced by the scheduler in one run.
type SuiteRun struct {
	ID           int64
	SuiteName    string
	Timestamp    time.Time
	DurationNs   int64
	Measurements []*StoredMeasurement
}

// StoredMeasurement is one (benchmark, language) measurement row.
type StoredMeasurement struct {
	ID            int64
	SuiteRunID    int64
	BenchFullName string
	Lang          string
	Timestamp     time.Time

	Iterations  int64
	NanosPerOp  float64
	OpsPerSec   float64
	MinNanos    *int64
	MaxNanos    *int64
	P50Nanos    *int64
	P99Nanos    *int64
	BytesPerOp  *int64
	AllocsPerOp *int64
}

// ToMeasurement reconstructs a measurement.Measurement from the stored row.
func (sm *StoredMeasurement) ToMeasurement() *measurement.Measurement {
	return &measurement.Measurement{
		Iterations:  sm.Iterations,
		NanosPerOp:  sm.NanosPerOp,
		OpsPerSec:   sm.OpsPerSec,
		MinNanos:    sm.MinNanos,
		MaxNanos:    sm.MaxNanos,
		P50Nanos:    sm.P50Nanos,
		P99Nanos:    sm.P99Nanos,
		BytesPerOp:  sm.BytesPerOp,
		AllocsPerOp: sm.AllocsPerOp,
	}
}

// FromMeasurement builds a StoredMeasurement row from a fresh measurement.
func FromMeasurement(benchFullName, lang string, ts time.Time, m *measurement.Measurement) *StoredMeasurement {
	return &StoredMeasurement{
		BenchFullName: benchFullName,
		Lang:          lang,
		Timestamp:     ts,
		Iterations:    m.Iterations,
		NanosPerOp:    m.NanosPerOp,
		OpsPerSec:     m.OpsPerSec,
		MinNanos:      m.MinNanos,
		MaxNanos:      m.MaxNanos,
		P50Nanos:      m.P50Nanos,
		P99Nanos:      m.P99Nanos,
		BytesPerOp:    m.BytesPerOp,
		AllocsPerOp:   m.AllocsPerOp,
	}
}
