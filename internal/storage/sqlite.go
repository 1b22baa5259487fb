package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage implements Storage using SQLite, grounded on the
// teacher's own sqlite.go — same transaction-per-save shape and
// suites/results table split, adapted to persist measurement.Measurement
// fields (percentiles, ops/sec, alloc stats) instead of the teacher's
// mean/median/min/max/stddev columns.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SQLiteStorage{db: db, path: path}, nil
}

// Init initializes the database schema.
func (s *SQLiteStorage) Init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS suite_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		suite_name TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		duration_ns INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_suite_runs_name_ts ON suite_runs(suite_name, timestamp);

	CREATE TABLE IF NOT EXISTS measurements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		suite_run_id INTEGER NOT NULL,
		bench_full_name TEXT NOT NULL,
		lang TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		iterations INTEGER NOT NULL,
		nanos_per_op REAL NOT NULL,
		ops_per_sec REAL NOT NULL,
		min_nanos INTEGER,
		max_nanos INTEGER,
		p50_nanos INTEGER,
		p99_nanos INTEGER,
		bytes_per_op INTEGER,
		allocs_per_op INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (suite_run_id) REFERENCES suite_runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_measurements_suite_run_id ON measurements(suite_run_id);
	CREATE INDEX IF NOT EXISTS idx_measurements_bench_lang ON measurements(bench_full_name, lang);
	CREATE INDEX IF NOT EXISTS idx_measurements_timestamp ON measurements(timestamp);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return s.InitComparisonHistory()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists a suite run and all its measurements in one transaction.
func (s *SQLiteStorage) Save(run *SuiteRun) error {
	if run == nil {
		return fmt.Errorf("suite run cannot be nil")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`
		INSERT INTO suite_runs (suite_name, timestamp, duration_ns)
		VALUES (?, ?, ?)
	`, run.SuiteName, run.Timestamp, run.DurationNs)
	if err != nil {
		return fmt.Errorf("failed to insert suite run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get suite run ID: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO measurements (
			suite_run_id, bench_full_name, lang, timestamp,
			iterations, nanos_per_op, ops_per_sec,
			min_nanos, max_nanos, p50_nanos, p99_nanos,
			bytes_per_op, allocs_per_op
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range run.Measurements {
		_, err := stmt.Exec(
			runID, m.BenchFullName, m.Lang, m.Timestamp,
			m.Iterations, m.NanosPerOp, m.OpsPerSec,
			m.MinNanos, m.MaxNanos, m.P50Nanos, m.P99Nanos,
			m.BytesPerOp, m.AllocsPerOp,
		)
		if err != nil {
			return fmt.Errorf("failed to insert measurement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent suite run for suiteName.
func (s *SQLiteStorage) GetLatest(suiteName string) (*SuiteRun, error) {
	row := s.db.QueryRow(`
		SELECT id, suite_name, timestamp, duration_ns
		FROM suite_runs
		WHERE suite_name = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`, suiteName)

	var run SuiteRun
	err := row.Scan(&run.ID, &run.SuiteName, &run.Timestamp, &run.DurationNs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest suite run: %w", err)
	}

	return s.loadMeasurements(&run)
}

// GetByTimestamp retrieves a suite run by exact timestamp.
func (s *SQLiteStorage) GetByTimestamp(suiteName string, timestamp time.Time) (*SuiteRun, error) {
	row := s.db.QueryRow(`
		SELECT id, suite_name, timestamp, duration_ns
		FROM suite_runs
		WHERE suite_name = ? AND timestamp = ?
		LIMIT 1
	`, suiteName, timestamp)

	var run SuiteRun
	err := row.Scan(&run.ID, &run.SuiteName, &run.Timestamp, &run.DurationNs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query suite run by timestamp: %w", err)
	}

	return s.loadMeasurements(&run)
}

// GetRange retrieves suite runs within a time range.
func (s *SQLiteStorage) GetRange(suiteName string, start, end time.Time) ([]*SuiteRun, error) {
	rows, err := s.db.Query(`
		SELECT id, suite_name, timestamp, duration_ns
		FROM suite_runs
		WHERE suite_name = ? AND timestamp BETWEEN ? AND ?
		ORDER BY timestamp ASC
	`, suiteName, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query suite run range: %w", err)
	}
	defer rows.Close()

	var runs []*SuiteRun
	for rows.Next() {
		var run SuiteRun
		if err := rows.Scan(&run.ID, &run.SuiteName, &run.Timestamp, &run.DurationNs); err != nil {
			return nil, fmt.Errorf("failed to scan suite run: %w", err)
		}
		loaded, err := s.loadMeasurements(&run)
		if err != nil {
			return nil, err
		}
		runs = append(runs, loaded)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return runs, nil
}

// GetHistory retrieves historical measurements for one (benchmark,
// language) pair, most recent first.
func (s *SQLiteStorage) GetHistory(benchFullName, lang string, limit int) ([]*StoredMeasurement, error) {
	query := `
		SELECT bench_full_name, lang, timestamp, iterations, nanos_per_op, ops_per_sec,
		       min_nanos, max_nanos, p50_nanos, p99_nanos, bytes_per_op, allocs_per_op
		FROM measurements
		WHERE bench_full_name = ? AND lang = ?
		ORDER BY timestamp DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query, benchFullName, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark history: %w", err)
	}
	defer rows.Close()

	return scanMeasurements(rows)
}

// Cleanup removes suite runs older than retentionDays together with their
// measurements. The connection does not turn on SQLite's foreign_keys
// pragma, so the schema's ON DELETE CASCADE does not fire; the
// measurements are deleted explicitly first.
func (s *SQLiteStorage) Cleanup(retentionDays int) error {
	if retentionDays <= 0 {
		return fmt.Errorf("retention days must be positive")
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	if _, err := s.db.Exec(`DELETE FROM measurements WHERE suite_run_id IN (SELECT id FROM suite_runs WHERE timestamp < ?)`, cutoff); err != nil {
		return fmt.Errorf("failed to cleanup old measurements: %w", err)
	}
	_, err := s.db.Exec(`DELETE FROM suite_runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup old records: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) loadMeasurements(run *SuiteRun) (*SuiteRun, error) {
	rows, err := s.db.Query(`
		SELECT bench_full_name, lang, timestamp, iterations, nanos_per_op, ops_per_sec,
		       min_nanos, max_nanos, p50_nanos, p99_nanos, bytes_per_op, allocs_per_op
		FROM measurements
		WHERE suite_run_id = ?
		ORDER BY bench_full_name, lang
	`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	measurements, err := scanMeasurements(rows)
	if err != nil {
		return nil, err
	}
	run.Measurements = measurements
	return run, nil
}

func scanMeasurements(rows *sql.Rows) ([]*StoredMeasurement, error) {
	var out []*StoredMeasurement
	for rows.Next() {
		var m StoredMeasurement
		err := rows.Scan(
			&m.BenchFullName, &m.Lang, &m.Timestamp, &m.Iterations, &m.NanosPerOp, &m.OpsPerSec,
			&m.MinNanos, &m.MaxNanos, &m.P50Nanos, &m.P99Nanos, &m.BytesPerOp, &m.AllocsPerOp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measurements: %w", err)
	}
	return out, nil
}
