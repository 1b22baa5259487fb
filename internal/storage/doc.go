// Package storage provides persistent storage for benchmark results using SQLite.
//
// # Overview
//
// The storage package implements historical tracking of benchmark results in SQLite,
// enabling trend analysis, baseline comparison, and long-term performance monitoring.
//
// # Features
//
//   - SQLite-based persistent storage
//   - Historical result tracking with timestamps
//   - Query by timestamp, range, or benchmark name
//   - On-demand cleanup of old records (Cleanup)
//   - Foreign keys declared in the schema (not enforced: the connection
//     leaves SQLite's foreign_keys pragma off)
//   - Indexed queries for fast retrieval
//
// # Usage
//
// Basic storage operations:
//
//	// Create storage instance
//	storage, err := storage.NewSQLiteStorage("./polybench.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer storage.Close()
//
//	// Initialize schema
//	if err := storage.Init(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save aggregated results
//	if err := storage.Save(suite); err != nil {
//	    log.Fatal(err)
//	}
//
// Retrieving historical data:
//
//	// Get most recent suite run
//	latest, err := storage.GetLatest("evm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Get suite by specific timestamp
//	suite, err := storage.GetByTimestamp("evm", timestamp)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Get suites within time range
//	start := time.Now().AddDate(0, 0, -7) // Last 7 days
//	end := time.Now()
//	suites, err := storage.GetRange("evm", start, end)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Benchmark history tracking:
//
//	// Get history for specific benchmark
//	history, err := storage.GetHistory("bench_sort", "go", 10) // Last 10 runs
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Analyze trend
//	for _, result := range history {
//	    fmt.Printf("%s: %.2fns/op\n", result.Timestamp, result.NanosPerOp)
//	}
//
// Cleanup old records:
//
//	// Remove records older than 90 days
//	if err := storage.Cleanup(90); err != nil {
//	    log.Fatal(err)
//	}
//
// # Database Schema
//
// ## suite_runs table
//
//	CREATE TABLE suite_runs (
//	    id INTEGER PRIMARY KEY AUTOINCREMENT,
//	    suite_name TEXT NOT NULL,
//	    timestamp DATETIME NOT NULL,
//	    duration_ns INTEGER NOT NULL,
//	    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
//	);
//
// ## measurements table
//
//	CREATE TABLE measurements (
//	    id INTEGER PRIMARY KEY AUTOINCREMENT,
//	    suite_run_id INTEGER NOT NULL,
//	    bench_full_name TEXT NOT NULL,
//	    lang TEXT NOT NULL,
//	    timestamp DATETIME NOT NULL,
//	    iterations INTEGER NOT NULL,
//	    nanos_per_op REAL NOT NULL,
//	    ops_per_sec REAL NOT NULL,
//	    min_nanos INTEGER,
//	    max_nanos INTEGER,
//	    p50_nanos INTEGER,
//	    p99_nanos INTEGER,
//	    bytes_per_op INTEGER,
//	    allocs_per_op INTEGER,
//	    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
//	    FOREIGN KEY (suite_run_id) REFERENCES suite_runs(id) ON DELETE CASCADE
//	);
//
// # Indexes
//
// The following indexes are created for query optimization:
//
//   - suite_runs(suite_name, timestamp) - fast GetLatest/GetByTimestamp/GetRange
//   - measurements.suite_run_id - fast join with suite_runs
//   - measurements(bench_full_name, lang) - fast GetHistory queries
//   - measurements.timestamp - fast time-based queries
//
// # Data Model
//
// Each benchmark run creates:
//   - 1 suite_runs record (suite name, timestamp, duration)
//   - N measurements records (one per benchmark per language, already
//     merged across that benchmark's repeated runs — see
//     measurement.MergeRuns)
//
// Measurements are linked to suite_runs via a foreign key declared with
// ON DELETE CASCADE. The connection does not turn on SQLite's
// foreign_keys pragma, so the constraint is not enforced; Cleanup deletes
// a run's measurements itself.
//
// # Query Performance
//
// Typical query performance on standard hardware:
//
//   - GetLatest: <1ms
//   - GetByTimestamp: <1ms
//   - GetRange (100 suites): ~10ms
//   - GetHistory (1000 results): ~20ms
//   - Save (10 results): ~5ms
//
// # Storage Size
//
// Approximate storage requirements:
//
//   - Suite record: ~100 bytes
//   - Result record: ~150 bytes
//   - 1000 suites × 10 results: ~1.5 MB
//   - 10000 suites × 10 results: ~15 MB
//
// # Thread Safety
//
// SQLiteStorage uses database/sql which provides connection pooling and
// is safe for concurrent use from multiple goroutines.
//
// However, SQLite itself has limitations with concurrent writes. For high-
// concurrency scenarios, consider:
//
//   - WAL mode: PRAGMA journal_mode=WAL
//   - Connection pool tuning
//   - External queue for writes
//
// # Transactions
//
// The Save method uses transactions to ensure atomicity:
//
//   - BEGIN TRANSACTION
//   - INSERT suite
//   - INSERT all results
//   - COMMIT
//
// If any step fails, the entire operation is rolled back.
//
// # Data Retention
//
// Use the Cleanup method to implement data retention policies:
//
//	// Daily cleanup job
//	ticker := time.NewTicker(24 * time.Hour)
//	go func() {
//	    for range ticker.C {
//	        if err := storage.Cleanup(90); err != nil {
//	            log.Printf("Cleanup failed: %v", err)
//	        }
//	    }
//	}()
//
// # Migration
//
// The Init method is idempotent and safe to call multiple times. It uses
// CREATE TABLE IF NOT EXISTS for schema creation.
//
// For schema changes, implement migrations manually:
//
//	ALTER TABLE measurements ADD COLUMN new_field TEXT;
//
// # Backup
//
// To backup the database:
//
//	// Close connections first
//	storage.Close()
//
//	// Copy the database file
//	cp polybench.db polybench_backup.db
//
//	// Reopen storage
//	storage, _ = storage.NewSQLiteStorage("polybench.db")
//	storage.Init()
//
// Or use SQLite's BACKUP API for online backups.
package storage
