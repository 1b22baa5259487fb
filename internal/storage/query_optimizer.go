package storage

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// QueryCache caches storage query results with a per-entry TTL, grounded
// on the teacher's own query_optimizer.go cache.
type QueryCache struct {
	maxSize int
	items   map[string]*queryCacheItem
	order   []string
	mu      sync.RWMutex
}

type queryCacheItem struct {
	data      interface{}
	expiresAt time.Time
	key       string
}

// QueryOptimizer wraps a *sql.DB with a cached read path for the
// latest-suite-run and history queries, which are hit repeatedly by
// watch mode and CI dashboards.
type QueryOptimizer struct {
	db    *sql.DB
	cache *QueryCache
}

// NewQueryOptimizer creates a new query optimizer
func NewQueryOptimizer(db *sql.DB, cacheSize int) *QueryOptimizer {
	if cacheSize <= 0 {
		cacheSize = 100
	}
	return &QueryOptimizer{
		db:    db,
		cache: NewQueryCache(cacheSize),
	}
}

// GetLatestOptimized retrieves the latest suite run with caching.
func (qo *QueryOptimizer) GetLatestOptimized(suiteName string) (*SuiteRun, error) {
	cacheKey := "latest_suite:" + suiteName

	if cached, found := qo.cache.Get(cacheKey); found {
		if run, ok := cached.(*SuiteRun); ok {
			return run, nil
		}
	}

	row := qo.db.QueryRow(`
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

	loaded, err := loadMeasurementsOptimized(qo.db, &run)
	if err != nil {
		return nil, err
	}

	qo.cache.SetWithTTL(cacheKey, loaded, 1*time.Minute)

	return loaded, nil
}

// GetHistoryOptimized retrieves benchmark history with pagination and caching
func (qo *QueryOptimizer) GetHistoryOptimized(benchFullName, lang string, limit, offset int) ([]*StoredMeasurement, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	cacheKey := fmt.Sprintf("history:%s:%s:%d:%d", benchFullName, lang, limit, offset)

	if cached, found := qo.cache.Get(cacheKey); found {
		if results, ok := cached.([]*StoredMeasurement); ok {
			return results, nil
		}
	}

	rows, err := qo.db.Query(`
		SELECT bench_full_name, lang, timestamp, iterations, nanos_per_op, ops_per_sec,
		       min_nanos, max_nanos, p50_nanos, p99_nanos, bytes_per_op, allocs_per_op
		FROM measurements
		WHERE bench_full_name = ? AND lang = ?
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`, benchFullName, lang, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results, err := scanMeasurements(rows)
	if err != nil {
		return nil, err
	}

	qo.cache.SetWithTTL(cacheKey, results, 5*time.Minute)

	return results, nil
}

// ClearCache clears the query cache
func (qo *QueryOptimizer) ClearCache() {
	qo.cache.Clear()
}

// CacheStats returns cache statistics
func (qo *QueryOptimizer) CacheStats() (size int, maxSize int) {
	return qo.cache.Size(), qo.cache.MaxSize()
}

// NewQueryCache creates a new query cache
func NewQueryCache(maxSize int) *QueryCache {
	return &QueryCache{
		maxSize: maxSize,
		items:   make(map[string]*queryCacheItem),
		order:   make([]string, 0, maxSize),
	}
}

// Get retrieves a cached item if not expired
func (qc *QueryCache) Get(key string) (interface{}, bool) {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	item, found := qc.items[key]
	if !found {
		return nil, false
	}

	if time.Now().After(item.expiresAt) {
		return nil, false
	}

	return item.data, true
}

// Set stores an item in the cache with default TTL (1 minute)
func (qc *QueryCache) Set(key string, data interface{}) {
	qc.SetWithTTL(key, data, 1*time.Minute)
}

// SetWithTTL stores an item with a custom TTL
func (qc *QueryCache) SetWithTTL(key string, data interface{}, ttl time.Duration) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	if _, found := qc.items[key]; found {
		qc.items[key] = &queryCacheItem{
			data:      data,
			expiresAt: time.Now().Add(ttl),
			key:       key,
		}
		return
	}

	if len(qc.items) >= qc.maxSize {
		qc.evictOldest()
	}

	qc.items[key] = &queryCacheItem{
		data:      data,
		expiresAt: time.Now().Add(ttl),
		key:       key,
	}
	qc.order = append(qc.order, key)
}

func (qc *QueryCache) evictOldest() {
	if len(qc.order) == 0 {
		return
	}

	oldestKey := qc.order[0]
	delete(qc.items, oldestKey)
	qc.order = qc.order[1:]
}

// Clear removes all items
func (qc *QueryCache) Clear() {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	qc.items = make(map[string]*queryCacheItem)
	qc.order = make([]string, 0, qc.maxSize)
}

// Size returns the current number of items
func (qc *QueryCache) Size() int {
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	return len(qc.items)
}

// MaxSize returns the maximum cache size
func (qc *QueryCache) MaxSize() int {
	return qc.maxSize
}

func loadMeasurementsOptimized(db *sql.DB, run *SuiteRun) (*SuiteRun, error) {
	rows, err := db.Query(`
		SELECT bench_full_name, lang, timestamp, iterations, nanos_per_op, ops_per_sec,
		       min_nanos, max_nanos, p50_nanos, p99_nanos, bytes_per_op, allocs_per_op
		FROM measurements
		WHERE suite_run_id = ?
		ORDER BY bench_full_name, lang
	`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	measurements, err := scanMeasurements(rows)
	if err != nil {
		return nil, err
	}
	run.Measurements = measurements
	return run, nil
}
