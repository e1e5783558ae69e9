package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/goliatone/go-commerce-store/errs"
	"go.uber.org/zap"
)

// livenessProbeTimeout bounds the ping issued by IsConnected so a stale
// liveness flag is never trusted but a dead store cannot stall callers.
const livenessProbeTimeout = 5 * time.Second

// Result reports the outcome of a write statement. LastInsertID is only
// populated for drivers that support it (sqlite does, postgres does not).
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// QueryRecord is one entry in the bounded query log.
type QueryRecord struct {
	Statement string
	At        time.Time
	Duration  time.Duration
}

// Stats summarizes connection manager activity.
type Stats struct {
	TotalQueries     uint64
	CachedStatements int
	LoggedQueries    int
}

// Manager owns a single logical connection to the backing store. It retries
// connection establishment with linear backoff, caches prepared-statement
// handles with bounded FIFO eviction, and exposes Query/Exec primitives with
// positional parameter binding. One Manager never dispatches queries in
// parallel over state it mutates; callers needing parallelism use a Pool.
type Manager struct {
	cfg    Config
	logger *zap.Logger

	mu           sync.Mutex
	db           *sql.DB
	stmts        map[string]*sql.Stmt
	stmtOrder    []string
	queryLog     []QueryRecord
	totalQueries uint64
}

// NewManager constructs a disconnected Manager. Call Connect before issuing
// statements. A nil logger is replaced with a no-op logger.
func NewManager(cfg Config, logger *zap.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		logger: logger,
		stmts:  make(map[string]*sql.Stmt),
	}, nil
}

// Connect establishes the store connection, retrying up to
// Config.RetryAttempts times with a backoff of attempt * RetryBaseDelay.
// It is a no-op when already connected. After exhausting retries it fails
// with a ConnectionError carrying the last underlying failure.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= m.cfg.RetryAttempts; attempt++ {
		m.logger.Info("connecting to store",
			zap.String("driver", m.cfg.Driver),
			zap.Int("attempt", attempt))

		db, err := m.open(ctx)
		if err == nil {
			m.db = db
			m.logger.Info("store connection established", zap.Int("attempt", attempt))
			return nil
		}
		lastErr = err
		m.logger.Warn("connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < m.cfg.RetryAttempts {
			if err := sleepCtx(ctx, time.Duration(attempt)*m.cfg.RetryBaseDelay); err != nil {
				return &errs.ConnectionError{Attempts: attempt, Err: err}
			}
		}
	}

	return &errs.ConnectionError{Attempts: m.cfg.RetryAttempts, Err: lastErr}
}

// open dials and verifies one connection. Caller holds the lock.
func (m *Manager) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(m.cfg.Driver, m.cfg.DSN)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectionTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Disconnect releases all cached statement handles, then the connection.
// Statement close failures are logged, not propagated. Calling Disconnect
// when already disconnected is a no-op.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}

	for _, sqlText := range m.stmtOrder {
		if stmt := m.stmts[sqlText]; stmt != nil {
			if err := stmt.Close(); err != nil {
				m.logger.Warn("failed to close cached statement",
					zap.String("statement", truncate(sqlText, 50)),
					zap.Error(err))
			}
		}
	}
	m.stmts = make(map[string]*sql.Stmt)
	m.stmtOrder = m.stmtOrder[:0]

	err := m.db.Close()
	m.db = nil
	m.logger.Info("store connection closed")
	return err
}

// IsConnected reports current liveness using a bounded probe rather than a
// stale flag.
func (m *Manager) IsConnected(ctx context.Context) bool {
	m.mu.Lock()
	db := m.db
	m.mu.Unlock()

	if db == nil {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, livenessProbeTimeout)
	defer cancel()
	return db.PingContext(probeCtx) == nil
}

// Query runs a read statement with positional parameters and materializes
// every result row. It fails with ErrNotConnected while disconnected and
// wraps store rejections in a QueryError without retrying.
func (m *Manager) Query(ctx context.Context, sqlText string, args ...any) ([]Row, error) {
	if !m.IsConnected(ctx) {
		return nil, errs.ErrNotConnected
	}

	stmt, err := m.statement(ctx, sqlText)
	if err != nil {
		return nil, &errs.QueryError{Statement: sqlText, Err: err}
	}

	queryCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectionTimeout)
	defer cancel()

	start := time.Now()
	rows, err := stmt.QueryContext(queryCtx, args...)
	if err != nil {
		m.recordQuery(sqlText, time.Since(start))
		return nil, &errs.QueryError{Statement: sqlText, Err: err}
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		m.recordQuery(sqlText, time.Since(start))
		return nil, &errs.QueryError{Statement: sqlText, Err: err}
	}

	m.recordQuery(sqlText, time.Since(start))
	return result, nil
}

// Exec runs a write statement with positional parameters and reports the
// affected row count. Failure semantics match Query.
func (m *Manager) Exec(ctx context.Context, sqlText string, args ...any) (Result, error) {
	if !m.IsConnected(ctx) {
		return Result{}, errs.ErrNotConnected
	}

	stmt, err := m.statement(ctx, sqlText)
	if err != nil {
		return Result{}, &errs.QueryError{Statement: sqlText, Err: err}
	}

	execCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectionTimeout)
	defer cancel()

	start := time.Now()
	res, err := stmt.ExecContext(execCtx, args...)
	if err != nil {
		m.recordQuery(sqlText, time.Since(start))
		return Result{}, &errs.QueryError{Statement: sqlText, Err: err}
	}

	out := Result{}
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}

	m.recordQuery(sqlText, time.Since(start))
	return out, nil
}

// Stats returns a snapshot of manager activity counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		TotalQueries:     m.totalQueries,
		CachedStatements: len(m.stmts),
		LoggedQueries:    len(m.queryLog),
	}
}

// QueryLog returns a copy of the bounded query log, oldest first.
func (m *Manager) QueryLog() []QueryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]QueryRecord(nil), m.queryLog...)
}

// statement resolves a prepared handle from the bounded cache, preparing and
// inserting on miss. When the cache is at capacity the oldest quarter of
// entries is closed and dropped first.
func (m *Manager) statement(ctx context.Context, sqlText string) (*sql.Stmt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil, errs.ErrNotConnected
	}
	if stmt, ok := m.stmts[sqlText]; ok {
		return stmt, nil
	}

	if len(m.stmts) >= m.cfg.StatementCacheSize {
		m.evictOldestStatements()
	}

	prepCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectionTimeout)
	defer cancel()

	// The cache stays keyed by the ? form callers write; only the prepared
	// text is rewritten for drivers that need $N markers.
	stmt, err := m.db.PrepareContext(prepCtx, rebindPlaceholders(m.cfg.Driver, sqlText))
	if err != nil {
		return nil, err
	}

	m.stmts[sqlText] = stmt
	m.stmtOrder = append(m.stmtOrder, sqlText)
	m.logger.Debug("statement cached",
		zap.String("statement", truncate(sqlText, 50)),
		zap.Int("cached", len(m.stmts)))
	return stmt, nil
}

// evictOldestStatements closes and drops the oldest quarter of cached
// handles, insertion order first. Caller holds the lock.
func (m *Manager) evictOldestStatements() {
	toRemove := m.cfg.StatementCacheSize / 4
	if toRemove < 1 {
		toRemove = 1
	}
	if toRemove > len(m.stmtOrder) {
		toRemove = len(m.stmtOrder)
	}

	for _, sqlText := range m.stmtOrder[:toRemove] {
		if stmt := m.stmts[sqlText]; stmt != nil {
			if err := stmt.Close(); err != nil {
				m.logger.Warn("failed to close evicted statement",
					zap.String("statement", truncate(sqlText, 50)),
					zap.Error(err))
			}
		}
		delete(m.stmts, sqlText)
	}
	m.stmtOrder = append([]string(nil), m.stmtOrder[toRemove:]...)
}

// recordQuery appends to the bounded query log, truncating the oldest half
// when the log exceeds its configured size. Every executed statement is
// recorded, failed ones included.
func (m *Manager) recordQuery(sqlText string, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalQueries++
	m.queryLog = append(m.queryLog, QueryRecord{
		Statement: sqlText,
		At:        time.Now(),
		Duration:  took,
	})
	if len(m.queryLog) > m.cfg.QueryLogSize {
		keep := m.cfg.QueryLogSize / 2
		m.queryLog = append([]QueryRecord(nil), m.queryLog[len(m.queryLog)-keep:]...)
	}

	m.logger.Debug("statement executed",
		zap.String("statement", truncate(sqlText, 50)),
		zap.Duration("took", took))
}

// scanRows materializes every row with named-column access.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
