package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	domainrepo "CorrScope/internal/domain/repository"
	applogger "CorrScope/pkg/logger"
)

// SQLiteRecorder keeps the computation audit trail in a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
	l  *applogger.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, l *applogger.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, l: l}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if l != nil {
		l.Info("sqlite recorder opened", applogger.String("path", dbPath))
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS compute_runs (
			id          TEXT PRIMARY KEY,
			symbol      TEXT NOT NULL,
			params_key  TEXT NOT NULL,
			trigger_by  TEXT NOT NULL,
			candidates  INTEGER,
			skipped     INTEGER,
			duration_ms INTEGER,
			started_at  INTEGER NOT NULL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON compute_runs(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON compute_runs(started_at)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(ctx context.Context, run domainrepo.ComputeRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO compute_runs
		(id, symbol, params_key, trigger_by, candidates, skipped, duration_ms, started_at, error)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Symbol, run.ParamsKey, run.Trigger,
		run.Candidates, run.Skipped, run.Duration.Milliseconds(),
		run.StartedAt.Unix(), run.Err,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	if r.l != nil {
		r.l.Info("closing sqlite recorder")
	}
	return r.db.Close()
}

// NoopRecorder is used when the audit trail is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (*NoopRecorder) RecordRun(context.Context, domainrepo.ComputeRun) error { return nil }
func (*NoopRecorder) Close() error                                           { return nil }
