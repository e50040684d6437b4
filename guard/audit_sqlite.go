package guard

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteSink persists audit entries to a local SQLite database. It exists
// for hosts that want a queryable trail outliving the process.
type SQLiteSink struct {
	dsn string

	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteSink(dsn string) (*SQLiteSink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("missing sqlite dsn")
	}
	s := &SQLiteSink{dsn: dsn}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSink) Emit(ctx context.Context, e Entry) error {
	if s == nil {
		return fmt.Errorf("nil audit sink")
	}
	if err := s.ensureOpen(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO audit_entries (
  ts_unix, session_id, action, actor, repo, backend,
  decision, outcome, duration_ms, error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, e.Timestamp.UTC().Unix(), e.SessionID, e.Action, e.Actor, e.Repo, e.Backend,
		string(e.Decision), string(e.Outcome), e.DurationMs, e.Error,
	)
	return err
}

func (s *SQLiteSink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *SQLiteSink) open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.dsn)
	if err != nil {
		return err
	}
	s.db = db
	return s.migrate()
}

func (s *SQLiteSink) ensureOpen() error {
	if s.db != nil {
		return nil
	}
	return s.open()
}

func (s *SQLiteSink) migrate() error {
	if s.db == nil {
		return fmt.Errorf("sqlite db is not open")
	}
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS audit_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts_unix INTEGER NOT NULL,
  session_id TEXT,
  action TEXT NOT NULL,
  actor TEXT,
  repo TEXT,
  backend TEXT,
  decision TEXT NOT NULL,
  outcome TEXT NOT NULL,
  duration_ms INTEGER,
  error TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_entries_session ON audit_entries(session_id);
`)
	return err
}
