package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"security-assistant/mail"
	"security-assistant/vetting"
)

// SQLiteStore persists history in a SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	limit int
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, limit int) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, limit: limit}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS domain_history (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			domain TEXT NOT NULL,
			status TEXT NOT NULL,
			score INTEGER NOT NULL,
			reasons_json TEXT NOT NULL,
			ts_unix_ns INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_domain_history_domain ON domain_history(domain, seq);`,
		`CREATE TABLE IF NOT EXISTS email_history (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			message_id TEXT,
			subject TEXT NOT NULL,
			is_spam INTEGER NOT NULL,
			matches_json TEXT NOT NULL,
			ts_unix_ns INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) AddDomain(ctx context.Context, v vetting.DomainVerdict) error {
	reasons, err := json.Marshal(nonNil(v.Reasons))
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO domain_history(id, domain, status, score, reasons_json, ts_unix_ns) VALUES(?,?,?,?,?,?);`,
		uuid.NewString(), domainKey(v.Domain), string(v.Status), v.Score, string(reasons), v.Timestamp.UTC().UnixNano(),
	); err != nil {
		return fmt.Errorf("insert domain: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM domain_history WHERE seq NOT IN (SELECT seq FROM domain_history ORDER BY seq DESC LIMIT ?);`,
		s.limit,
	); err != nil {
		return fmt.Errorf("trim domain history: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Domains(ctx context.Context, limit int) ([]DomainRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, domain, status, score, reasons_json, ts_unix_ns FROM domain_history ORDER BY seq DESC LIMIT ?;`,
		s.clamp(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query domains: %w", err)
	}
	defer rows.Close()

	out := []DomainRecord{}
	for rows.Next() {
		rec, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) LatestDomain(ctx context.Context, domain string) (DomainRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, domain, status, score, reasons_json, ts_unix_ns FROM domain_history WHERE domain = ? ORDER BY seq DESC LIMIT 1;`,
		domainKey(domain),
	)
	rec, err := scanDomain(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DomainRecord{}, ErrNotFound
	}
	return rec, err
}

func (s *SQLiteStore) AddEmail(ctx context.Context, r mail.Result) error {
	matches, err := json.Marshal(nonNil(r.Matches))
	if err != nil {
		return fmt.Errorf("marshal matches: %w", err)
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO email_history(id, message_id, subject, is_spam, matches_json, ts_unix_ns) VALUES(?,?,?,?,?,?);`,
		uuid.NewString(), r.MessageID, r.Subject, boolToInt(r.IsSpam), string(matches), r.Timestamp.UTC().UnixNano(),
	); err != nil {
		return fmt.Errorf("insert email: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM email_history WHERE seq NOT IN (SELECT seq FROM email_history ORDER BY seq DESC LIMIT ?);`,
		s.limit,
	); err != nil {
		return fmt.Errorf("trim email history: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Emails(ctx context.Context, limit int) ([]EmailRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, message_id, subject, is_spam, matches_json, ts_unix_ns FROM email_history ORDER BY seq DESC LIMIT ?;`,
		s.clamp(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query emails: %w", err)
	}
	defer rows.Close()

	out := []EmailRecord{}
	for rows.Next() {
		var (
			rec     EmailRecord
			spam    int
			matches string
			ts      int64
		)
		if err := rows.Scan(&rec.ID, &rec.MessageID, &rec.Subject, &spam, &matches, &ts); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		if err := json.Unmarshal([]byte(matches), &rec.Matches); err != nil {
			return nil, fmt.Errorf("decode matches: %w", err)
		}
		rec.IsSpam = spam != 0
		rec.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDomain(sc scanner) (DomainRecord, error) {
	var (
		rec     DomainRecord
		status  string
		reasons string
		ts      int64
	)
	if err := sc.Scan(&rec.ID, &rec.Domain, &status, &rec.Score, &reasons, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan domain: %w", err)
	}
	if err := json.Unmarshal([]byte(reasons), &rec.Reasons); err != nil {
		return rec, fmt.Errorf("decode reasons: %w", err)
	}
	rec.Status = vetting.Status(status)
	rec.Timestamp = time.Unix(0, ts).UTC()
	return rec, nil
}

func (s *SQLiteStore) clamp(limit int) int {
	if limit <= 0 || limit > s.limit {
		return s.limit
	}
	return limit
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
