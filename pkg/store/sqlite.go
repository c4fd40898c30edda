package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite via the CGO-free driver.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AddSignature stores a signature record.
func (s *SQLiteStore) AddSignature(rec *SignatureRecord) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO signatures (gid, sid, rev, proto, action, message, classification, priority, rule_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Gid,
		rec.Sid,
		rec.Rev,
		rec.Proto,
		rec.Action,
		rec.Message,
		rec.Classification,
		rec.Priority,
		rec.RuleIndex,
	)
	if err != nil {
		return fmt.Errorf("inserting signature: %w", err)
	}
	return nil
}

// SetSummary stores the session summary.
func (s *SQLiteStore) SetSummary(sum Summary) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO summary (id, rule_count, detect_rule_count, builtin_rule_count, otn_count, head_count)
		VALUES (1, ?, ?, ?, ?, ?)
	`,
		sum.RuleCount,
		sum.DetectRuleCount,
		sum.BuiltinRuleCount,
		sum.OtnCount,
		sum.HeadCount,
	)
	if err != nil {
		return fmt.Errorf("inserting summary: %w", err)
	}
	return nil
}

// Signatures retrieves all stored signatures ordered by (gid, sid).
func (s *SQLiteStore) Signatures() ([]*SignatureRecord, error) {
	rows, err := s.db.Query(`
		SELECT gid, sid, rev, proto, action, message, classification, priority, rule_index
		FROM signatures ORDER BY gid, sid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying signatures: %w", err)
	}
	defer rows.Close()

	var out []*SignatureRecord
	for rows.Next() {
		rec := &SignatureRecord{}
		if err := rows.Scan(&rec.Gid, &rec.Sid, &rec.Rev, &rec.Proto, &rec.Action,
			&rec.Message, &rec.Classification, &rec.Priority, &rec.RuleIndex); err != nil {
			return nil, fmt.Errorf("scanning signature: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetSummary retrieves the stored summary.
func (s *SQLiteStore) GetSummary() (Summary, error) {
	var sum Summary
	err := s.db.QueryRow(`
		SELECT rule_count, detect_rule_count, builtin_rule_count, otn_count, head_count
		FROM summary WHERE id = 1
	`).Scan(&sum.RuleCount, &sum.DetectRuleCount, &sum.BuiltinRuleCount, &sum.OtnCount, &sum.HeadCount)
	if err == sql.ErrNoRows {
		return Summary{}, nil
	}
	if err != nil {
		return Summary{}, fmt.Errorf("querying summary: %w", err)
	}
	return sum, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
