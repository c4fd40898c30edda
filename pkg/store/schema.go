package store

import "database/sql"

// CreateSchema initializes the database tables if they do not exist.
func CreateSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS signatures (
			gid INTEGER NOT NULL,
			sid INTEGER NOT NULL,
			rev INTEGER NOT NULL,
			proto TEXT NOT NULL,
			action TEXT NOT NULL,
			message TEXT,
			classification TEXT,
			priority INTEGER NOT NULL DEFAULT 0,
			rule_index INTEGER NOT NULL,
			PRIMARY KEY (gid, sid)
		)`,
		`CREATE TABLE IF NOT EXISTS summary (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			rule_count INTEGER NOT NULL,
			detect_rule_count INTEGER NOT NULL,
			builtin_rule_count INTEGER NOT NULL,
			otn_count INTEGER NOT NULL,
			head_count INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signatures_rule_index ON signatures (rule_index)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
