// Package storage keeps an ephemeral SQLite cache of the ds-1 and ds-2 records,
// indexed by year. The TSV files stay the source of truth; the cache is rebuilt
// from them with RebuildFromTSV.
//
// Persisted runs are appended to a JSONL history next to the trace logs.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- ds-1: keyword pairs co-cited in a year
		CREATE TABLE IF NOT EXISTS cocitations (
			seq INTEGER PRIMARY KEY,
			year INTEGER NOT NULL,
			key1 TEXT NOT NULL,
			key2 TEXT NOT NULL,
			authors_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_cocitations_year ON cocitations(year);

		-- ds-2: author pairs who collaborated in a year
		CREATE TABLE IF NOT EXISTS collaborations (
			seq INTEGER PRIMARY KEY,
			year INTEGER NOT NULL,
			author1 TEXT NOT NULL,
			author2 TEXT NOT NULL,
			count REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_collaborations_year ON collaborations(year);

		-- Where the cache was loaded from
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Counts is the number of cached records per table.
type Counts struct {
	CoCitations    int `json:"cocitations"`
	Collaborations int `json:"collaborations"`
}

// Info describes the last rebuild.
type Info struct {
	DS1Path   string `json:"ds1_path"`
	DS2Path   string `json:"ds2_path"`
	RebuiltAt string `json:"rebuilt_at"`
	Counts    Counts `json:"counts"`
}

// Counts returns the number of cached records per table.
func (d *DB) Counts() (Counts, error) {
	var c Counts
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM cocitations`).Scan(&c.CoCitations); err != nil {
		return c, fmt.Errorf("counting cocitations: %w", err)
	}
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM collaborations`).Scan(&c.Collaborations); err != nil {
		return c, fmt.Errorf("counting collaborations: %w", err)
	}
	return c, nil
}

// Info returns the source paths and time of the last rebuild along with the
// current counts. Fields are empty when the cache was never built.
func (d *DB) Info() (Info, error) {
	var info Info
	rows, err := d.db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return info, fmt.Errorf("querying meta: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return info, fmt.Errorf("scanning meta: %w", err)
		}
		switch key {
		case "ds1_path":
			info.DS1Path = value
		case "ds2_path":
			info.DS2Path = value
		case "rebuilt_at":
			info.RebuiltAt = value
		}
	}
	if err := rows.Err(); err != nil {
		return info, fmt.Errorf("iterating meta: %w", err)
	}

	info.Counts, err = d.Counts()
	return info, err
}

// Years returns every year present in either table, ascending.
func (d *DB) Years() ([]int, error) {
	rows, err := d.db.Query(`
		SELECT year FROM cocitations
		UNION
		SELECT year FROM collaborations
		ORDER BY year
	`)
	if err != nil {
		return nil, fmt.Errorf("querying years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scanning year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func writeMeta(tx *sql.Tx, ds1Path, ds2Path string) error {
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing meta insert: %w", err)
	}
	defer stmt.Close()

	for _, kv := range [][2]string{
		{"ds1_path", ds1Path},
		{"ds2_path", ds2Path},
		{"rebuilt_at", time.Now().UTC().Format(time.RFC3339)},
	} {
		if _, err := stmt.Exec(kv[0], kv[1]); err != nil {
			return fmt.Errorf("writing meta %s: %w", kv[0], err)
		}
	}
	return nil
}
