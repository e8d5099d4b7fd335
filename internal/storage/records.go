package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/matsen/topictrace/internal/dataset"
)

// RebuildFromTSV clears both record tables and reloads them from the ds-1 and
// ds-2 files in one transaction. On error the previous contents are kept.
func (d *DB) RebuildFromTSV(ds1Path, ds2Path string) (Counts, error) {
	cocitations, err := dataset.ReadCoCitations(ds1Path)
	if err != nil {
		return Counts{}, fmt.Errorf("reading ds-1: %w", err)
	}
	collaborations, err := dataset.ReadCollaborations(ds2Path)
	if err != nil {
		return Counts{}, fmt.Errorf("reading ds-2: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return Counts{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cocitations"); err != nil {
		return Counts{}, fmt.Errorf("clearing cocitations table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM collaborations"); err != nil {
		return Counts{}, fmt.Errorf("clearing collaborations table: %w", err)
	}

	if err := insertCoCitations(tx, cocitations); err != nil {
		return Counts{}, err
	}
	if err := insertCollaborations(tx, collaborations); err != nil {
		return Counts{}, err
	}
	if err := writeMeta(tx, ds1Path, ds2Path); err != nil {
		return Counts{}, err
	}

	if err := tx.Commit(); err != nil {
		return Counts{}, fmt.Errorf("committing rebuild: %w", err)
	}
	return Counts{CoCitations: len(cocitations), Collaborations: len(collaborations)}, nil
}

func insertCoCitations(tx *sql.Tx, records []dataset.CoCitation) error {
	stmt, err := tx.Prepare(`
		INSERT INTO cocitations (seq, year, key1, key2, authors_json)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing cocitations insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range records {
		authorsJSON, err := json.Marshal(c.Authors)
		if err != nil {
			return fmt.Errorf("marshaling authors for %s/%s: %w", c.Key1, c.Key2, err)
		}
		if _, err := stmt.Exec(i, c.Year, c.Key1, c.Key2, string(authorsJSON)); err != nil {
			return fmt.Errorf("inserting cocitation %s/%s: %w", c.Key1, c.Key2, err)
		}
	}
	return nil
}

func insertCollaborations(tx *sql.Tx, records []dataset.Collaboration) error {
	stmt, err := tx.Prepare(`
		INSERT INTO collaborations (seq, year, author1, author2, count)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing collaborations insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range records {
		if _, err := stmt.Exec(i, c.Year, c.Author1, c.Author2, c.Count); err != nil {
			return fmt.Errorf("inserting collaboration %s/%s: %w", c.Author1, c.Author2, err)
		}
	}
	return nil
}

// CoCitationsByYear returns the ds-1 records of a year in file order.
func (d *DB) CoCitationsByYear(year int) ([]dataset.CoCitation, error) {
	rows, err := d.db.Query(`
		SELECT year, key1, key2, authors_json
		FROM cocitations
		WHERE year = ?
		ORDER BY seq
	`, year)
	if err != nil {
		return nil, fmt.Errorf("querying cocitations for %d: %w", year, err)
	}
	defer rows.Close()

	var out []dataset.CoCitation
	for rows.Next() {
		var c dataset.CoCitation
		var authorsJSON string
		if err := rows.Scan(&c.Year, &c.Key1, &c.Key2, &authorsJSON); err != nil {
			return nil, fmt.Errorf("scanning cocitation: %w", err)
		}
		if err := json.Unmarshal([]byte(authorsJSON), &c.Authors); err != nil {
			return nil, fmt.Errorf("unmarshaling authors for %s/%s: %w", c.Key1, c.Key2, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CollaborationsByYear returns the ds-2 records of a year in file order.
func (d *DB) CollaborationsByYear(year int) ([]dataset.Collaboration, error) {
	rows, err := d.db.Query(`
		SELECT year, author1, author2, count
		FROM collaborations
		WHERE year = ?
		ORDER BY seq
	`, year)
	if err != nil {
		return nil, fmt.Errorf("querying collaborations for %d: %w", year, err)
	}
	defer rows.Close()

	var out []dataset.Collaboration
	for rows.Next() {
		var c dataset.Collaboration
		if err := rows.Scan(&c.Year, &c.Author1, &c.Author2, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning collaboration: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
