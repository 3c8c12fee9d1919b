// Package storage indexes bibliography entries in SQLite for querying.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matsen/pubpage/internal/reference"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Entry is an indexed reference together with the section it came from.
type Entry struct {
	Section   string              `json:"section"`
	Reference reference.Reference `json:"reference"`
}

// Filter narrows a query. Zero values match everything.
type Filter struct {
	Section string
	Year    int
	Venue   string // Case-insensitive substring
	Search  string // Full-text over title, authors and venue
	Limit   int
}

// YearCount is the number of entries published in one year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

const selectPubFields = `p.section, p.key, p.entry_type, p.title, p.venue,
	p.year, p.has_year, p.note, p.doi, p.authors_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

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

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS pubs (
			section TEXT NOT NULL,
			key TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			title TEXT NOT NULL,
			venue TEXT NOT NULL,
			year INTEGER NOT NULL,
			has_year INTEGER NOT NULL,
			note TEXT,
			doi TEXT,
			authors_json TEXT NOT NULL,
			PRIMARY KEY (section, key)
		);

		CREATE INDEX IF NOT EXISTS idx_pubs_year ON pubs(year);

		CREATE VIRTUAL TABLE IF NOT EXISTS pubs_fts USING fts5(
			section UNINDEXED,
			key UNINDEXED,
			title,
			authors_text,
			venue
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Load replaces the entries of one section.
func (d *DB) Load(section string, refs []reference.Reference) (err error) {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM pubs WHERE section = ?`, section); err != nil {
		return fmt.Errorf("clearing section %s: %w", section, err)
	}
	if _, err = tx.Exec(`DELETE FROM pubs_fts WHERE section = ?`, section); err != nil {
		return fmt.Errorf("clearing fts for section %s: %w", section, err)
	}

	pubStmt, err := tx.Prepare(`
		INSERT INTO pubs (section, key, entry_type, title, venue, year, has_year, note, doi, authors_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing pubs insert: %w", err)
	}
	defer pubStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO pubs_fts (section, key, title, authors_text, venue)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, ref := range refs {
		authorsJSON, merr := json.Marshal(ref.Authors)
		if merr != nil {
			return fmt.Errorf("marshaling authors for %s: %w", ref.ID, merr)
		}

		if _, err = pubStmt.Exec(
			section, ref.ID, ref.EntryType, ref.Title, ref.Venue,
			ref.Year, ref.HasYear, nullableStringValue(ref.Note), nullableStringValue(ref.DOI),
			string(authorsJSON),
		); err != nil {
			return fmt.Errorf("inserting %s: %w", ref.ID, err)
		}

		if _, err = ftsStmt.Exec(section, ref.ID, ref.Title, formatAuthorsText(ref.Authors), ref.Venue); err != nil {
			return fmt.Errorf("inserting fts for %s: %w", ref.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing section %s: %w", section, err)
	}
	return nil
}

// Query returns matching entries, newest first, then by key.
func (d *DB) Query(f Filter) ([]Entry, error) {
	var where []string
	var args []interface{}

	from := `pubs p`
	if q := prepareFTSQuery(f.Search); q != "" {
		from += ` JOIN pubs_fts ON pubs_fts.section = p.section AND pubs_fts.key = p.key`
		where = append(where, `pubs_fts MATCH ?`)
		args = append(args, q)
	}
	if f.Section != "" {
		where = append(where, `p.section = ?`)
		args = append(args, f.Section)
	}
	if f.Year != 0 {
		where = append(where, `p.year = ?`)
		args = append(args, f.Year)
	}
	if f.Venue != "" {
		where = append(where, `p.venue LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Venue)+"%")
	}

	query := `SELECT ` + selectPubFields + ` FROM ` + from
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY p.year DESC, p.key ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of indexed entries.
func (d *DB) Count() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM pubs`).Scan(&n)
	return n, err
}

// YearCounts returns entry counts per year, newest first.
func (d *DB) YearCounts(section string) ([]YearCount, error) {
	query := `SELECT year, COUNT(*) FROM pubs`
	var args []interface{}
	if section != "" {
		query += ` WHERE section = ?`
		args = append(args, section)
	}
	query += ` GROUP BY year ORDER BY year DESC`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting years: %w", err)
	}
	defer rows.Close()

	var counts []YearCount
	for rows.Next() {
		var c YearCount
		if err := rows.Scan(&c.Year, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var note, doi sql.NullString
	var authorsJSON string

	ref := &e.Reference
	if err := rows.Scan(
		&e.Section, &ref.ID, &ref.EntryType, &ref.Title, &ref.Venue,
		&ref.Year, &ref.HasYear, &note, &doi, &authorsJSON,
	); err != nil {
		return Entry{}, fmt.Errorf("scanning entry: %w", err)
	}
	ref.Note = note.String
	ref.DOI = doi.String

	if err := json.Unmarshal([]byte(authorsJSON), &ref.Authors); err != nil {
		return Entry{}, fmt.Errorf("unmarshaling authors for %s: %w", ref.ID, err)
	}
	return e, nil
}

// formatAuthorsText creates a searchable text representation of authors.
func formatAuthorsText(authors []reference.Author) string {
	var names []string
	for _, a := range authors {
		if a.First != "" {
			names = append(names, a.First+" "+a.Last)
		} else {
			names = append(names, a.Last)
		}
	}
	return strings.Join(names, ", ")
}

func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// prepareFTSQuery quotes queries containing FTS5 operators so they are
// matched literally.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
