// Package storage persists tday entries in a single SQLite file.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// PageSize is the maximum number of entries returned by LoadPage.
const PageSize = 10

// DefaultBusyTimeout is used when Options.BusyTimeout is zero.
const DefaultBusyTimeout = time.Second

var ErrEmptyPath = errors.New("db path is empty")

// OpError is returned by every Store operation that reaches the database.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *OpError) Unwrap() error { return e.Err }

func opError(op string, err error) error {
	return &OpError{Op: op, Err: err}
}

// Entry is a single todo item.
type Entry struct {
	ID          int64
	Description string
	Completed   bool
	Ignored     bool
	// UpdatedAt is Unix seconds; NULL until the entry is first updated.
	UpdatedAt sql.NullInt64
}

const (
	createEntriesSQL = `
CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY,
	description TEXT NOT NULL,
	completed INTEGER DEFAULT(0),
	ignored INTEGER DEFAULT(0)
);`

	loadPageSQL = `SELECT id, description, completed, ignored, updated_at FROM entries
WHERE ignored = 0
ORDER BY completed ASC, updated_at DESC, id DESC
LIMIT 10;`

	insertEntrySQL = `INSERT INTO entries (description) VALUES (?);`

	updateEntrySQL = `UPDATE entries
SET description = ?, completed = ?, ignored = ?, updated_at = ?
WHERE id = ?;`

	deleteEntrySQL = `DELETE FROM entries WHERE id = ?;`

	archiveCompletedSQL = `UPDATE entries SET ignored = 1 WHERE completed = 1;`
)

// Options tune how the database file is opened.
type Options struct {
	BusyTimeout time.Duration
}

// Store owns the database handle and its prepared statements. It is not safe
// for concurrent use.
type Store struct {
	db *sql.DB

	loadPage         *sql.Stmt
	insertEntry      *sql.Stmt
	updateEntry      *sql.Stmt
	deleteEntry      *sql.Stmt
	archiveCompleted *sql.Stmt

	now func() time.Time
}

// Open opens (creating if needed) the database at dbPath, brings the schema
// up to date and prepares every statement the store uses.
func Open(ctx context.Context, dbPath string, opts Options) (*Store, error) {
	if dbPath == "" {
		return nil, ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, opError("open database", err)
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = DefaultBusyTimeout
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath, opts.BusyTimeout))
	if err != nil {
		return nil, opError("open database", err)
	}
	// The exclusive lock and the prepared statements live on this one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, opError("open database", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.lock(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.prepare(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close finalizes the prepared statements and closes the database. Calling it
// more than once is a no-op.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	var errs []error
	for _, stmt := range []**sql.Stmt{&s.loadPage, &s.insertEntry, &s.updateEntry, &s.deleteEntry, &s.archiveCompleted} {
		if *stmt == nil {
			continue
		}
		errs = append(errs, (*stmt).Close())
		*stmt = nil
	}
	errs = append(errs, s.db.Close())
	s.db = nil
	return errors.Join(errs...)
}

// lock takes the file's exclusive lock; with locking_mode(EXCLUSIVE) it is
// held until Close. A second handle already fails while its connection is set
// up, so contention surfaces from Open as "open database: database is locked".
func (s *Store) lock(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "BEGIN EXCLUSIVE;"); err != nil {
		return opError("lock database", err)
	}
	if _, err := s.db.ExecContext(ctx, "COMMIT;"); err != nil {
		return opError("lock database", err)
	}
	return nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createEntriesSQL); err != nil {
		return opError("create table entries", err)
	}
	return migrate(ctx, s.db, migrations)
}

func (s *Store) prepare(ctx context.Context) error {
	stmts := []struct {
		name string
		sql  string
		dst  **sql.Stmt
	}{
		{"load page", loadPageSQL, &s.loadPage},
		{"insert entry", insertEntrySQL, &s.insertEntry},
		{"update entry", updateEntrySQL, &s.updateEntry},
		{"delete entry", deleteEntrySQL, &s.deleteEntry},
		{"archive completed", archiveCompletedSQL, &s.archiveCompleted},
	}
	for _, st := range stmts {
		stmt, err := s.db.PrepareContext(ctx, st.sql)
		if err != nil {
			return opError("prepare "+st.name, err)
		}
		*st.dst = stmt
	}
	return nil
}

// Version reports the schema's user_version counter.
func (s *Store) Version(ctx context.Context) (int, error) {
	return userVersion(ctx, s.db)
}

// LoadPage returns the visible entries: not ignored, pending before
// completed, most recently updated first, newest id last tiebreak.
func (s *Store) LoadPage(ctx context.Context) ([]Entry, error) {
	rows, err := s.loadPage.QueryContext(ctx)
	if err != nil {
		return nil, opError("load page", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, PageSize)
	for rows.Next() {
		var e Entry
		var completed, ignored int
		if err := rows.Scan(&e.ID, &e.Description, &completed, &ignored, &e.UpdatedAt); err != nil {
			return nil, opError("load page", err)
		}
		e.Completed = completed == 1
		e.Ignored = ignored == 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, opError("load page", err)
	}
	return entries, nil
}

// Insert adds a pending entry and returns its id.
func (s *Store) Insert(ctx context.Context, description string) (int64, error) {
	res, err := s.insertEntry.ExecContext(ctx, description)
	if err != nil {
		return 0, opError("insert entry", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, opError("insert entry", err)
	}
	return id, nil
}

// Update writes description, completed and ignored for e.ID and stamps
// updated_at with the current time.
func (s *Store) Update(ctx context.Context, e Entry) error {
	_, err := s.updateEntry.ExecContext(ctx, e.Description, boolToInt(e.Completed), boolToInt(e.Ignored), s.now().Unix(), e.ID)
	if err != nil {
		return opError("update entry", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.deleteEntry.ExecContext(ctx, id); err != nil {
		return opError("delete entry", err)
	}
	return nil
}

// ArchiveCompleted hides every completed entry and reports how many rows it
// touched.
func (s *Store) ArchiveCompleted(ctx context.Context) (int64, error) {
	res, err := s.archiveCompleted.ExecContext(ctx)
	if err != nil {
		return 0, opError("archive completed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, opError("archive completed", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string, busyTimeout time.Duration) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Add("_pragma", "busy_timeout("+strconv.FormatInt(busyTimeout.Milliseconds(), 10)+")")
	q.Add("_pragma", "locking_mode(EXCLUSIVE)")
	u.RawQuery = q.Encode()
	return u.String()
}
