package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"unbind/omnibus"
)

// ErrNotFound is returned by lookups when no matching record exists.
var ErrNotFound = errors.New("catalog: not found")

const schema = `
CREATE TABLE IF NOT EXISTS omnibus (
	id         TEXT PRIMARY KEY,
	path       TEXT NOT NULL UNIQUE,
	title      TEXT NOT NULL,
	file_mtime INTEGER NOT NULL,
	file_size  INTEGER NOT NULL,
	work_count INTEGER NOT NULL,
	toc_type   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS virtual_book (
	id                  TEXT PRIMARY KEY,
	omnibus_id          TEXT NOT NULL REFERENCES omnibus(id) ON DELETE CASCADE,
	number              INTEGER NOT NULL,
	number_sort         TEXT NOT NULL,
	title               TEXT NOT NULL,
	sort_title          TEXT NOT NULL,
	href                TEXT NOT NULL,
	work_type           TEXT NOT NULL,
	file_mtime          INTEGER NOT NULL,
	file_size           INTEGER NOT NULL,
	metadata_json       TEXT NOT NULL DEFAULT '{}',
	url                 TEXT NOT NULL,
	short_desc          TEXT NOT NULL DEFAULT '',
	position_in_section INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_virtual_book_omnibus ON virtual_book(omnibus_id);
`

// Store is the catalog database. A single connection guarded by a mutex
// is plenty for a command line tool.
type Store struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	log  *zap.Logger
}

// Open opens or creates the catalog database at path. Pass ":memory:"
// for an ephemeral catalog.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL}
	if path == ":memory:" {
		flags = []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenMemory}
	}
	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("unable to open catalog database: %w", err)
	}
	if err := sqlitex.ExecuteTransient(conn, "PRAGMA foreign_keys = ON;", nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to enable foreign keys: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to apply catalog schema: %w", err)
	}
	return &Store{conn: conn, log: log.Named("catalog")}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// ReplaceOmnibus writes the omnibus and its virtual books in a single
// transaction, replacing any previous record for the same path. When the
// path is already catalogued the existing omnibus id is kept and written
// back into om.
func (s *Store) ReplaceOmnibus(om *Omnibus, books []VirtualBook) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	endTransaction, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}
	defer endTransaction(&err)

	existing := ""
	err = sqlitex.Execute(s.conn, `SELECT id FROM omnibus WHERE path = ?`, &sqlitex.ExecOptions{
		Args: []any{om.Path},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			existing = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("unable to look up omnibus: %w", err)
	}

	if existing != "" {
		om.ID = existing
		err = sqlitex.Execute(s.conn, `DELETE FROM virtual_book WHERE omnibus_id = ?`,
			&sqlitex.ExecOptions{Args: []any{om.ID}})
		if err != nil {
			return fmt.Errorf("unable to drop stale virtual books: %w", err)
		}
		err = sqlitex.Execute(s.conn,
			`UPDATE omnibus SET title = ?, file_mtime = ?, file_size = ?, work_count = ?, toc_type = ? WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{
				om.Title, om.FileMtime.Unix(), om.FileSize, om.WorkCount, om.TocType.String(), om.ID,
			}})
	} else {
		err = sqlitex.Execute(s.conn,
			`INSERT INTO omnibus (id, path, title, file_mtime, file_size, work_count, toc_type) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				om.ID, om.Path, om.Title, om.FileMtime.Unix(), om.FileSize, om.WorkCount, om.TocType.String(),
			}})
	}
	if err != nil {
		return fmt.Errorf("unable to store omnibus: %w", err)
	}

	for i := range books {
		vb := &books[i]
		vb.OmnibusID = om.ID
		meta, merr := json.Marshal(vb.Metadata)
		if merr != nil {
			return fmt.Errorf("unable to encode metadata for %s: %w", vb.Title, merr)
		}
		err = sqlitex.Execute(s.conn,
			`INSERT INTO virtual_book (id, omnibus_id, number, number_sort, title, sort_title, href, work_type,
				file_mtime, file_size, metadata_json, url, short_desc, position_in_section)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				vb.ID, vb.OmnibusID, vb.Number, vb.NumberSort, vb.Title, vb.SortTitle, vb.Href,
				vb.WorkType.String(), vb.FileMtime.Unix(), vb.FileSize, string(meta), vb.URL,
				vb.ShortDesc, vb.PositionInSection,
			}})
		if err != nil {
			return fmt.Errorf("unable to store virtual book %s: %w", vb.Title, err)
		}
	}
	return nil
}

// DeleteOmnibusByPath removes the omnibus catalogued under path together
// with its virtual books. Removing an unknown path is not an error.
func (s *Store) DeleteOmnibusByPath(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := sqlitex.Execute(s.conn, `DELETE FROM omnibus WHERE path = ?`,
		&sqlitex.ExecOptions{Args: []any{path}})
	if err != nil {
		return fmt.Errorf("unable to delete omnibus: %w", err)
	}
	return nil
}

// Omnibuses returns all catalogued omnibuses in natural title order.
func (s *Store) Omnibuses() ([]Omnibus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Omnibus
	err := sqlitex.Execute(s.conn,
		`SELECT id, path, title, file_mtime, file_size, work_count, toc_type FROM omnibus`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			om, err := scanOmnibus(stmt)
			if err != nil {
				return err
			}
			out = append(out, om)
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("unable to list omnibuses: %w", err)
	}
	sort.Slice(out, func(i, j int) bool {
		return natural.Less(out[i].Title, out[j].Title)
	})
	return out, nil
}

// OmnibusByPath looks up the omnibus catalogued under the given
// container URL.
func (s *Store) OmnibusByPath(path string) (*Omnibus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *Omnibus
	err := sqlitex.Execute(s.conn,
		`SELECT id, path, title, file_mtime, file_size, work_count, toc_type FROM omnibus WHERE path = ?`,
		&sqlitex.ExecOptions{
			Args: []any{path},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				om, err := scanOmnibus(stmt)
				if err != nil {
					return err
				}
				found = &om
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to look up omnibus: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: omnibus %s", ErrNotFound, path)
	}
	return found, nil
}

// OmnibusByID looks up one omnibus by its catalog id.
func (s *Store) OmnibusByID(id string) (*Omnibus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *Omnibus
	err := sqlitex.Execute(s.conn,
		`SELECT id, path, title, file_mtime, file_size, work_count, toc_type FROM omnibus WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				om, err := scanOmnibus(stmt)
				if err != nil {
					return err
				}
				found = &om
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to look up omnibus: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: omnibus %s", ErrNotFound, id)
	}
	return found, nil
}

// VirtualBooks returns the virtual books of one omnibus ordered by their
// ordinal.
func (s *Store) VirtualBooks(omnibusID string) ([]VirtualBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectBooks(`SELECT `+bookColumns+` FROM virtual_book WHERE omnibus_id = ? ORDER BY number`, omnibusID)
}

// AllVirtualBooks returns every virtual book in the catalog in natural
// sort-title order.
func (s *Store) AllVirtualBooks() ([]VirtualBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	books, err := s.selectBooks(`SELECT ` + bookColumns + ` FROM virtual_book`)
	if err != nil {
		return nil, err
	}
	sort.Slice(books, func(i, j int) bool {
		if books[i].SortTitle != books[j].SortTitle {
			return natural.Less(books[i].SortTitle, books[j].SortTitle)
		}
		return books[i].NumberSort < books[j].NumberSort
	})
	return books, nil
}

// VirtualBookByID fetches one virtual book.
func (s *Store) VirtualBookByID(id string) (*VirtualBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	books, err := s.selectBooks(`SELECT `+bookColumns+` FROM virtual_book WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("%w: virtual book %s", ErrNotFound, id)
	}
	return &books[0], nil
}

const bookColumns = `id, omnibus_id, number, number_sort, title, sort_title, href, work_type,
	file_mtime, file_size, metadata_json, url, short_desc, position_in_section`

func (s *Store) selectBooks(query string, args ...any) ([]VirtualBook, error) {
	var out []VirtualBook
	err := sqlitex.Execute(s.conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			vb, err := scanBook(stmt)
			if err != nil {
				return err
			}
			out = append(out, vb)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to query virtual books: %w", err)
	}
	return out, nil
}

func scanOmnibus(stmt *sqlite.Stmt) (Omnibus, error) {
	tocType, err := omnibus.ParseTocType(stmt.ColumnText(6))
	if err != nil {
		return Omnibus{}, fmt.Errorf("corrupt toc_type for %s: %w", stmt.ColumnText(0), err)
	}
	return Omnibus{
		ID:        stmt.ColumnText(0),
		Path:      stmt.ColumnText(1),
		Title:     stmt.ColumnText(2),
		FileMtime: time.Unix(stmt.ColumnInt64(3), 0),
		FileSize:  stmt.ColumnInt64(4),
		WorkCount: int(stmt.ColumnInt64(5)),
		TocType:   tocType,
	}, nil
}

func scanBook(stmt *sqlite.Stmt) (VirtualBook, error) {
	workType, err := omnibus.ParseWorkType(stmt.ColumnText(7))
	if err != nil {
		return VirtualBook{}, fmt.Errorf("corrupt work_type for %s: %w", stmt.ColumnText(0), err)
	}
	var meta map[string]string
	if raw := stmt.ColumnText(10); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return VirtualBook{}, fmt.Errorf("corrupt metadata for %s: %w", stmt.ColumnText(0), err)
		}
	}
	return VirtualBook{
		ID:                stmt.ColumnText(0),
		OmnibusID:         stmt.ColumnText(1),
		Number:            int(stmt.ColumnInt64(2)),
		NumberSort:        stmt.ColumnText(3),
		Title:             stmt.ColumnText(4),
		SortTitle:         stmt.ColumnText(5),
		Href:              stmt.ColumnText(6),
		WorkType:          workType,
		FileMtime:         time.Unix(stmt.ColumnInt64(8), 0),
		FileSize:          stmt.ColumnInt64(9),
		Metadata:          meta,
		URL:               stmt.ColumnText(11),
		ShortDesc:         stmt.ColumnText(12),
		PositionInSection: int(stmt.ColumnInt64(13)),
	}, nil
}
