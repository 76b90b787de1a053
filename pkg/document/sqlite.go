package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const schema = `
CREATE TABLE IF NOT EXISTS assemblies (
    name       TEXT PRIMARY KEY,
    revision   TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS parts (
    assembly TEXT NOT NULL REFERENCES assemblies(name) ON DELETE CASCADE,
    seq      INTEGER NOT NULL,
    label    TEXT NOT NULL,
    kind     TEXT NOT NULL,
    min_x REAL NOT NULL, min_y REAL NOT NULL, min_z REAL NOT NULL,
    max_x REAL NOT NULL, max_y REAL NOT NULL, max_z REAL NOT NULL,
    PRIMARY KEY (assembly, seq)
);
`

// SQLiteStore persists assemblies in SQLite. Only part metadata is stored;
// parts read back carry no kernel solid.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at dbPath and applies
// the schema.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Replace(ctx context.Context, name string, parts []Part) (*Assembly, error) {
	a := newAssembly(name, parts)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM parts WHERE assembly = ?`, name); err != nil {
		return nil, fmt.Errorf("erase parts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM assemblies WHERE name = ?`, name); err != nil {
		return nil, fmt.Errorf("erase assembly: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO assemblies (name, revision, created_at)
        VALUES (?, ?, ?)
    `, name, a.Revision.String(), a.CreatedAt.UnixNano()); err != nil {
		return nil, fmt.Errorf("insert assembly: %w", err)
	}
	for i, p := range parts {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO parts (assembly, seq, label, kind, min_x, min_y, min_z, max_x, max_y, max_z)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        `, name, i, p.Label, p.Kind, p.Min[0], p.Min[1], p.Min[2], p.Max[0], p.Max[1], p.Max[2]); err != nil {
			return nil, fmt.Errorf("insert part %q: %w", p.Label, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) Assembly(ctx context.Context, name string) (*Assembly, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT revision, created_at FROM assemblies WHERE name = ?
    `, name)

	var (
		rev     string
		created int64
	)
	if err := row.Scan(&rev, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	id, err := uuid.Parse(rev)
	if err != nil {
		return nil, fmt.Errorf("revision of %q: %w", name, err)
	}
	a := &Assembly{Name: name, Revision: id, CreatedAt: time.Unix(0, created).UTC()}

	rows, err := s.db.QueryContext(ctx, `
        SELECT label, kind, min_x, min_y, min_z, max_x, max_y, max_z
        FROM parts
        WHERE assembly = ?
        ORDER BY seq
    `, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p Part
		if err := rows.Scan(&p.Label, &p.Kind, &p.Min[0], &p.Min[1], &p.Min[2], &p.Max[0], &p.Max[1], &p.Max[2]); err != nil {
			return nil, err
		}
		a.Parts = append(a.Parts, p)
	}
	return a, rows.Err()
}

func (s *SQLiteStore) Erase(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM parts WHERE assembly = ?`, name); err != nil {
		return fmt.Errorf("erase parts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM assemblies WHERE name = ?`, name); err != nil {
		return fmt.Errorf("erase assembly: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM assemblies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
