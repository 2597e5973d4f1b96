package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	offlinecache "github.com/webshim/offline-cache"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_stores (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS cache_entries (
	store TEXT NOT NULL,
	request_key TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	headers TEXT NOT NULL,
	body BLOB,
	PRIMARY KEY (store, request_key)
);
`

// Registry is a SQLite-backed cache registry.
type Registry struct {
	db *sql.DB
}

var _ offlinecache.CacheRegistry = (*Registry)(nil)

// Open opens a SQLite registry at the provided path, creating the
// database and its schema if absent.
func Open(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("registry path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Registry{db: db}, nil
}

// Close closes the underlying SQLite database.
func (r *Registry) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Open returns the store with the given name, creating it if absent.
func (r *Registry) Open(ctx context.Context, name string) (offlinecache.CacheStore, error) {
	if name == "" {
		return nil, fmt.Errorf("store name is required")
	}
	if _, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO cache_stores (name) VALUES (?)", name); err != nil {
		return nil, fmt.Errorf("create store %q: %w", name, err)
	}
	return &sqlStore{db: r.db, name: name}, nil
}

// Keys lists the names of all stores in the registry.
func (r *Registry) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM cache_stores ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan store name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return names, nil
}

// Delete removes the store with the given name and all of its entries.
func (r *Registry) Delete(ctx context.Context, name string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete of store %q: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cache_entries WHERE store = ?", name); err != nil {
		return false, fmt.Errorf("delete entries of store %q: %w", name, err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM cache_stores WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("delete store %q: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete store %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete of store %q: %w", name, err)
	}
	return affected > 0, nil
}

type sqlStore struct {
	db   *sql.DB
	name string
}

var _ offlinecache.CacheStore = (*sqlStore)(nil)

func (s *sqlStore) Put(ctx context.Context, req *offlinecache.Request, res *offlinecache.Response) error {
	headers, err := json.Marshal(res.Header)
	if err != nil {
		return fmt.Errorf("encode headers for %q: %w", req.URL, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (store, request_key, status_code, headers, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (store, request_key) DO UPDATE SET
			status_code = excluded.status_code,
			headers = excluded.headers,
			body = excluded.body
	`, s.name, req.Key(), res.StatusCode, string(headers), res.Body)
	if err != nil {
		return fmt.Errorf("store entry for %q: %w", req.URL, err)
	}
	return nil
}

func (s *sqlStore) Match(ctx context.Context, req *offlinecache.Request) (*offlinecache.Response, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT status_code, headers, body FROM cache_entries
		WHERE store = ? AND request_key = ?
	`, s.name, req.Key())

	var (
		statusCode int
		headers    string
		body       []byte
	)
	if err := row.Scan(&statusCode, &headers, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("match entry for %q: %w", req.URL, err)
	}

	var header http.Header
	if err := json.Unmarshal([]byte(headers), &header); err != nil {
		return nil, fmt.Errorf("decode headers for %q: %w", req.URL, err)
	}
	return &offlinecache.Response{
		StatusCode: statusCode,
		Header:     header,
		Body:       body,
	}, nil
}
