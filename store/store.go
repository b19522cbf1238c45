// Package store caches converted methods in SQLite.
//
// Entries are keyed by a name-based UUID derived from the method record,
// so re-running over unchanged input hits the cache. Each entry carries
// the wire version it was written with; entries whose version does not
// satisfy the store's compatibility constraint are treated as misses.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/chazu/dexast/ast"
	"github.com/chazu/dexast/smali"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested method is not cached.
var ErrNotFound = errors.New("store: method not found")

// ErrIncompatible indicates a cached entry was written with a wire version
// outside the store's constraint.
var ErrIncompatible = errors.New("store: incompatible wire version")

var log = commonlog.GetLogger("dexast.store")

// keySpace namespaces method keys.
var keySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chazu/dexast/method"))

const schema = `
CREATE TABLE IF NOT EXISTS methods (
	key        TEXT PRIMARY KEY,
	triple     TEXT NOT NULL,
	version    TEXT NOT NULL,
	hash       TEXT NOT NULL,
	data       BLOB NOT NULL,
	run_id     TEXT,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	methods     INTEGER NOT NULL DEFAULT 0,
	converted   INTEGER NOT NULL DEFAULT 0,
	cached      INTEGER NOT NULL DEFAULT 0,
	absent      INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);`

// Store handles SQLite storage for converted methods.
type Store struct {
	db     *sql.DB
	path   string
	compat *semver.Constraints
	mu     sync.Mutex
}

// Open opens or creates the cache at path. compat is a semver constraint
// that cached wire versions must satisfy.
func Open(path, compat string) (*Store, error) {
	c, err := semver.NewConstraint(compat)
	if err != nil {
		return nil, fmt.Errorf("store: compat constraint %q: %w", compat, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: setting busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating tables: %w", err)
	}

	log.Debugf("opened cache %s (compat %s)", path, compat)
	return &Store{db: db, path: path, compat: c}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// MethodKey derives the cache key for a method record. Any change to the
// record's identity, flags or instructions yields a different key.
func MethodKey(m *smali.Method) string {
	var b strings.Builder
	b.WriteString(m.Key())
	b.WriteByte(0)
	b.WriteString(m.AccessFlags)
	b.WriteByte(0)
	if m.External {
		b.WriteString("external")
	}
	for _, ins := range m.Instructions {
		b.WriteByte(0)
		b.WriteString(ins.String())
	}
	return uuid.NewSHA1(keySpace, []byte(b.String())).String()
}

// Put stores a converted method under key.
func (s *Store) Put(ctx context.Context, key, runID string, m *ast.MethodAST) error {
	data, err := ast.MarshalMethod(m)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %w", m.Triple, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO methods (key, triple, version, hash, data, run_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key, m.Triple.String(), ast.WireVersion, ast.HashHex(m), data, runID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: saving method: %w", err)
	}
	return nil
}

// Get retrieves the method cached under key.
func (s *Store) Get(ctx context.Context, key string) (*ast.MethodAST, error) {
	var (
		version string
		data    []byte
	)
	err := s.db.QueryRowContext(ctx, "SELECT version, data FROM methods WHERE key = ?", key).Scan(&version, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: querying method: %w", err)
	}

	if !s.Compatible(version) {
		return nil, fmt.Errorf("%w: %s", ErrIncompatible, version)
	}

	m, _, err := ast.UnmarshalMethod(data)
	if err != nil {
		return nil, fmt.Errorf("store: decoding %s: %w", key, err)
	}
	return m, nil
}

// Compatible reports whether a wire version satisfies the constraint.
func (s *Store) Compatible(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return s.compat.Check(v)
}

// Count returns the number of cached methods.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM methods").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: counting methods: %w", err)
	}
	return n, nil
}

// Prune deletes entries whose wire version is incompatible and returns how
// many were removed.
func (s *Store) Prune(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT version FROM methods")
	if err != nil {
		return 0, fmt.Errorf("store: listing versions: %w", err)
	}
	var stale []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return 0, fmt.Errorf("store: scanning version: %w", err)
		}
		if !s.Compatible(v) {
			stale = append(stale, v)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("store: listing versions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, v := range stale {
		res, err := s.db.ExecContext(ctx, "DELETE FROM methods WHERE version = ?", v)
		if err != nil {
			return removed, fmt.Errorf("store: pruning version %s: %w", v, err)
		}
		n, _ := res.RowsAffected()
		removed += int(n)
	}
	if removed > 0 {
		log.Infof("pruned %d cached methods with incompatible versions %v", removed, stale)
	}
	return removed, nil
}
