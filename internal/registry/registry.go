// Package registry is a durable store of named ruleset bundles, addressable
// by UUID and backed by database/sql against a pluggable driver selected
// from the DSN's scheme: "sqlite://" (the default), "mysql://", or
// "postgres://".
package registry

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/fathom-metrics/quantale/internal/config"
	"github.com/fathom-metrics/quantale/internal/logging"
)

// Record is one stored ruleset bundle.
type Record struct {
	ID        uuid.UUID
	Name      string
	Body      []byte // raw YAML, as loaded by config.LoadBytes
	CreatedAt time.Time
}

// driverFor splits a DSN into the database/sql driver name to open it with
// and the driver-specific DSN to pass, the way the teacher's evaluator
// dispatches @sqlite()/@mysql()/@postgres() to separate sql.Open calls —
// here from one DSN string instead of three call sites.
func driverFor(dsn string) (driver, rest string, err error) {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return "sqlite", dsn, nil
	}
	switch scheme {
	case "sqlite":
		return "sqlite", rest, nil
	case "mysql":
		return "mysql", rest, nil
	case "postgres", "postgresql":
		return "postgres", dsn, nil // lib/pq wants the full URL, scheme included
	default:
		return "", "", fmt.Errorf("registry: unsupported dsn scheme %q", scheme)
	}
}

// SQLiteFilePath returns the filesystem path a sqlite DSN would open, and
// true, if dsn names a plain file (not ":memory:", a "mode=memory" DSN, or
// any "file:" URI DSN). Callers resolve relative paths (e.g. against a config.Bundle's
// BaseDir) before reopening with the result.
func SQLiteFilePath(dsn string) (path string, ok bool) {
	driver, rest, err := driverFor(dsn)
	if err != nil || driver != "sqlite" {
		return "", false
	}
	if rest == ":memory:" || strings.Contains(rest, "mode=memory") || strings.HasPrefix(rest, "file:") {
		return "", false
	}
	return rest, true
}

// placeholder returns the positional-parameter syntax for the given
// database/sql driver name: Postgres uses $1, $2, ...; SQLite and MySQL
// both accept plain "?".
func placeholder(driver string, n int) string {
	if driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Store is a registry backed by one *sql.DB connection, cached by
// "driver:dsn" the way the teacher's evaluator caches SQL connections by
// "driver:dsn" string.
type Store struct {
	mu     sync.Mutex
	driver string
	db     *sql.DB
	log    logging.Logger
}

var (
	poolMu sync.Mutex
	pool   = map[string]*sql.DB{}
)

func openPooled(driver, dsn string) (*sql.DB, error) {
	key := driver + ":" + dsn
	poolMu.Lock()
	defer poolMu.Unlock()
	if db, ok := pool[key]; ok {
		return db, nil
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	pool[key] = db
	return db, nil
}

// Open connects to the registry's backing store and ensures its schema
// exists. log may be nil, in which case logging.NullLogger() is used.
func Open(ctx context.Context, dsn string, log logging.Logger) (*Store, error) {
	driver, rest, err := driverFor(dsn)
	if err != nil {
		return nil, err
	}
	db, err := openPooled(driver, rest)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NullLogger()
	}
	s := &Store{driver: driver, db: db, log: log}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS quantale_rulesets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		body BLOB NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`)
	return err
}

// Put stores a ruleset bundle's raw YAML under name and returns its new ID.
// The body is parsed with config.LoadBytes first, so a malformed bundle is
// rejected before it ever reaches the store.
func (s *Store) Put(ctx context.Context, name string, body []byte) (uuid.UUID, error) {
	if _, err := config.LoadBytes(body); err != nil {
		return uuid.Nil, fmt.Errorf("registry: invalid ruleset bundle: %w", err)
	}
	id := uuid.New()
	now := time.Now()
	q := fmt.Sprintf(
		"INSERT INTO quantale_rulesets (id, name, body, created_at) VALUES (%s, %s, %s, %s)",
		placeholder(s.driver, 1), placeholder(s.driver, 2), placeholder(s.driver, 3), placeholder(s.driver, 4),
	)
	if _, err := s.db.ExecContext(ctx, q, id.String(), name, body, now); err != nil {
		return uuid.Nil, err
	}
	s.log.LogLine("registry: stored", name, id)
	return id, nil
}

// Get fetches the ruleset bundle with the given ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	q := fmt.Sprintf("SELECT id, name, body, created_at FROM quantale_rulesets WHERE id = %s", placeholder(s.driver, 1))
	row := s.db.QueryRowContext(ctx, q, id.String())
	return scanRecord(row)
}

// List returns every stored bundle, most recently created first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, body, created_at FROM quantale_rulesets ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var idStr, name string
	var body []byte
	var createdAt time.Time
	if err := row.Scan(&idStr, &name, &body, &createdAt); err != nil {
		return Record{}, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: id, Name: name, Body: body, CreatedAt: createdAt}, nil
}

// Export streams the bundle with the given ID as gzip-compressed YAML,
// mirroring the gzip package the teacher uses for HTTP response
// compression.
func (s *Store) Export(ctx context.Context, id uuid.UUID, w io.Writer) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(w)
	if _, err := gw.Write(rec.Body); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

// Import reads a gzip-compressed YAML bundle and stores it under name.
func (s *Store) Import(ctx context.Context, name string, r io.Reader) (uuid.UUID, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return uuid.Nil, err
	}
	defer gr.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, gr); err != nil {
		return uuid.Nil, err
	}
	return s.Put(ctx, name, buf.Bytes())
}

// Close does nothing and returns nil: the underlying connection stays
// pooled for the next Open with the same dsn.
func (s *Store) Close() error {
	return nil
}
