package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const kvSchema = `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`

type sqlKV struct {
	readDB  *sql.DB
	writeDB *sql.DB
	dialect string
	path    string
}

// OpenSQLite opens (creating if needed) a sqlite database at dbPath.
func OpenSQLite(dbPath string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	k := &sqlKV{readDB: writeDB, writeDB: writeDB, dialect: "sqlite", path: dbPath}
	if err := k.init(); err != nil {
		writeDB.Close()
		return nil, err
	}

	// The read handle is opened after the schema exists so mode=ro never
	// races table creation on a fresh file.
	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	k.readDB = readDB
	return newListStore("sqlite", dbPath, k), nil
}

// OpenPostgres connects to a PostgreSQL database using a lib/pq DSN.
func OpenPostgres(ctx context.Context, dsn string) (Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	k := &sqlKV{readDB: db, writeDB: db, dialect: "postgres", path: redactDSN(dsn)}
	if err := k.init(); err != nil {
		db.Close()
		return nil, err
	}
	return newListStore("postgres", k.path, k), nil
}

func (k *sqlKV) init() error {
	if _, err := k.writeDB.Exec(kvSchema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (k *sqlKV) rebind(query string) string {
	if k.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (k *sqlKV) get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := k.readDB.QueryRowContext(ctx, k.rebind("SELECT value FROM kv WHERE key = ?"), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (k *sqlKV) put(ctx context.Context, key string, value []byte) error {
	_, err := k.writeDB.ExecContext(ctx, k.rebind(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`), key, string(value), nowRFC3339())
	return err
}

func (k *sqlKV) size(ctx context.Context) (int64, error) {
	if k.dialect == "sqlite" {
		info, err := os.Stat(k.path)
		if err != nil {
			return 0, err
		}
		return info.Size(), nil
	}
	var n sql.NullInt64
	if err := k.readDB.QueryRowContext(ctx, "SELECT SUM(LENGTH(value)) FROM kv").Scan(&n); err != nil {
		return 0, err
	}
	return n.Int64, nil
}

func (k *sqlKV) close() error {
	var errs []error
	if k.readDB != nil && k.readDB != k.writeDB {
		errs = append(errs, k.readDB.Close())
	}
	if k.writeDB != nil {
		errs = append(errs, k.writeDB.Close())
	}
	return errors.Join(errs...)
}

func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
