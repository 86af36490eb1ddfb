package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB is a SQLite-backed key-value store.
type DB struct {
	db     *sql.DB
	path   string
	logger *zerolog.Logger
	now    func() time.Time
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if logger != nil {
		logger.Info().Str("path", path).Msg("Key-value database initialized")
	}
	return &DB{db: db, path: path, logger: logger, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS kv (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL,
            expires_at INTEGER,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS rate_limits (
            key TEXT PRIMARY KEY,
            count INTEGER NOT NULL,
            expires_at INTEGER NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_kv_expires_at ON kv(expires_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Path is the database file location, used by the backup service.
func (db *DB) Path() string { return db.path }

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value     string
		expiresAt sql.NullInt64
	)
	err := db.db.QueryRowContext(ctx, `SELECT value, expires_at FROM kv WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}

	if expiresAt.Valid && db.now().UnixNano() >= expiresAt.Int64 {
		if _, err := db.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return "", false, fmt.Errorf("failed to drop expired %q: %w", key, err)
		}
		return "", false, nil
	}
	return value, true, nil
}

func (db *DB) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: db.now().Add(ttl).UnixNano(), Valid: true}
	}

	_, err := db.db.ExecContext(ctx, `
        INSERT INTO kv (key, value, expires_at, updated_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET
            value = excluded.value,
            expires_at = excluded.expires_at,
            updated_at = CURRENT_TIMESTAMP
    `, key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// CheckRateLimit counts hits for key inside a fixed window.
func (db *DB) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	now := db.now().UnixNano()
	var (
		count     int
		expiresAt int64
	)
	err = tx.QueryRowContext(ctx, `SELECT count, expires_at FROM rate_limits WHERE key = ?`, key).Scan(&count, &expiresAt)
	switch {
	case errors.Is(err, sql.ErrNoRows) || (err == nil && now > expiresAt):
		count = 1
		expiresAt = now + window.Nanoseconds()
	case err != nil:
		return false, fmt.Errorf("failed to read rate limit: %w", err)
	default:
		count++
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO rate_limits (key, count, expires_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET count = excluded.count, expires_at = excluded.expires_at
    `, key, count, expiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to write rate limit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return count <= limit, nil
}

// PurgeExpired removes expired keys and returns how many were dropped.
func (db *DB) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := db.db.ExecContext(ctx, `DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at <= ?`, db.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired keys: %w", err)
	}
	return res.RowsAffected()
}
