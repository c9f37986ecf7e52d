// Package localstate caches the last-known reported value for every twin in
// a private SQLite database, so the admin HTTP server (internal/adminapi)
// has something to answer reads with while a device's Runtime is mid-restart
// (the window between UpdateDev tearing one down and the replacement's
// first tick). The cache is never consulted by reconciliation: the registry
// and its runtimes are the only source of truth for desired/reported state.
//
// The database is opened fresh on every process start (spec.md's Non-goal
// on persisting device state across restarts) and is gone the moment the
// process exits; it exists purely to cover a short in-memory gap, not to
// survive one.
package localstate

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nerrad567/edge-mapper/internal/device"
	"github.com/nerrad567/edge-mapper/internal/model"
)

const (
	// busyTimeoutMillis bounds how long a writer waits for the lock before
	// sqlite3 returns SQLITE_BUSY.
	busyTimeoutMillis = 2000

	connectionTimeout = 5 * time.Second
)

// openSeq numbers the in-memory databases created by Open.
var openSeq atomic.Int64

// Cache is a SQLite-backed device.Reporter that remembers the most recent
// reported value per (namespace, name, property).
type Cache struct {
	db *sql.DB
}

// Open creates an in-process, in-memory cache. Every call starts empty;
// there is no on-disk file and nothing to migrate between runs.
func Open() (*Cache, error) {
	// cache=shared keeps the in-memory database alive across the pool's
	// connections; a private in-memory DSN would otherwise vanish the
	// instant the first connection closed. Each Open uses its own database
	// name, so two Caches open at once never share one database.
	connStr := fmt.Sprintf("file:localstate%d?mode=memory&cache=shared&_busy_timeout=%d",
		openSeq.Add(1), busyTimeoutMillis)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("localstate: opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("localstate: verifying connection: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS twin_values (
	namespace  TEXT NOT NULL,
	name       TEXT NOT NULL,
	property   TEXT NOT NULL,
	value      TEXT NOT NULL,
	ts_millis  INTEGER NOT NULL,
	PRIMARY KEY (namespace, name, property)
);
CREATE TABLE IF NOT EXISTS device_status (
	namespace TEXT NOT NULL,
	name      TEXT NOT NULL,
	status    TEXT NOT NULL,
	ts_millis INTEGER NOT NULL,
	PRIMARY KEY (namespace, name)
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("localstate: creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the underlying connection, discarding every cached value.
func (c *Cache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("localstate: closing database: %w", err)
	}
	return nil
}

// ReportDeviceStatus implements device.Reporter, recording the device's
// latest status.
func (c *Cache) ReportDeviceStatus(ctx context.Context, namespace, name string, status model.Status) error {
	const q = `
INSERT INTO device_status (namespace, name, status, ts_millis) VALUES (?, ?, ?, ?)
ON CONFLICT (namespace, name) DO UPDATE SET status = excluded.status, ts_millis = excluded.ts_millis`
	if _, err := c.db.ExecContext(ctx, q, namespace, name, string(status), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("localstate: recording device status: %w", err)
	}
	return nil
}

// ReportTwinKV implements device.Reporter, upserting the twin's latest
// reported value.
func (c *Cache) ReportTwinKV(ctx context.Context, namespace, name, property, value string, tsMillis int64) error {
	const q = `
INSERT INTO twin_values (namespace, name, property, value, ts_millis) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (namespace, name, property) DO UPDATE SET value = excluded.value, ts_millis = excluded.ts_millis`
	if _, err := c.db.ExecContext(ctx, q, namespace, name, property, value, tsMillis); err != nil {
		return fmt.Errorf("localstate: recording twin value: %w", err)
	}
	return nil
}

// GetTwinValue returns the last reported value cached for a twin property,
// if any. adminapi falls back to this only when the live registry has no
// runtime for the device (it is mid-restart), never to override a live
// value.
func (c *Cache) GetTwinValue(ctx context.Context, namespace, name, property string) (value string, tsMillis int64, ok bool) {
	const q = `SELECT value, ts_millis FROM twin_values WHERE namespace = ? AND name = ? AND property = ?`
	err := c.db.QueryRowContext(ctx, q, namespace, name, property).Scan(&value, &tsMillis)
	if err != nil {
		return "", 0, false
	}
	return value, tsMillis, true
}

// GetDeviceStatus returns the last reported status cached for a device, if
// any.
func (c *Cache) GetDeviceStatus(ctx context.Context, namespace, name string) (status model.Status, ok bool) {
	const q = `SELECT status FROM device_status WHERE namespace = ? AND name = ?`
	var raw string
	if err := c.db.QueryRowContext(ctx, q, namespace, name).Scan(&raw); err != nil {
		return "", false
	}
	return model.Status(raw), true
}

var _ device.Reporter = (*Cache)(nil)
