// Package mysql implements the MySQL time-series recorder (spec §4.B).
package mysql

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers the "mysql" sql.DB driver
	"github.com/jmoiron/sqlx"

	"github.com/nerrad567/edge-mapper/internal/sink/recorder"
)

// Config is the JSON shape accepted by SetDB.
type Config struct {
	Addr     string `json:"addr"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode"`
}

func (c Config) cacheKey() string {
	return fmt.Sprintf("%s:%d/%s@%s", c.Addr, c.Port, c.Database, c.Username)
}

// cachedHandle is one entry of the refcounted connection-pool cache described in
// SPEC_FULL.md §5.1, grounded on mysql_client.c's mysql_get_cached_db:
// SetDB with an identical key reuses the cached *sqlx.DB and bumps a
// refcount; Close decrements it and only closes the pool at zero.
type cachedHandle struct {
	db   *sqlx.DB
	refs int
}

var (
	cacheMu sync.Mutex
	cache   = make(map[string]*cachedHandle)
)

func acquire(cfg Config) (*sqlx.DB, error) {
	key := cfg.cacheKey()
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if h, ok := cache[key]; ok {
		h.refs++
		return h.db, nil
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?timeout=10s&parseTime=true",
		cfg.Username, cfg.Password, cfg.Addr, cfg.Port, cfg.Database)
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: connect: %w", err)
	}
	db.SetConnMaxLifetime(10 * time.Minute)
	cache[key] = &cachedHandle{db: db, refs: 1}
	return db, nil
}

func release(cfg Config) {
	key := cfg.cacheKey()
	cacheMu.Lock()
	defer cacheMu.Unlock()
	h, ok := cache[key]
	if !ok {
		return
	}
	h.refs--
	if h.refs <= 0 {
		_ = h.db.Close()
		delete(cache, key)
	}
}

// Recorder is the MySQL-backed recorder.Recorder implementation.
type Recorder struct {
	mu     sync.Mutex
	db     *sqlx.DB
	cfg    Config
	logger recorder.Logger
}

// New returns a Recorder with no handle open; SetDB must be called before
// Record will succeed (a lazy first call also attempts initialization from
// environment variables, per spec §4.B).
func New() *Recorder {
	return &Recorder{logger: recorder.NoopLogger}
}

// SetLogger overrides the default no-op logger.
func (r *Recorder) SetLogger(l recorder.Logger) { r.logger = l }

func envConfig() Config {
	cfg := Config{Addr: "127.0.0.1", Port: 3306, Database: "mapper", Username: "root"}
	if pw := os.Getenv("MYSQL_PASSWORD"); pw != "" {
		cfg.Password = pw
	} else if pw := os.Getenv("PASSWORD"); pw != "" {
		cfg.Password = pw
	}
	return cfg
}

// SetDB implements recorder.Recorder.
func (r *Recorder) SetDB(config string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		release(r.cfg)
		r.db = nil
	}

	cfg := envConfig()
	if config != "" {
		if err := json.Unmarshal([]byte(config), &cfg); err != nil {
			return fmt.Errorf("mysql: decode config: %w", err)
		}
	}

	db, err := acquire(cfg)
	if err != nil {
		return err
	}
	r.db = db
	r.cfg = cfg
	return nil
}

func tableName(ns, device, property string) string {
	return fmt.Sprintf("%s_%s_%s", recorder.Sanitize(ns), recorder.Sanitize(device), recorder.Sanitize(property))
}

// Record implements recorder.Recorder.
func (r *Recorder) Record(namespace, device, property, value string, tsMillis int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		if err := r.setDBLocked(); err != nil {
			r.logger.Warn("mysql recorder: lazy init failed", "error", err)
			return false
		}
	}

	table := tableName(namespace, device, property)
	createStmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS `%s` (id INT AUTO_INCREMENT PRIMARY KEY, ts DATETIME NOT NULL, field TEXT)", table)
	if _, err := r.db.Exec(createStmt); err != nil {
		r.logger.Error("mysql recorder: create table", "table", table, "error", err)
		return false
	}

	ts := time.UnixMilli(tsMillis).Local().Format("2006-01-02 15:04:05")
	insertStmt := fmt.Sprintf("INSERT INTO `%s` (ts, field) VALUES (?, ?)", table)
	if _, err := r.db.Exec(insertStmt, ts, value); err != nil {
		r.logger.Error("mysql recorder: insert", "table", table, "error", err)
		return false
	}
	return true
}

// setDBLocked performs the lazy-init-exactly-once attempt described in
// spec §4.B; on failure it does not mark the handle initialized so the
// next call retries.
func (r *Recorder) setDBLocked() error {
	cfg := envConfig()
	db, err := acquire(cfg)
	if err != nil {
		return err
	}
	r.db = db
	r.cfg = cfg
	return nil
}

// Close implements recorder.Recorder.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	release(r.cfg)
	r.db = nil
	return nil
}
