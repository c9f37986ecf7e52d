// Package tdengine implements the TDengine time-series recorder (spec
// §4.B) over a taosAdapter REST endpoint, since no native Go TDengine
// client is available without cgo. Table/STable naming and insert shape
// are reproduced from tdengine_client.c.
package tdengine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/edge-mapper/internal/sink/recorder"
)

// Config is the JSON shape accepted by SetDB.
type Config struct {
	Addr     string `json:"addr"` // host:restPort, e.g. "127.0.0.1:6041"
	DBName   string `json:"dbname"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// Recorder is the TDengine-backed recorder.Recorder implementation.
type Recorder struct {
	mu          sync.Mutex
	cfg         Config
	ready       bool
	stableKnown map[string]bool
	client      *http.Client
	logger      recorder.Logger
}

// New returns a Recorder with no handle configured.
func New() *Recorder {
	return &Recorder{
		stableKnown: make(map[string]bool),
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      recorder.NoopLogger,
	}
}

// SetLogger overrides the default no-op logger.
func (r *Recorder) SetLogger(l recorder.Logger) { r.logger = l }

func envConfig() Config {
	cfg := Config{Addr: "127.0.0.1:6041", DBName: "mapper", User: "root", Password: "taosdata"}
	if v := os.Getenv("TDENGINE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TDENGINE_DBNAME"); v != "" {
		cfg.DBName = v
	}
	if v := os.Getenv("TDENGINE_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("TDENGINE_PASSWORD"); v != "" {
		cfg.Password = v
	}
	return cfg
}

// SetDB implements recorder.Recorder: forces the database to exist before
// marking the handle ready, mirroring tdengine_init_client's
// CREATE DATABASE IF NOT EXISTS step. No USE is issued; every later
// statement names the database explicitly.
func (r *Recorder) SetDB(config string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := envConfig()
	if config != "" {
		if err := json.Unmarshal([]byte(config), &cfg); err != nil {
			return fmt.Errorf("tdengine: decode config: %w", err)
		}
	}
	r.cfg = cfg
	r.stableKnown = make(map[string]bool)

	if err := r.execSQLLocked(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.DBName)); err != nil {
		return fmt.Errorf("tdengine: create database: %w", err)
	}
	r.ready = true
	return nil
}

func (r *Recorder) execSQLLocked(sql string) error {
	url := fmt.Sprintf("http://%s/rest/sql", r.cfg.Addr)
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(sql))
	if err != nil {
		return err
	}
	req.SetBasicAuth(r.cfg.User, r.cfg.Password)
	req.Header.Set("Accept-Charset", "utf-8")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	resp, err := r.client.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("non-2xx response: %d", resp.StatusCode)
	}
	return nil
}

func deviceTable(namespace, device string) string {
	dev := strings.ReplaceAll(device, "-", "_")
	return fmt.Sprintf("%s_%s", recorder.Sanitize(namespace), recorder.Sanitize(dev))
}

// Record implements recorder.Recorder.
func (r *Recorder) Record(namespace, device, property, value string, tsMillis int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		r.mu.Unlock()
		err := r.SetDB("")
		r.mu.Lock()
		if err != nil || !r.ready {
			r.logger.Warn("tdengine recorder: lazy init failed", "error", err)
			return false
		}
	}

	stable := deviceTable(namespace, device)
	if !r.stableKnown[stable] {
		createStable := fmt.Sprintf(
			"CREATE STABLE IF NOT EXISTS %s.%s (ts timestamp, deviceid binary(64), propertyname binary(64), data binary(64), type binary(64)) TAGS (location binary(64))",
			r.cfg.DBName, stable)
		if err := r.execSQLLocked(createStable); err != nil {
			r.logger.Error("tdengine recorder: create stable", "stable", stable, "error", err)
			return false
		}
		r.stableKnown[stable] = true
	}

	prop := recorder.Sanitize(property)
	ts := time.UnixMilli(tsMillis).UTC().Format("2006-01-02 15:04:05.000")
	insert := fmt.Sprintf(
		"INSERT INTO %s.%s USING %s.%s TAGS ('%s') VALUES ('%s', '%s', '%s', '%s', 'string')",
		r.cfg.DBName, prop, r.cfg.DBName, stable, device, ts, device, prop, value)
	if err := r.execSQLLocked(insert); err != nil {
		r.logger.Error("tdengine recorder: insert", "error", err)
		return false
	}
	return true
}

// Close implements recorder.Recorder.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = false
	return nil
}
