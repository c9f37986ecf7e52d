// Package influxdb2 implements the InfluxDB2 time-series recorder (spec
// §4.B), grounded on internal/infrastructure/influxdb/write.go for the
// influxdb-client-go/v2 point-construction idiom and on
// influxdb2_client.c for the exact write endpoint shape.
package influxdb2

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/nerrad567/edge-mapper/internal/infrastructure/lineproto"
	"github.com/nerrad567/edge-mapper/internal/sink/recorder"
)

// Config is the JSON shape accepted by SetDB.
type Config struct {
	URL    string `json:"url"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	Token  string `json:"token"`
}

// Recorder is the InfluxDB2-backed recorder.Recorder implementation. It
// uses the client library only to build well-formed line-protocol points;
// writes go over a synchronous POST to match spec §4.B's exact endpoint
// ("POST <url>/api/v2/write?org=...&bucket=...&precision=ns") rather than
// the library's default async-batched write API.
type Recorder struct {
	mu     sync.Mutex
	cfg    Config
	ready  bool
	client *http.Client
	logger recorder.Logger
}

// New returns a Recorder with no handle configured.
func New() *Recorder {
	return &Recorder{client: &http.Client{Timeout: 10 * time.Second}, logger: recorder.NoopLogger}
}

// SetLogger overrides the default no-op logger.
func (r *Recorder) SetLogger(l recorder.Logger) { r.logger = l }

func envConfig() Config {
	cfg := Config{URL: "http://127.0.0.1:8086"}
	if tok := os.Getenv("TOKEN"); tok != "" {
		cfg.Token = tok
	}
	return cfg
}

// SetDB implements recorder.Recorder.
func (r *Recorder) SetDB(config string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := envConfig()
	if config != "" {
		if err := json.Unmarshal([]byte(config), &cfg); err != nil {
			return fmt.Errorf("influxdb2: decode config: %w", err)
		}
	}
	r.cfg = cfg
	r.ready = cfg.URL != "" && cfg.Bucket != ""
	return nil
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
			r.logger.Warn("influxdb2 recorder: lazy init failed")
			return false
		}
	}

	measurement := fmt.Sprintf("%s_%s", recorder.Sanitize(namespace), recorder.Sanitize(device))
	field := recorder.Sanitize(property)

	point := influxdb2.NewPoint(measurement, nil, map[string]any{field: value}, time.UnixMilli(tsMillis))
	fields := make(map[string]any, len(point.FieldList()))
	for _, f := range point.FieldList() {
		fields[f.Key] = f.Value
	}
	tags := make(map[string]string, len(point.TagList()))
	for _, t := range point.TagList() {
		tags[t.Key] = t.Value
	}
	line := lineproto.Format(point.Name(), tags, fields, point.Time().UnixNano())

	url := fmt.Sprintf("%s/api/v2/write?org=%s&bucket=%s&precision=ns", r.cfg.URL, r.cfg.Org, r.cfg.Bucket)
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(line))
	if err != nil {
		r.logger.Error("influxdb2 recorder: build request", "error", err)
		return false
	}
	req.Header.Set("Authorization", "Token "+r.cfg.Token)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	resp, err := r.client.Do(req.WithContext(ctx))
	if err != nil {
		r.logger.Error("influxdb2 recorder: write", "error", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		r.logger.Error("influxdb2 recorder: non-2xx response", "status", resp.StatusCode)
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
