// Package redis implements the Redis time-series recorder (spec §4.B),
// grounded on redis_client.c: samples are appended to a per-device sorted
// set via ZADD rather than a dedicated time-series structure.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nerrad567/edge-mapper/internal/sink/recorder"
)

// Config is the JSON shape accepted by SetDB.
type Config struct {
	Addr     string `json:"addr"` // "host:port"
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// Recorder is the Redis-backed recorder.Recorder implementation.
type Recorder struct {
	mu     sync.Mutex
	client *goredis.Client
	logger recorder.Logger
}

// New returns a Recorder with no connection open.
func New() *Recorder { return &Recorder{logger: recorder.NoopLogger} }

// SetLogger overrides the default no-op logger.
func (r *Recorder) SetLogger(l recorder.Logger) { r.logger = l }

func envConfig() Config {
	return Config{Addr: "127.0.0.1:6379"}
}

// SetDB implements recorder.Recorder.
func (r *Recorder) SetDB(config string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		_ = r.client.Close()
		r.client = nil
	}

	cfg := envConfig()
	if config != "" {
		if err := json.Unmarshal([]byte(config), &cfg); err != nil {
			return fmt.Errorf("redis: decode config: %w", err)
		}
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis: ping: %w", err)
	}
	r.client = client
	return nil
}

// Record implements recorder.Recorder. The payload format
// ("TimeStamp: <ts> PropertyName: <p> data: <v>") is reproduced verbatim
// from redis_client.c:redis_add_data.
func (r *Recorder) Record(namespace, device, property, value string, tsMillis int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		r.mu.Unlock()
		err := r.SetDB("")
		r.mu.Lock()
		if err != nil || r.client == nil {
			r.logger.Warn("redis recorder: lazy init failed", "error", err)
			return false
		}
	}

	tsSeconds := tsMillis / 1000
	member := fmt.Sprintf("TimeStamp: %d PropertyName: %s data: %s", tsSeconds, property, value)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := r.client.ZAdd(ctx, device, goredis.Z{
		Score:  float64(tsSeconds),
		Member: member,
	}).Err()
	if err != nil {
		r.logger.Error("redis recorder: zadd", "device", device, "error", err)
		return false
	}
	return true
}

// Close implements recorder.Recorder.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}
