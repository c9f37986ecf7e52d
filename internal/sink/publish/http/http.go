// Package http implements the HTTP push publisher (spec §4.C), grounded on
// http_publisher.c's synchronous retry loop.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/edge-mapper/internal/sink/publish"
)

// Config is the JSON shape of an http pushMethod config.
type Config struct {
	Endpoint    string `json:"endpoint"`
	Method      string `json:"method"`
	AuthToken   string `json:"auth_token"`
	ContentType string `json:"content_type"`
	TimeoutMS   int    `json:"timeout_ms"`
	RetryCount  int    `json:"retry_count"`
}

func (c *Config) applyDefaults() {
	if c.Method == "" {
		c.Method = http.MethodPost
	}
	if c.ContentType == "" {
		c.ContentType = "application/json"
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 10000
	}
	if c.RetryCount <= 0 {
		c.RetryCount = 3
	}
}

// Publisher is the HTTP-backed publish.Publisher implementation.
type Publisher struct {
	cfg    Config
	client *http.Client
	logger publish.Logger
}

// New builds a Publisher from a JSON-encoded Config.
func New(configJSON string) (*Publisher, error) {
	var cfg Config
	if configJSON != "" {
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return nil, fmt.Errorf("http publisher: decode config: %w", err)
		}
	}
	cfg.applyDefaults()
	return &Publisher{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond},
		logger: publish.NoopLogger,
	}, nil
}

// SetLogger overrides the default no-op logger.
func (p *Publisher) SetLogger(l publish.Logger) { p.logger = l }

// Publish implements publish.Publisher: a synchronous POST/PUT with up to
// RetryCount attempts on transport failure or a non-2xx response.
func (p *Publisher) Publish(payload publish.Payload) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("http publisher: marshal payload", "error", err)
		return false
	}

	var lastErr error
	for attempt := 0; attempt < p.cfg.RetryCount; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.cfg.TimeoutMS)*time.Millisecond)
		req, err := http.NewRequestWithContext(ctx, p.cfg.Method, p.cfg.Endpoint, bytes.NewReader(body))
		if err != nil {
			cancel()
			lastErr = err
			continue
		}
		req.Header.Set("Content-Type", p.cfg.ContentType)
		if p.cfg.AuthToken != "" {
			req.Header.Set("Authorization", "Bearer "+p.cfg.AuthToken)
		}

		resp, err := p.client.Do(req)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		if resp.StatusCode/100 == 2 {
			return true
		}
		lastErr = fmt.Errorf("non-2xx response: %d", resp.StatusCode)
	}

	p.logger.Error("http publisher: all retries failed", "endpoint", p.cfg.Endpoint, "error", lastErr)
	return false
}

// Close implements publish.Publisher; the http.Client holds no persistent
// resources that need releasing.
func (p *Publisher) Close() error { return nil }
