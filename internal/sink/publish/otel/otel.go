// Package otel implements the OTEL push publisher (spec §4.C): an OTLP
// metrics-over-HTTP JSON document carrying one gauge per call, including
// the deliberate degrade-to-cardinality fallback from otel_publisher.c.
package otel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/edge-mapper/internal/sink/publish"
)

// Config is the JSON shape of an otel pushMethod config.
type Config struct {
	EndpointURL    string `json:"endpointUrl"`
	ServiceName    string `json:"service_name"`
	ServiceVersion string `json:"service_version"`
	TimeoutMS      int    `json:"timeout_ms"`
}

func (c *Config) applyDefaults() {
	if c.EndpointURL == "" {
		c.EndpointURL = "http://localhost:4318/v1/metrics"
	}
	if c.ServiceName == "" {
		c.ServiceName = "edge-mapper"
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 10000
	}
}

// Publisher is the OTEL-backed publish.Publisher implementation.
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
			return nil, fmt.Errorf("otel publisher: decode config: %w", err)
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

// asDouble implements the literal otel_publisher.c fallback: a value
// string that parses as a float encodes as that float; any other string
// encodes as its byte length. This is a deliberate degrade-to-cardinality
// behavior (spec §4.C, §9 note 2), not a bug to "fix".
func asDouble(value string) float64 {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return float64(len(value))
}

type otlpDataPoint struct {
	TimeUnixNano string  `json:"timeUnixNano"`
	AsDouble     float64 `json:"asDouble"`
}

type otlpGauge struct {
	DataPoints []otlpDataPoint `json:"dataPoints"`
}

type otlpMetric struct {
	Name  string    `json:"name"`
	Gauge otlpGauge `json:"gauge"`
}

type otlpScopeMetrics struct {
	Metrics []otlpMetric `json:"metrics"`
}

type otlpKV struct {
	Key   string         `json:"key"`
	Value map[string]any `json:"value"`
}

type otlpResource struct {
	Attributes []otlpKV `json:"attributes"`
}

type otlpResourceMetrics struct {
	Resource     otlpResource       `json:"resource"`
	ScopeMetrics []otlpScopeMetrics `json:"scopeMetrics"`
}

type otlpDocument struct {
	ResourceMetrics []otlpResourceMetrics `json:"resourceMetrics"`
}

// Publish implements publish.Publisher.
func (p *Publisher) Publish(payload publish.Payload) bool {
	doc := otlpDocument{
		ResourceMetrics: []otlpResourceMetrics{{
			Resource: otlpResource{Attributes: []otlpKV{
				{Key: "service.name", Value: map[string]any{"stringValue": p.cfg.ServiceName}},
				{Key: "service.version", Value: map[string]any{"stringValue": p.cfg.ServiceVersion}},
				{Key: "device.namespace", Value: map[string]any{"stringValue": payload.Namespace}},
				{Key: "device.name", Value: map[string]any{"stringValue": payload.DeviceName}},
			}},
			ScopeMetrics: []otlpScopeMetrics{{
				Metrics: []otlpMetric{{
					Name: payload.PropertyName,
					Gauge: otlpGauge{DataPoints: []otlpDataPoint{{
						TimeUnixNano: strconv.FormatInt(payload.Timestamp*int64(time.Millisecond), 10),
						AsDouble:     asDouble(payload.Value),
					}}},
				}},
			}},
		}},
	}

	body, err := json.Marshal(doc)
	if err != nil {
		p.logger.Error("otel publisher: marshal payload", "error", err)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.cfg.TimeoutMS)*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.EndpointURL, bytes.NewReader(body))
	if err != nil {
		p.logger.Error("otel publisher: build request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Error("otel publisher: post", "error", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		p.logger.Error("otel publisher: non-2xx response", "status", resp.StatusCode)
		return false
	}
	return true
}

// Close implements publish.Publisher.
func (p *Publisher) Close() error { return nil }
