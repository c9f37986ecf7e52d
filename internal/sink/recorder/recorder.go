// Package recorder defines the time-series recorder contract (spec §4.B):
// four backends (MySQL, Redis, InfluxDB2, TDengine) share one shape and are
// dispatched from a property's DBMethod configuration.
package recorder

import (
	"strings"

	"github.com/nerrad567/edge-mapper/internal/model"
)

// Recorder is the shape every backend recorder implements. Calls never
// panic or return an error type the caller must unwrap; Record reports
// success with a boolean because the spec's failure policy is "one error
// code, never throws" and all failures are logged at the recorder boundary.
type Recorder interface {
	// SetDB replaces any existing handle (closing it) and opens a new one.
	// An empty config re-resolves from environment variables.
	SetDB(config string) error

	// Record writes one sample. ok is false on any failure; failures are
	// logged by the recorder itself, never returned as an error to the
	// caller, per spec §4.B / §7.5.
	Record(namespace, device, property, value string, tsMillis int64) (ok bool)

	// Close tears down the handle.
	Close() error
}

// Logger is the minimal logging surface recorders need.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger is the default logger used until SetLogger is called.
var NoopLogger Logger = noopLogger{}

// Sanitize implements the spec §4.B identifier sanitization rule: after the
// input is lowercased, ASCII letters/digits plus "-_/" pass through, every
// other byte becomes "_", and an entirely-empty result falls back to
// "unknown".
func Sanitize(s string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		r := lower[i]
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '/':
			b.WriteByte(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "unknown"
	}
	return out
}

// SelectBackend implements spec §4.B's dispatcher rule: the DB config on a
// property selects at most one recorder, chosen by the first non-empty
// field in fixed order (mysql, redis, influxdb2, tdengine). Since
// DeviceProperty.DBMethod already carries a single resolved DBMethodName,
// this just validates/normalizes that field for callers still holding a
// raw multi-field config (e.g. freshly wire-parsed instances).
func SelectBackend(pm *model.DBMethod) model.DBMethodName {
	if pm == nil {
		return model.DBMethodUnknown
	}
	switch pm.DBMethodName {
	case model.DBMethodMySQL, model.DBMethodRedis, model.DBMethodInfluxDB2, model.DBMethodTDengine:
		return pm.DBMethodName
	default:
		return model.DBMethodUnknown
	}
}
