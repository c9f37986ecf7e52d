// Package lineproto formats InfluxDB-compatible line protocol. It is
// shared by the InfluxDB2 and TDengine recorders, both of which write
// samples over HTTP rather than a native binary protocol.
package lineproto

import (
	"fmt"
	"sort"
	"strings"
)

// Format builds one line-protocol line: measurement, sorted tags, sorted
// fields, and a nanosecond timestamp.
func Format(measurement string, tags map[string]string, fields map[string]any, tsNanos int64) string {
	var b strings.Builder

	b.WriteString(EscapeMeasurement(measurement))

	tagKeys := make([]string, 0, len(tags))
	for k := range tags {
		tagKeys = append(tagKeys, k)
	}
	sort.Strings(tagKeys)
	for _, k := range tagKeys {
		b.WriteByte(',')
		b.WriteString(EscapeTag(k))
		b.WriteByte('=')
		b.WriteString(EscapeTag(tags[k]))
	}

	fieldKeys := make([]string, 0, len(fields))
	for k := range fields {
		fieldKeys = append(fieldKeys, k)
	}
	sort.Strings(fieldKeys)
	b.WriteByte(' ')
	first := true
	for _, k := range fieldKeys {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(EscapeTag(k))
		b.WriteByte('=')
		b.WriteString(formatFieldValue(fields[k]))
	}

	b.WriteByte(' ')
	fmt.Fprintf(&b, "%d", tsNanos)

	return b.String()
}

func formatFieldValue(v any) string {
	switch val := v.(type) {
	case float64:
		return fmt.Sprintf("%g", val)
	case int:
		return fmt.Sprintf("%di", val)
	case int64:
		return fmt.Sprintf("%di", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// EscapeTag escapes a tag key or value per the line protocol spec.
func EscapeTag(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "=", "\\=")
	return s
}

// EscapeMeasurement escapes a measurement name per the line protocol spec.
func EscapeMeasurement(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	return s
}
