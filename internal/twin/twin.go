// Package twin implements the desired/reported reconciliation logic
// (spec §4.F): DealTwin, ValidateData, and the admin write path Set.
package twin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/edge-mapper/internal/driver"
	"github.com/nerrad567/edge-mapper/internal/model"
)

// ErrInvalidValue is returned by ValidateData/Set when the candidate value
// fails validation (spec §7.4: surfaced to the admin caller as a 500 with
// a message; twin state is left unchanged).
var ErrInvalidValue = errors.New("twin: invalid value")

// VisitorBuilder constructs the driver.Visitor for one property, resolving
// offset per spec §4.E.
type VisitorBuilder func(propertyName string) driver.Visitor

// ValidateData implements spec §4.F: an empty value is invalid; any
// further range/type checks are advisory and not enforced by the core.
func ValidateData(value string) error {
	if value == "" {
		return ErrInvalidValue
	}
	return nil
}

// DealTwin implements spec §4.F's reconciliation step. It is called once
// per twin per tick from the device runtime, under the device's mutex.
func DealTwin(ctx context.Context, d driver.Driver, c driver.Client, t *model.Twin, visitor driver.Visitor) {
	desired := t.ObservedDesired.Value
	if desired == "" || desired == t.Reported.Value {
		return
	}

	if err := d.Write(ctx, c, desired, visitor); err != nil {
		// Logged by the caller (the runtime owns the logger); the next
		// iteration retries because desired != reported still holds.
		return
	}

	now := time.Now().UnixMilli()
	raw, err := d.Read(ctx, c, visitor)
	if err != nil {
		// Optimistic update: assume the write landed.
		t.Reported = model.TwinValue{Value: desired, Metadata: model.Metadata{Timestamp: now, Type: "string"}}
		return
	}
	t.Reported = model.TwinValue{Value: string(raw), Metadata: model.Metadata{Timestamp: now, Type: "string"}}
}

// Set is the admin write path (spec §4.F): validates, writes through the
// driver, reads back, updates the twin, and returns the observed (or
// echoed) value.
func Set(ctx context.Context, d driver.Driver, c driver.Client, t *model.Twin, visitor driver.Visitor, value string) (string, error) {
	if err := ValidateData(value); err != nil {
		return "", err
	}
	if err := d.Write(ctx, c, value, visitor); err != nil {
		return "", fmt.Errorf("twin: write: %w", err)
	}

	now := time.Now().UnixMilli()
	raw, err := d.Read(ctx, c, visitor)
	observed := value
	if err == nil {
		observed = string(raw)
	}
	t.Reported = model.TwinValue{Value: observed, Metadata: model.Metadata{Timestamp: now, Type: "string"}}
	t.ObservedDesired = model.TwinValue{Value: value, Metadata: model.Metadata{Timestamp: now, Type: "string"}}
	return observed, nil
}
