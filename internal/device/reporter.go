package device

import (
	"context"
	"errors"

	"github.com/nerrad567/edge-mapper/internal/model"
)

// FanOutReporter dispatches every report to a fixed set of Reporters, e.g.
// the control-plane client and the admin HTTP server's watch feed. Each
// target is called regardless of whether an earlier one failed; the
// returned error joins every failure (spec §7: transport errors are logged
// and recovered locally, never fatal).
type FanOutReporter struct {
	targets []Reporter
}

// NewFanOutReporter builds a FanOutReporter over targets. Nil targets are
// skipped, so callers can pass an optional reporter without a nil check.
func NewFanOutReporter(targets ...Reporter) *FanOutReporter {
	filtered := make([]Reporter, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			filtered = append(filtered, t)
		}
	}
	return &FanOutReporter{targets: filtered}
}

func (f *FanOutReporter) ReportDeviceStatus(ctx context.Context, namespace, name string, status model.Status) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.ReportDeviceStatus(ctx, namespace, name, status); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanOutReporter) ReportTwinKV(ctx context.Context, namespace, name, property, value string, tsMillis int64) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.ReportTwinKV(ctx, namespace, name, property, value, tsMillis); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Reporter = (*FanOutReporter)(nil)
