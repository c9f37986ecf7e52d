package device

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/edge-mapper/internal/driver"
	"github.com/nerrad567/edge-mapper/internal/model"
)

type recordingReporter struct {
	mu       sync.Mutex
	statuses []model.Status
	twinKVs  int
}

func (r *recordingReporter) ReportDeviceStatus(_ context.Context, _, _ string, status model.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *recordingReporter) ReportTwinKV(_ context.Context, _, _, _, _ string, _ int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.twinKVs++
	return nil
}

func (r *recordingReporter) statusCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.statuses)
}

type recordingMetrics struct {
	mu           sync.Mutex
	ticks        int
	sinkFailures []string
}

func (m *recordingMetrics) RegisterTick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks++
}

func (m *recordingMetrics) RegisterSinkFailure(sink string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinkFailures = append(m.sinkFailures, sink)
}

func (m *recordingMetrics) tickCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks
}

func TestRuntime_StartReportsInitialStatus(t *testing.T) {
	inst := &model.DeviceInstance{
		Namespace:  "default",
		Name:       "sensor-1",
		Properties: []model.DeviceProperty{{Name: "temperature"}},
	}
	reporter := &recordingReporter{}
	rt := NewRuntime(inst, driver.NewStubDriver(), nil, nil, reporter)
	rt.interval = 10 * time.Millisecond

	if err := rt.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer rt.Stop()

	if reporter.statusCount() != 1 {
		t.Errorf("statusCount() after Start = %d, want 1 (forced initial report)", reporter.statusCount())
	}
	if inst.Status != model.StatusOK {
		t.Errorf("Instance.Status = %q, want %q", inst.Status, model.StatusOK)
	}
	if len(inst.Twins) != 1 {
		t.Errorf("len(Twins) = %d, want 1 (SynthesizeTwins on Start)", len(inst.Twins))
	}
}

func TestRuntime_StartTwiceFails(t *testing.T) {
	inst := &model.DeviceInstance{Namespace: "default", Name: "sensor-1"}
	rt := NewRuntime(inst, driver.NewStubDriver(), nil, nil, nil)

	if err := rt.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer rt.Stop()

	if err := rt.Start(); err != ErrAlreadyRunning {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestRuntime_TicksReportTwinValues(t *testing.T) {
	inst := &model.DeviceInstance{
		Namespace:  "default",
		Name:       "sensor-1",
		Properties: []model.DeviceProperty{{Name: "temperature"}},
	}
	reporter := &recordingReporter{}
	rt := NewRuntime(inst, driver.NewStubDriver(), nil, nil, reporter)
	rt.interval = 5 * time.Millisecond

	if err := rt.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer rt.Stop()

	deadline := time.After(time.Second)
	for {
		if reporter.twinKVs >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for twin KV reports from the tick loop")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRuntime_TicksIncrementMetrics(t *testing.T) {
	inst := &model.DeviceInstance{
		Namespace:  "default",
		Name:       "sensor-1",
		Properties: []model.DeviceProperty{{Name: "temperature"}},
	}
	metrics := &recordingMetrics{}
	rt := NewRuntime(inst, driver.NewStubDriver(), nil, nil, nil)
	rt.SetMetrics(metrics)
	rt.interval = 5 * time.Millisecond

	if err := rt.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer rt.Stop()

	deadline := time.After(time.Second)
	for {
		if metrics.tickCount() >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for tick metrics from the tick loop")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRuntime_StopThenStopFails(t *testing.T) {
	inst := &model.DeviceInstance{Namespace: "default", Name: "sensor-1"}
	rt := NewRuntime(inst, driver.NewStubDriver(), nil, nil, nil)

	if err := rt.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := rt.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := rt.Stop(); err != ErrNotRunning {
		t.Errorf("second Stop() error = %v, want ErrNotRunning", err)
	}
}

func TestRuntime_Set(t *testing.T) {
	inst := &model.DeviceInstance{
		Namespace:  "default",
		Name:       "sensor-1",
		Properties: []model.DeviceProperty{{Name: "setpoint"}},
	}
	rt := NewRuntime(inst, driver.NewStubDriver(), nil, nil, nil)
	rt.interval = time.Hour // keep the tick loop from interfering

	if err := rt.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer rt.Stop()

	observed, err := rt.Set(context.Background(), "setpoint", "21.5")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if observed != "21.5" {
		t.Errorf("Set() observed = %q, want %q", observed, "21.5")
	}
}

func TestRuntime_Set_UnknownTwin(t *testing.T) {
	inst := &model.DeviceInstance{Namespace: "default", Name: "sensor-1", Properties: []model.DeviceProperty{{Name: "x"}}}
	rt := NewRuntime(inst, driver.NewStubDriver(), nil, nil, nil)
	rt.interval = time.Hour
	if err := rt.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer rt.Stop()

	if _, err := rt.Set(context.Background(), "does-not-exist", "v"); err != ErrUnknownTwin {
		t.Errorf("Set() on unknown twin error = %v, want ErrUnknownTwin", err)
	}
}

func TestRuntime_Set_NotRunning(t *testing.T) {
	inst := &model.DeviceInstance{Namespace: "default", Name: "sensor-1"}
	rt := NewRuntime(inst, driver.NewStubDriver(), nil, nil, nil)

	if _, err := rt.Set(context.Background(), "x", "v"); err != ErrNotRunning {
		t.Errorf("Set() before Start error = %v, want ErrNotRunning", err)
	}
}
