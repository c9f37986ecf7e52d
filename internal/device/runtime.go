package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/edge-mapper/internal/driver"
	"github.com/nerrad567/edge-mapper/internal/model"
	"github.com/nerrad567/edge-mapper/internal/sink"
	"github.com/nerrad567/edge-mapper/internal/sink/publish"
	"github.com/nerrad567/edge-mapper/internal/twin"
)

// Logger is the minimal logging surface the runtime needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger is the default logger until SetLogger is called.
var NoopLogger Logger = noopLogger{}

// Reporter is the control-plane reporting surface the runtime calls into on
// status change and on every twin read. It is satisfied by
// internal/rpcclient.Client; declaring it here (rather than importing that
// package) keeps device free of any dependency on the gRPC transport.
type Reporter interface {
	ReportDeviceStatus(ctx context.Context, namespace, name string, status model.Status) error
	ReportTwinKV(ctx context.Context, namespace, name, property, value string, tsMillis int64) error
}

type nopReporter struct{}

func (nopReporter) ReportDeviceStatus(context.Context, string, string, model.Status) error { return nil }
func (nopReporter) ReportTwinKV(context.Context, string, string, string, string, int64) error {
	return nil
}

// NopReporter discards every report; used when no control-plane connection
// is configured (e.g. in tests, or a mapper run in standalone mode).
var NopReporter Reporter = nopReporter{}

// Metrics is the counter-increment surface the runtime drives: one tick per
// reconciliation pass, one sink failure per failed recorder/publisher call.
// Declaring it here rather than importing internal/metrics keeps device
// free of any dependency on Prometheus.
type Metrics interface {
	RegisterTick()
	RegisterSinkFailure(sink string)
}

type nopMetrics struct{}

func (nopMetrics) RegisterTick()              {}
func (nopMetrics) RegisterSinkFailure(string) {}

// NopMetrics discards every counter increment; used until SetMetrics is
// called.
var NopMetrics Metrics = nopMetrics{}

// TickInterval is the fixed reconciliation period (spec §4.E): one probe +
// full twin sweep per device per tick.
const TickInterval = time.Second

// Runtime owns the reconciliation loop for exactly one device instance.
type Runtime struct {
	mu       sync.Mutex
	instance *model.DeviceInstance
	drv      driver.Driver
	client   driver.Client

	recorders  *sink.Recorders
	publishers *publish.Cache
	reporter   Reporter
	logger     Logger
	metrics    Metrics
	interval   time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRuntime builds a Runtime for inst, bound to drv for protocol access
// and recorders/publishers/reporter for fan-out. Pass NopReporter and empty
// sink collections when those concerns are not wired.
func NewRuntime(inst *model.DeviceInstance, drv driver.Driver, recorders *sink.Recorders, publishers *publish.Cache, reporter Reporter) *Runtime {
	if reporter == nil {
		reporter = NopReporter
	}
	return &Runtime{
		instance:   inst,
		drv:        drv,
		recorders:  recorders,
		publishers: publishers,
		reporter:   reporter,
		logger:     NoopLogger,
		metrics:    NopMetrics,
		interval:   TickInterval,
	}
}

// SetLogger overrides the default no-op logger.
func (r *Runtime) SetLogger(l Logger) { r.logger = l }

// SetMetrics overrides the default no-op metrics sink.
func (r *Runtime) SetMetrics(m Metrics) { r.metrics = m }

// Instance returns the runtime's device instance. Callers must hold off
// mutating the slices it exposes while the runtime is started; Set is the
// only safe way to change twin state on a running device.
func (r *Runtime) Instance() *model.DeviceInstance {
	return r.instance
}

// Start synthesizes twins, builds and initializes the driver client, does
// one forced status probe/report, and spawns the tick loop goroutine.
func (r *Runtime) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return ErrAlreadyRunning
	}

	r.instance.SynthesizeTwins()

	client, err := r.drv.New(r.instance.Protocol.ProtocolName, r.instance.Protocol.ConfigData)
	if err != nil {
		return fmt.Errorf("device: build client: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := r.drv.Init(ctx, client); err != nil {
		cancel()
		return fmt.Errorf("device: init client: %w", err)
	}
	r.client = client
	r.cancel = cancel
	r.done = make(chan struct{})

	r.probeStatus(ctx, true)

	go r.loop(ctx)
	return nil
}

// Stop cancels the tick loop, waits up to 500ms for it to exit, then tears
// down the driver client regardless of whether the wait timed out.
func (r *Runtime) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	client := r.client
	r.cancel = nil
	r.done = nil
	r.client = nil
	r.mu.Unlock()

	if cancel == nil {
		return ErrNotRunning
	}
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		r.logger.Warn("device: tick loop did not exit within 500ms, stopping driver anyway", "device", r.instance.Key())
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := r.drv.Stop(stopCtx, client); err != nil {
		r.logger.Warn("device: driver stop failed", "device", r.instance.Key(), "error", err)
	}
	if err := r.drv.Free(client); err != nil {
		r.logger.Warn("device: driver free failed", "device", r.instance.Key(), "error", err)
	}
	return nil
}

func (r *Runtime) loop(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick runs one reconciliation pass: probe status, report on change, and if
// (and only if) the device is healthy, sweep every twin.
func (r *Runtime) tick(ctx context.Context) {
	r.metrics.RegisterTick()
	ok := r.probeStatus(ctx, false)
	if !ok {
		return
	}
	for i := range r.instance.Twins {
		r.processTwin(ctx, i)
	}
}

// probeStatus reads and normalizes device health. It reports a status
// change to the control plane (or always, if force is set, covering the
// Start-time initial report). It returns whether the device is healthy
// enough to proceed with a twin sweep.
func (r *Runtime) probeStatus(ctx context.Context, force bool) bool {
	raw, err := r.drv.GetState(ctx, r.client)
	if err != nil {
		raw = ""
		r.logger.Warn("device: get state failed", "device", r.instance.Key(), "error", err)
	}
	status := model.NormalizeStatus(raw)

	if force || status != r.instance.Status {
		r.instance.Status = status
		if rerr := r.reporter.ReportDeviceStatus(ctx, r.instance.Namespace, r.instance.Name, status); rerr != nil {
			r.logger.Warn("device: report status failed", "device", r.instance.Key(), "error", rerr)
		}
	}

	return status == model.StatusOK || status == model.StatusOnline
}

// processTwin reads one property through the driver, fans the value out to
// the configured recorder/publisher/control-plane report, and runs the
// desired-state reconciliation step.
func (r *Runtime) processTwin(ctx context.Context, idx int) {
	t := &r.instance.Twins[idx]
	prop := t.PropertyRef(r.instance)
	if prop == nil {
		return
	}

	visitor := r.visitorFor(prop, t.Index())

	raw, err := r.drv.Read(ctx, r.client, visitor)
	if err != nil {
		r.logger.Warn("device: read failed", "device", r.instance.Key(), "property", prop.Name, "error", err)
	} else {
		value := string(raw)
		now := time.Now().UnixMilli()
		t.Reported = model.TwinValue{Value: value, Metadata: model.Metadata{Timestamp: now, Type: "string"}}

		r.record(prop, value, now)
		r.publish(prop, value, now)
		if rerr := r.reporter.ReportTwinKV(ctx, r.instance.Namespace, r.instance.Name, prop.Name, value, now); rerr != nil {
			r.logger.Warn("device: report twin failed", "device", r.instance.Key(), "property", prop.Name, "error", rerr)
		}
	}

	twin.DealTwin(ctx, r.drv, r.client, t, visitor)
}

func (r *Runtime) visitorFor(prop *model.DeviceProperty, propertyIndex int) driver.Visitor {
	return driver.Visitor{
		PropertyName: prop.Name,
		ProtocolName: r.instance.Protocol.ProtocolName,
		ConfigData:   prop.Visitors,
		Offset:       model.ResolveOffset(r.instance.Protocol.ConfigData, prop.Name, propertyIndex),
	}
}

func (r *Runtime) record(prop *model.DeviceProperty, value string, tsMillis int64) {
	if prop.DBMethod == nil || r.recorders == nil {
		return
	}
	rec := r.recorders.For(prop.DBMethod)
	if rec == nil {
		return
	}
	if !rec.Record(r.instance.Namespace, r.instance.Name, prop.Name, value, tsMillis) {
		r.logger.Warn("device: record failed", "device", r.instance.Key(), "property", prop.Name)
		r.metrics.RegisterSinkFailure(string(prop.DBMethod.DBMethodName))
	}
}

func (r *Runtime) publish(prop *model.DeviceProperty, value string, tsMillis int64) {
	if prop.PushMethod == nil || r.publishers == nil {
		return
	}
	payload := publish.Payload{
		DeviceName:   r.instance.Name,
		Namespace:    r.instance.Namespace,
		PropertyName: prop.Name,
		Value:        value,
		Type:         "string",
		Timestamp:    tsMillis,
	}
	if !r.publishers.PublishDynamic(string(prop.PushMethod.MethodName), prop.PushMethod.MethodConfig, payload) {
		r.logger.Warn("device: publish failed", "device", r.instance.Key(), "property", prop.Name)
		r.metrics.RegisterSinkFailure(string(prop.PushMethod.MethodName))
	}
}

// Set implements the admin write path (spec §4.F via §7.4): it resolves the
// named twin, validates and writes value through the driver, reads back,
// and returns the observed value.
func (r *Runtime) Set(ctx context.Context, propertyName, value string) (string, error) {
	r.mu.Lock()
	client := r.client
	r.mu.Unlock()
	if client == nil {
		return "", ErrNotRunning
	}

	for i := range r.instance.Twins {
		t := &r.instance.Twins[i]
		if t.PropertyName != propertyName {
			continue
		}
		prop := t.PropertyRef(r.instance)
		if prop == nil {
			return "", ErrUnknownTwin
		}
		visitor := r.visitorFor(prop, t.Index())
		observed, err := twin.Set(ctx, r.drv, client, t, visitor, value)
		if err != nil {
			return "", err
		}
		now := time.Now().UnixMilli()
		r.record(prop, observed, now)
		r.publish(prop, observed, now)
		if rerr := r.reporter.ReportTwinKV(ctx, r.instance.Namespace, r.instance.Name, prop.Name, observed, now); rerr != nil {
			r.logger.Warn("device: report twin failed", "device", r.instance.Key(), "property", prop.Name, "error", rerr)
		}
		return observed, nil
	}
	return "", ErrUnknownTwin
}
