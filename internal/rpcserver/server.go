package rpcserver

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nerrad567/edge-mapper/internal/device"
	"github.com/nerrad567/edge-mapper/internal/driver"
	"github.com/nerrad567/edge-mapper/internal/metrics"
	"github.com/nerrad567/edge-mapper/internal/model"
	"github.com/nerrad567/edge-mapper/internal/rpcapi"
	"github.com/nerrad567/edge-mapper/internal/sink"
	"github.com/nerrad567/edge-mapper/internal/sink/publish"
	"github.com/nerrad567/edge-mapper/internal/wire"
)

// Logger is the minimal logging surface the server needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger is the default logger until SetLogger is called.
var NoopLogger Logger = noopLogger{}

// Server implements rpcapi.MapperServer, wiring control-plane CRUD calls to
// the device registry and the capabilities (driver factory, sinks,
// reporter) every runtime it builds needs.
type Server struct {
	registry      *device.Registry
	models        *modelStore
	driverFactory *driver.Factory
	recorders     *sink.Recorders
	publishers    *publish.Cache
	reporter      device.Reporter
	logger        Logger
	metrics       *metrics.Collector
}

// New builds a Server. recorders/publishers/reporter may be nil to build
// runtimes with no sink fan-out or control-plane reporting (e.g. in tests).
func New(registry *device.Registry, driverFactory *driver.Factory, recorders *sink.Recorders, publishers *publish.Cache, reporter device.Reporter) *Server {
	return &Server{
		registry:      registry,
		models:        newModelStore(),
		driverFactory: driverFactory,
		recorders:     recorders,
		publishers:    publishers,
		reporter:      reporter,
		logger:        NoopLogger,
		metrics:       metrics.New(),
	}
}

// SetLogger overrides the default no-op logger.
func (s *Server) SetLogger(l Logger) { s.logger = l }

// SetMetrics overrides the default metrics collector (built fresh by New)
// with a shared one, so /metrics on internal/adminapi reflects RPC counts
// alongside the device runtimes' own. Runtimes built after this call
// receive it too.
func (s *Server) SetMetrics(m *metrics.Collector) { s.metrics = m }

var _ rpcapi.MapperServer = (*Server)(nil)

// outcome turns an error into the "ok"/"error" label RegisterRPCCall expects.
func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RegisterDevice implements spec §4.H: build model+instance, UpdateDev.
func (s *Server) RegisterDevice(ctx context.Context, req *rpcapi.RegisterDeviceRequest) (resp *rpcapi.RegisterDeviceResponse, err error) {
	defer func() { s.metrics.RegisterRPCCall("RegisterDevice", outcome(err)) }()
	resp, err = s.upsertDevice(req.Device)
	return resp, err
}

// UpdateDevice implements spec §4.H: identical semantics to RegisterDevice —
// the prior runtime under the same canonical id is replaced.
func (s *Server) UpdateDevice(ctx context.Context, req *rpcapi.UpdateDeviceRequest) (resp *rpcapi.RegisterDeviceResponse, err error) {
	defer func() { s.metrics.RegisterRPCCall("UpdateDevice", outcome(err)) }()
	resp, err = s.upsertDevice(req.Device)
	return resp, err
}

func (s *Server) upsertDevice(w rpcapi.DeviceWire) (*rpcapi.RegisterDeviceResponse, error) {
	inst := wire.DeviceFromWire(w)
	s.replaceRuntime(inst)
	return &rpcapi.RegisterDeviceResponse{DeviceName: inst.Name, Namespace: inst.Namespace}, nil
}

// replaceRuntime implements UpdateDev's idempotent-replace semantics (spec
// §4.H): any existing runtime under the same canonical id — or, failing
// that, the same short name — is detached and stopped before the new one
// starts.
func (s *Server) replaceRuntime(inst *model.DeviceInstance) {
	key := inst.Key()
	if entry, ok := s.registry.Detach(key); ok {
		_ = entry.Runtime.Stop()
	} else if entry, ok := s.registry.Get(inst.Name); ok {
		s.registry.Detach(entry.Instance.Key())
		_ = entry.Runtime.Stop()
	}

	drv := s.driverFactory.For(inst.Protocol.ProtocolName)
	rt := device.NewRuntime(inst, drv, s.recorders, s.publishers, s.reporter)
	rt.SetMetrics(s.metrics)
	s.registry.Add(inst, rt)
	if err := rt.Start(); err != nil {
		s.logger.Error("rpcserver: start runtime failed", "device", key, "error", err)
	}
}

// RemoveDevice implements spec §4.H RemoveDevice: detach, stop, free.
func (s *Server) RemoveDevice(ctx context.Context, req *rpcapi.RemoveDeviceRequest) (resp *rpcapi.GenericResponse, err error) {
	defer func() { s.metrics.RegisterRPCCall("RemoveDevice", outcome(err)) }()
	key := model.CanonicalID(req.Namespace, req.Name)
	entry, ok := s.registry.Detach(key)
	if !ok {
		err = status.Errorf(codes.NotFound, "%v: %s", ErrUnknownDevice, key)
		return nil, err
	}
	_ = entry.Runtime.Stop()
	return &rpcapi.GenericResponse{OK: true}, nil
}

// CreateDeviceModel implements spec §4.H CreateDeviceModel.
func (s *Server) CreateDeviceModel(ctx context.Context, req *rpcapi.CreateDeviceModelRequest) (resp *rpcapi.GenericResponse, err error) {
	defer func() { s.metrics.RegisterRPCCall("CreateDeviceModel", outcome(err)) }()
	s.models.Upsert(wire.ModelFromWire(req.Model))
	return &rpcapi.GenericResponse{OK: true}, nil
}

// UpdateDeviceModel implements spec §4.H UpdateDeviceModel.
func (s *Server) UpdateDeviceModel(ctx context.Context, req *rpcapi.UpdateDeviceModelRequest) (resp *rpcapi.GenericResponse, err error) {
	defer func() { s.metrics.RegisterRPCCall("UpdateDeviceModel", outcome(err)) }()
	s.models.Upsert(wire.ModelFromWire(req.Model))
	return &rpcapi.GenericResponse{OK: true}, nil
}

// RemoveDeviceModel implements spec §4.H RemoveDeviceModel.
func (s *Server) RemoveDeviceModel(ctx context.Context, req *rpcapi.RemoveDeviceModelRequest) (resp *rpcapi.GenericResponse, err error) {
	defer func() { s.metrics.RegisterRPCCall("RemoveDeviceModel", outcome(err)) }()
	key := model.CanonicalID(req.Namespace, req.Name)
	if !s.models.Remove(key) {
		err = status.Errorf(codes.NotFound, "%v: %s", ErrUnknownModel, key)
		return nil, err
	}
	return &rpcapi.GenericResponse{OK: true}, nil
}

// GetDevice implements spec §4.H GetDevice, including the with_data flag
// from SPEC_FULL.md §5 item 7: twins are included only when requested.
func (s *Server) GetDevice(ctx context.Context, req *rpcapi.GetDeviceRequest) (resp *rpcapi.GetDeviceResponse, err error) {
	defer func() { s.metrics.RegisterRPCCall("GetDevice", outcome(err)) }()
	entry, ok := s.registry.GetByNamespace(req.Namespace, req.Name)
	if !ok {
		err = status.Errorf(codes.NotFound, "%v: %s", ErrUnknownDevice, model.CanonicalID(req.Namespace, req.Name))
		return nil, err
	}

	resp = &rpcapi.GetDeviceResponse{
		Namespace: entry.Instance.Namespace,
		Name:      entry.Instance.Name,
		Status:    string(entry.Instance.Status),
	}
	if req.WithData {
		resp.Twins = make([]rpcapi.TwinWire, len(entry.Instance.Twins))
		for i, t := range entry.Instance.Twins {
			resp.Twins[i] = rpcapi.TwinWire{
				PropertyName:    t.PropertyName,
				ObservedDesired: rpcapi.ValueWire{Value: t.ObservedDesired.Value, Metadata: rpcapi.MetadataWire{Timestamp: t.ObservedDesired.Metadata.Timestamp, Type: t.ObservedDesired.Metadata.Type}},
				Reported:        rpcapi.ValueWire{Value: t.Reported.Value, Metadata: rpcapi.MetadataWire{Timestamp: t.Reported.Metadata.Timestamp, Type: t.Reported.Metadata.Type}},
			}
		}
	}
	return resp, nil
}

// Set resolves key (canonical id, dotted form, or short name) and issues an
// admin write through its runtime, for use by internal/adminapi. Errors
// from the runtime (unknown twin, not running, validation) are surfaced to
// the admin caller as a 500 with a message, per spec §7.4.
func (s *Server) Set(ctx context.Context, key, propertyName, value string) (observed string, err error) {
	defer func() { s.metrics.RegisterRPCCall("Set", outcome(err)) }()
	entry, ok := s.registry.Get(key)
	if !ok {
		err = status.Errorf(codes.NotFound, "%v: %s", ErrUnknownDevice, key)
		return "", err
	}
	observed, err = entry.Runtime.Set(ctx, propertyName, value)
	if err != nil {
		err = fmt.Errorf("rpcserver: set %s/%s: %w", key, propertyName, err)
		return "", err
	}
	return observed, nil
}

// Registry exposes the underlying registry read-only accessors for
// internal/adminapi's GET surface.
func (s *Server) Registry() *device.Registry { return s.registry }

// GetModel exposes a model lookup by canonical id for internal/adminapi's
// meta/model route.
func (s *Server) GetModel(key string) (*model.DeviceModel, bool) {
	return s.models.Get(key)
}
