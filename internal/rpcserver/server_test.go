package rpcserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nerrad567/edge-mapper/internal/device"
	"github.com/nerrad567/edge-mapper/internal/driver"
	"github.com/nerrad567/edge-mapper/internal/rpcapi"
)

func newTestServer() *Server {
	return New(device.NewRegistry(), driver.NewFactory(), nil, nil, nil)
}

func testDeviceWire(namespace, name string) rpcapi.DeviceWire {
	return rpcapi.DeviceWire{
		Name:           name,
		Namespace:      namespace,
		ModelReference: "thermostat-v1",
		Protocol: rpcapi.ProtocolWire{
			ProtocolName: "stub",
			ConfigData:   map[string]rpcapi.AnyValue{},
		},
		Properties: []rpcapi.PropertyWire{
			{
				Name:         "temperature",
				Visitors:     map[string]rpcapi.AnyValue{},
				CollectCycle: 1000,
				ReportCycle:  1000,
			},
		},
		Status: "ok",
	}
}

func TestRegisterDevice_RecordsRPCMetric(t *testing.T) {
	s := newTestServer()
	if _, err := s.RegisterDevice(context.Background(), &rpcapi.RegisterDeviceRequest{Device: testDeviceWire("room1", "thermostat")}); err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}

	rec := httptest.NewRecorder()
	s.metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `edge_mapper_rpc_calls_total{method="RegisterDevice",outcome="ok"} 1`) {
		t.Fatalf("metrics output missing RegisterDevice counter:\n%s", rec.Body.String())
	}
}

func TestGetDevice_UnknownRecordsErrorOutcome(t *testing.T) {
	s := newTestServer()
	if _, err := s.GetDevice(context.Background(), &rpcapi.GetDeviceRequest{Namespace: "room1", Name: "ghost"}); err == nil {
		t.Fatal("expected error for unknown device")
	}

	rec := httptest.NewRecorder()
	s.metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `edge_mapper_rpc_calls_total{method="GetDevice",outcome="error"} 1`) {
		t.Fatalf("metrics output missing GetDevice error counter:\n%s", rec.Body.String())
	}
}

func TestRegisterDevice_StartsRuntime(t *testing.T) {
	s := newTestServer()
	resp, err := s.RegisterDevice(context.Background(), &rpcapi.RegisterDeviceRequest{Device: testDeviceWire("room1", "thermostat")})
	if err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}
	if resp.DeviceName != "thermostat" {
		t.Fatalf("DeviceName = %q, want thermostat", resp.DeviceName)
	}

	entries := s.Registry().List()
	if len(entries) != 1 {
		t.Fatalf("registry has %d entries, want 1", len(entries))
	}
	if entries[0].Runtime == nil {
		t.Fatal("expected runtime to be attached")
	}
}

func TestUpdateDevice_ReplacesRuntimeWithoutDuplicate(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	if _, err := s.RegisterDevice(ctx, &rpcapi.RegisterDeviceRequest{Device: testDeviceWire("room1", "thermostat")}); err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}
	first, ok := s.Registry().GetByNamespace("room1", "thermostat")
	if !ok {
		t.Fatal("expected device registered")
	}
	firstRuntime := first.Runtime

	if _, err := s.UpdateDevice(ctx, &rpcapi.UpdateDeviceRequest{Device: testDeviceWire("room1", "thermostat")}); err != nil {
		t.Fatalf("UpdateDevice: %v", err)
	}

	entries := s.Registry().List()
	if len(entries) != 1 {
		t.Fatalf("registry has %d entries after update, want 1 (no duplicate)", len(entries))
	}
	second, ok := s.Registry().GetByNamespace("room1", "thermostat")
	if !ok {
		t.Fatal("expected device still registered after update")
	}
	if second.Runtime == firstRuntime {
		t.Fatal("expected a fresh runtime to replace the old one")
	}

	if err := second.Runtime.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestRemoveDevice_UnknownReturnsNotFound(t *testing.T) {
	s := newTestServer()
	_, err := s.RemoveDevice(context.Background(), &rpcapi.RemoveDeviceRequest{Namespace: "room1", Name: "missing"})
	if err == nil {
		t.Fatal("expected error for unknown device")
	}
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", status.Code(err))
	}
}

func TestRemoveDevice_StopsAndDetaches(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()
	if _, err := s.RegisterDevice(ctx, &rpcapi.RegisterDeviceRequest{Device: testDeviceWire("room1", "thermostat")}); err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}

	if _, err := s.RemoveDevice(ctx, &rpcapi.RemoveDeviceRequest{Namespace: "room1", Name: "thermostat"}); err != nil {
		t.Fatalf("RemoveDevice: %v", err)
	}
	if _, ok := s.Registry().GetByNamespace("room1", "thermostat"); ok {
		t.Fatal("expected device removed from registry")
	}
}

func TestDeviceModel_CreateUpdateRemove(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()
	m := rpcapi.ModelWire{Name: "thermostat-v1", Namespace: "room1"}

	if _, err := s.CreateDeviceModel(ctx, &rpcapi.CreateDeviceModelRequest{Model: m}); err != nil {
		t.Fatalf("CreateDeviceModel: %v", err)
	}
	key := "room1/thermostat-v1"
	if _, ok := s.models.Get(key); !ok {
		t.Fatal("expected model present after create")
	}

	m.Description = "updated"
	if _, err := s.UpdateDeviceModel(ctx, &rpcapi.UpdateDeviceModelRequest{Model: m}); err != nil {
		t.Fatalf("UpdateDeviceModel: %v", err)
	}
	stored, ok := s.models.Get(key)
	if !ok || stored.Description != "updated" {
		t.Fatalf("expected updated model, got %+v (ok=%v)", stored, ok)
	}

	if _, err := s.RemoveDeviceModel(ctx, &rpcapi.RemoveDeviceModelRequest{Namespace: "room1", Name: "thermostat-v1"}); err != nil {
		t.Fatalf("RemoveDeviceModel: %v", err)
	}
	if _, ok := s.models.Get(key); ok {
		t.Fatal("expected model removed")
	}

	_, err := s.RemoveDeviceModel(ctx, &rpcapi.RemoveDeviceModelRequest{Namespace: "room1", Name: "thermostat-v1"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound on second remove", status.Code(err))
	}
}

func TestGetDevice_WithDataTogglesTwins(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()
	if _, err := s.RegisterDevice(ctx, &rpcapi.RegisterDeviceRequest{Device: testDeviceWire("room1", "thermostat")}); err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}

	without, err := s.GetDevice(ctx, &rpcapi.GetDeviceRequest{Namespace: "room1", Name: "thermostat", WithData: false})
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if len(without.Twins) != 0 {
		t.Fatalf("expected no twins without with_data, got %d", len(without.Twins))
	}

	with, err := s.GetDevice(ctx, &rpcapi.GetDeviceRequest{Namespace: "room1", Name: "thermostat", WithData: true})
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if len(with.Twins) == 0 {
		t.Fatal("expected twins with with_data=true")
	}
}

func TestGetDevice_UnknownReturnsNotFound(t *testing.T) {
	s := newTestServer()
	_, err := s.GetDevice(context.Background(), &rpcapi.GetDeviceRequest{Namespace: "room1", Name: "missing"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", status.Code(err))
	}
}

func TestSet_UnknownDeviceReturnsNotFound(t *testing.T) {
	s := newTestServer()
	_, err := s.Set(context.Background(), "room1/missing", "temperature", "21")
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", status.Code(err))
	}
}

func TestSet_WritesThroughRuntime(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()
	if _, err := s.RegisterDevice(ctx, &rpcapi.RegisterDeviceRequest{Device: testDeviceWire("room1", "thermostat")}); err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}

	observed, err := s.Set(ctx, "room1/thermostat", "temperature", "23")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if observed != "23" {
		t.Fatalf("observed = %q, want 23", observed)
	}
}
