package wire

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nerrad567/edge-mapper/internal/model"
	"github.com/nerrad567/edge-mapper/internal/rpcapi"
)

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestDecodeAny(t *testing.T) {
	tests := []struct {
		name string
		in   rpcapi.AnyValue
		want any
	}{
		{"string", rpcapi.AnyValue{TypeURL: typeURLString, Value: rawJSON(t, "hello")}, "hello"},
		{"int32", rpcapi.AnyValue{TypeURL: typeURLInt32, Value: rawJSON(t, 5)}, int64(5)},
		{"int64", rpcapi.AnyValue{TypeURL: typeURLInt64, Value: rawJSON(t, 9000000000)}, int64(9000000000)},
		{"double", rpcapi.AnyValue{TypeURL: typeURLDouble, Value: rawJSON(t, 3.5)}, 3.5},
		{"bool", rpcapi.AnyValue{TypeURL: typeURLBool, Value: rawJSON(t, true)}, true},
		{"unknown type falls back to wrapped value", rpcapi.AnyValue{TypeURL: "type.googleapis.com/custom.Thing", Value: rawJSON(t, map[string]any{"value": "x"})}, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeAny(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeAny() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeviceFromWire_DefaultsNamespace(t *testing.T) {
	w := rpcapi.DeviceWire{Name: "sensor-1"}
	inst := DeviceFromWire(w)
	if inst.Namespace != "default" {
		t.Errorf("Namespace = %q, want %q", inst.Namespace, "default")
	}
}

func TestRoundTrip_PreservesIdentityFields(t *testing.T) {
	original := rpcapi.DeviceWire{
		Name:           "sensor-1",
		Namespace:      "factory",
		ModelReference: "model-a",
		Protocol:       rpcapi.ProtocolWire{ProtocolName: "modbus"},
		Properties: []rpcapi.PropertyWire{
			{Name: "temperature"},
			{Name: "humidity"},
		},
		Methods: []rpcapi.MethodWire{
			{Name: "SetProperty", PropertyNames: []string{"temperature", "humidity"}},
		},
	}

	inst := DeviceFromWire(original)
	roundTripped := DeviceToWire(inst)

	if roundTripped.Name != original.Name {
		t.Errorf("Name = %q, want %q", roundTripped.Name, original.Name)
	}
	if roundTripped.Namespace != original.Namespace {
		t.Errorf("Namespace = %q, want %q", roundTripped.Namespace, original.Namespace)
	}
	if roundTripped.ModelReference != original.ModelReference {
		t.Errorf("ModelReference = %q, want %q", roundTripped.ModelReference, original.ModelReference)
	}
	if roundTripped.Protocol.ProtocolName != original.Protocol.ProtocolName {
		t.Errorf("Protocol.ProtocolName = %q, want %q", roundTripped.Protocol.ProtocolName, original.Protocol.ProtocolName)
	}

	gotNames := make([]string, len(roundTripped.Properties))
	for i, p := range roundTripped.Properties {
		gotNames[i] = p.Name
	}
	wantNames := []string{"temperature", "humidity"}
	if diff := cmp.Diff(wantNames, gotNames); diff != "" {
		t.Errorf("property names mismatch (-want +got):\n%s", diff)
	}

	if len(roundTripped.Methods) != 1 || roundTripped.Methods[0].Name != "SetProperty" {
		t.Errorf("Methods = %+v, want a single SetProperty method", roundTripped.Methods)
	}
}

func TestPushMethodFromWire_MQTTDefaults(t *testing.T) {
	w := &rpcapi.PushMethodWire{MQTT: &rpcapi.MQTTConfigWire{BrokerURL: "broker.local"}}
	pm := pushMethodFromWire(w)
	if pm.MethodName != model.PushMethodMQTT {
		t.Fatalf("MethodName = %q, want %q", pm.MethodName, model.PushMethodMQTT)
	}
	var cfg map[string]any
	if err := json.Unmarshal([]byte(pm.MethodConfig), &cfg); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	if cfg["port"] != float64(1883) {
		t.Errorf("port default = %v, want 1883", cfg["port"])
	}
	if cfg["keepAlive"] != float64(60) {
		t.Errorf("keepAlive default = %v, want 60", cfg["keepAlive"])
	}
}

func TestDBMethodFromWire_MySQL(t *testing.T) {
	w := &rpcapi.DBMethodWire{MySQL: &rpcapi.MySQLConfigWire{Addr: "127.0.0.1", Database: "telemetry"}}
	dm := dbMethodFromWire(w)
	if dm.DBMethodName != model.DBMethodMySQL {
		t.Errorf("DBMethodName = %q, want %q", dm.DBMethodName, model.DBMethodMySQL)
	}
}
