package model

import "fmt"

// DeviceModel describes the shape of a class of device: its properties and
// their types, independent of any particular instance's wiring.
type DeviceModel struct {
	ID          string
	Name        string
	Namespace   string
	Description string
	Properties  []ModelProperty
}

// ModelProperty is one property definition on a DeviceModel.
type ModelProperty struct {
	Name        string
	DataType    string
	AccessMode  string // "ReadOnly" | "ReadWrite"
	Minimum     string
	Maximum     string
	Unit        string
	Description string
}

// Key returns the model's lookup key, namespace-qualified.
func (m *DeviceModel) Key() string {
	return CanonicalID(m.Namespace, m.Name)
}

// DeepCopy returns an independent copy of the model.
func (m *DeviceModel) DeepCopy() *DeviceModel {
	if m == nil {
		return nil
	}
	cpy := *m
	if m.Properties != nil {
		cpy.Properties = make([]ModelProperty, len(m.Properties))
		copy(cpy.Properties, m.Properties)
	}
	return &cpy
}

// ProtocolConfig carries the protocol name plus its opaque configuration,
// unified under one shape per spec §9 design note 4 ("ProtocolConfig is
// defined twice across headers with divergent fields; unify under the
// DeviceInstance-embedded shape").
type ProtocolConfig struct {
	ProtocolName string
	ConfigData   map[string]any
}

// PushMethodName enumerates the supported push publishers.
type PushMethodName string

const (
	PushMethodHTTP    PushMethodName = "http"
	PushMethodMQTT    PushMethodName = "mqtt"
	PushMethodOTEL    PushMethodName = "otel"
	PushMethodUnknown PushMethodName = "unknown"
)

// DBMethodName enumerates the supported time-series recorders.
type DBMethodName string

const (
	DBMethodMySQL     DBMethodName = "mysql"
	DBMethodRedis     DBMethodName = "redis"
	DBMethodInfluxDB2 DBMethodName = "influxdb2"
	DBMethodTDengine  DBMethodName = "tdengine"
	DBMethodUnknown   DBMethodName = "unknown"
)

// PushMethod is a property's push-channel configuration.
type PushMethod struct {
	MethodName   PushMethodName
	MethodConfig string // JSON, parsed by the resolved publisher
}

// DBMethod is a property's recorder configuration.
type DBMethod struct {
	DBMethodName DBMethodName
	DBConfig     string // JSON, parsed by the resolved recorder
}

// DeviceProperty binds a model property to a protocol visitor and,
// optionally, to sinks.
type DeviceProperty struct {
	Name             string
	ModelName        string
	Protocol         string
	Visitors         map[string]any // opaque JSON decoded to a map
	CollectCycle     int64          // ms; not enforced by the coarse tick, kept for future refinement
	ReportCycle      int64          // ms; same caveat
	ReportToCloud    bool
	PushMethod       *PushMethod
	DBMethod         *DBMethod
	ModelPropertyRef string
}

// Method is a named write target on an instance (a "SetProperty"-style
// invocation target); synthesized automatically when twins are synthesized.
type Method struct {
	Name       string
	Properties []string
}

// Metadata stamps a twin value with when it was produced and its logical type.
type Metadata struct {
	Timestamp int64 // unix millis
	Type      string
}

// TwinValue is one side (desired or reported) of a twin.
type TwinValue struct {
	Value    string
	Metadata Metadata
}

// Twin is the per-property reconciliation record: desired vs. reported.
type Twin struct {
	PropertyName    string
	ObservedDesired TwinValue
	Reported        TwinValue

	// propertyIndex is the resolved index into the owning instance's
	// Properties slice; -1 until resolved. Modeled as an index rather than
	// a pointer back-reference per spec §9 design note 2.
	propertyIndex int
}

// PropertyRef returns the DeviceProperty this twin refers to, or nil if
// unresolved or out of range.
func (t *Twin) PropertyRef(owner *DeviceInstance) *DeviceProperty {
	if t == nil || owner == nil || t.propertyIndex < 0 || t.propertyIndex >= len(owner.Properties) {
		return nil
	}
	return &owner.Properties[t.propertyIndex]
}

// Index returns the resolved index into the owning instance's Properties
// slice, or -1 if unresolved. Callers needing the index itself (e.g. to
// resolve a per-property offset) use this instead of PropertyRef.
func (t *Twin) Index() int {
	return t.propertyIndex
}

// Status is the normalized device health/connectivity state (spec §3.5).
type Status string

const (
	StatusOK           Status = "ok"
	StatusOnline       Status = "online"
	StatusOffline      Status = "offline"
	StatusDisconnected Status = "disconnected"
	StatusUnhealthy    Status = "unhealthy"
	StatusUnknown      Status = "unknown"
)

// NormalizeStatus implements the spec §3 invariant 5 normalization rule.
// It is idempotent: NormalizeStatus(string(NormalizeStatus(s))) == NormalizeStatus(s).
func NormalizeStatus(raw string) Status {
	switch raw {
	case "OK", "ONLINE", "ok", "online":
		return StatusOK
	case "OFFLINE", "DOWN", "offline", "down":
		return StatusOffline
	case "":
		return StatusOffline
	case string(StatusDisconnected):
		return StatusDisconnected
	case string(StatusUnhealthy):
		return StatusUnhealthy
	case string(StatusUnknown):
		return StatusUnknown
	default:
		return Status(raw)
	}
}

// DeviceInstance is the canonical per-device specification the registry
// holds. It owns all of its properties, twins, and methods by value; no
// component outside this package should keep a second owning reference to
// any of the nested slices (spec §9 design note 3).
type DeviceInstance struct {
	ID         string
	Name       string
	Namespace  string
	ModelRef   string
	Protocol   ProtocolConfig
	Properties []DeviceProperty
	Twins      []Twin
	Methods    []Method
	Status     Status
}

// CanonicalID returns "<namespace>/<name>", defaulting namespace to
// "default" per spec §3 when it is empty or has no printable byte.
func CanonicalID(namespace, name string) string {
	return fmt.Sprintf("%s/%s", NormalizeNamespace(namespace), name)
}

// NormalizeNamespace applies the spec §3/§4.J default-namespace rule.
func NormalizeNamespace(ns string) string {
	if !hasPrintable(ns) {
		return "default"
	}
	return ns
}

func hasPrintable(s string) bool {
	for _, r := range s {
		if r > ' ' && r < 0x7f || r > 0xa0 {
			return true
		}
	}
	return false
}

// Key returns the instance's canonical identity.
func (d *DeviceInstance) Key() string {
	return CanonicalID(d.Namespace, d.Name)
}

// DeepCopy returns an independent copy of the instance: every nested slice
// and map is cloned so mutation of the copy never reaches the original
// (mirrors the registry cache-isolation pattern used across this module).
func (d *DeviceInstance) DeepCopy() *DeviceInstance {
	if d == nil {
		return nil
	}
	cpy := *d
	cpy.Protocol.ConfigData = deepCopyMap(d.Protocol.ConfigData)

	if d.Properties != nil {
		cpy.Properties = make([]DeviceProperty, len(d.Properties))
		for i, p := range d.Properties {
			cpy.Properties[i] = p
			cpy.Properties[i].Visitors = deepCopyMap(p.Visitors)
			if p.PushMethod != nil {
				pm := *p.PushMethod
				cpy.Properties[i].PushMethod = &pm
			}
			if p.DBMethod != nil {
				dm := *p.DBMethod
				cpy.Properties[i].DBMethod = &dm
			}
		}
	}
	if d.Twins != nil {
		cpy.Twins = make([]Twin, len(d.Twins))
		copy(cpy.Twins, d.Twins)
	}
	if d.Methods != nil {
		cpy.Methods = make([]Method, len(d.Methods))
		for i, m := range d.Methods {
			cpy.Methods[i] = m
			if m.Properties != nil {
				cpy.Methods[i].Properties = append([]string(nil), m.Properties...)
			}
		}
	}
	return &cpy
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		return v
	}
}

// SynthesizeTwins implements spec §3 invariant 2: if the instance arrives
// with zero twins but at least one property, a twin is created per property
// and a synthetic "SetProperty" method is added referencing every property.
// Existing twins/methods are left untouched; a twin's propertyIndex is
// resolved by matching PropertyName against Properties.
func (d *DeviceInstance) SynthesizeTwins() {
	if len(d.Twins) == 0 && len(d.Properties) > 0 {
		d.Twins = make([]Twin, len(d.Properties))
		names := make([]string, len(d.Properties))
		for i, p := range d.Properties {
			d.Twins[i] = Twin{PropertyName: p.Name, propertyIndex: i}
			names[i] = p.Name
		}
		d.Methods = append(d.Methods, Method{Name: "SetProperty", Properties: names})
	}
	d.ResolveTwinRefs()
}

// ResolveTwinRefs re-derives each twin's propertyIndex by name. Call after
// any mutation of Properties or Twins (e.g. after DeepCopy, or after
// wire-parsing populates both slices independently).
func (d *DeviceInstance) ResolveTwinRefs() {
	byName := make(map[string]int, len(d.Properties))
	for i, p := range d.Properties {
		byName[p.Name] = i
	}
	for i := range d.Twins {
		if idx, ok := byName[d.Twins[i].PropertyName]; ok {
			d.Twins[i].propertyIndex = idx
		} else {
			d.Twins[i].propertyIndex = -1
		}
	}
}
