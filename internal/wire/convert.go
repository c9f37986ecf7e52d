package wire

import (
	"github.com/nerrad567/edge-mapper/internal/model"
	"github.com/nerrad567/edge-mapper/internal/rpcapi"
)

// ModelFromWire converts a wire ModelWire into a model.DeviceModel,
// defaulting namespace per spec §4.J.
func ModelFromWire(w rpcapi.ModelWire) *model.DeviceModel {
	props := make([]model.ModelProperty, len(w.Properties))
	for i, p := range w.Properties {
		props[i] = model.ModelProperty{
			Name:        p.Name,
			DataType:    p.DataType,
			AccessMode:  p.AccessMode,
			Minimum:     p.Minimum,
			Maximum:     p.Maximum,
			Unit:        p.Unit,
			Description: p.Description,
		}
	}
	return &model.DeviceModel{
		ID:          w.ID,
		Name:        w.Name,
		Namespace:   model.NormalizeNamespace(w.Namespace),
		Description: w.Description,
		Properties:  props,
	}
}

// ModelToWire is the inverse of ModelFromWire.
func ModelToWire(m *model.DeviceModel) rpcapi.ModelWire {
	props := make([]rpcapi.ModelPropertyWire, len(m.Properties))
	for i, p := range m.Properties {
		props[i] = rpcapi.ModelPropertyWire{
			Name:        p.Name,
			DataType:    p.DataType,
			AccessMode:  p.AccessMode,
			Minimum:     p.Minimum,
			Maximum:     p.Maximum,
			Unit:        p.Unit,
			Description: p.Description,
		}
	}
	return rpcapi.ModelWire{
		ID:          m.ID,
		Name:        m.Name,
		Namespace:   m.Namespace,
		Description: m.Description,
		Properties:  props,
	}
}

// DeviceFromWire converts a wire DeviceWire into a model.DeviceInstance,
// lowering protocol configData, visitors, pushMethod and dbMethod per spec
// §4.J, and defaulting namespace.
func DeviceFromWire(w rpcapi.DeviceWire) *model.DeviceInstance {
	properties := make([]model.DeviceProperty, len(w.Properties))
	for i, p := range w.Properties {
		properties[i] = model.DeviceProperty{
			Name:             p.Name,
			ModelName:        p.ModelName,
			Protocol:         p.Protocol,
			Visitors:         decodeAnyMap(p.Visitors),
			CollectCycle:     p.CollectCycle,
			ReportCycle:      p.ReportCycle,
			ReportToCloud:    p.ReportToCloud,
			PushMethod:       pushMethodFromWire(p.PushMethod),
			DBMethod:         dbMethodFromWire(p.DBMethod),
			ModelPropertyRef: p.ModelPropertyRef,
		}
	}

	twins := make([]model.Twin, len(w.Twins))
	for i, t := range w.Twins {
		twins[i] = model.Twin{
			PropertyName:    t.PropertyName,
			ObservedDesired: valueFromWire(t.ObservedDesired),
			Reported:        valueFromWire(t.Reported),
		}
	}

	methods := make([]model.Method, len(w.Methods))
	for i, m := range w.Methods {
		methods[i] = model.Method{Name: m.Name, Properties: append([]string(nil), m.PropertyNames...)}
	}

	inst := &model.DeviceInstance{
		ID:        w.ID,
		Name:      w.Name,
		Namespace: model.NormalizeNamespace(w.Namespace),
		ModelRef:  w.ModelReference,
		Protocol: model.ProtocolConfig{
			ProtocolName: w.Protocol.ProtocolName,
			ConfigData:   decodeAnyMap(w.Protocol.ConfigData),
		},
		Properties: properties,
		Twins:      twins,
		Methods:    methods,
		Status:     model.NormalizeStatus(w.Status),
	}
	inst.ResolveTwinRefs()
	return inst
}

// DeviceToWire is the inverse of DeviceFromWire, preserving the round-trip
// invariant (spec §8 property 7) on name, namespace, modelRef, protocolName,
// property names and method names. PushMethod/DBMethod are not carried back
// out: each property's PushMethod and DBMethod are left nil, since the
// original wrapper shape (mqtt/http/otel, mysql/redis/...) is not retained
// by the internal model once lowered.
func DeviceToWire(d *model.DeviceInstance) rpcapi.DeviceWire {
	properties := make([]rpcapi.PropertyWire, len(d.Properties))
	for i, p := range d.Properties {
		properties[i] = rpcapi.PropertyWire{
			Name:             p.Name,
			ModelName:        p.ModelName,
			Protocol:         p.Protocol,
			Visitors:         encodeAnyMap(p.Visitors),
			CollectCycle:     p.CollectCycle,
			ReportCycle:      p.ReportCycle,
			ReportToCloud:    p.ReportToCloud,
			ModelPropertyRef: p.ModelPropertyRef,
		}
	}

	twins := make([]rpcapi.TwinWire, len(d.Twins))
	for i, t := range d.Twins {
		twins[i] = rpcapi.TwinWire{
			PropertyName:    t.PropertyName,
			ObservedDesired: valueToWire(t.ObservedDesired),
			Reported:        valueToWire(t.Reported),
		}
	}

	methods := make([]rpcapi.MethodWire, len(d.Methods))
	for i, m := range d.Methods {
		methods[i] = rpcapi.MethodWire{Name: m.Name, PropertyNames: append([]string(nil), m.Properties...)}
	}

	return rpcapi.DeviceWire{
		ID:             d.ID,
		Name:           d.Name,
		Namespace:      d.Namespace,
		ModelReference: d.ModelRef,
		Protocol: rpcapi.ProtocolWire{
			ProtocolName: d.Protocol.ProtocolName,
			ConfigData:   encodeAnyMap(d.Protocol.ConfigData),
		},
		Properties: properties,
		Twins:      twins,
		Methods:    methods,
		Status:     string(d.Status),
	}
}

func valueFromWire(v rpcapi.ValueWire) model.TwinValue {
	return model.TwinValue{
		Value:    v.Value,
		Metadata: model.Metadata{Timestamp: v.Metadata.Timestamp, Type: v.Metadata.Type},
	}
}

func valueToWire(v model.TwinValue) rpcapi.ValueWire {
	return rpcapi.ValueWire{
		Value:    v.Value,
		Metadata: rpcapi.MetadataWire{Timestamp: v.Metadata.Timestamp, Type: v.Metadata.Type},
	}
}
