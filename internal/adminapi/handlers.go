package adminapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/edge-mapper/internal/model"
)

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.writeOK(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

// handleDeviceRead serves GET device/<ns>/<name>/<prop>: the current
// reported value for one property. An unknown device is spec §8 boundary
// 10's literal 500, not 404. If the registry has no live runtime for the
// device (e.g. it is mid-restart after UpdateDev), the last value cached by
// localstate is served instead of failing the request outright.
func (s *Server) handleDeviceRead(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")
	property := chi.URLParam(r, "property")

	entry, ok := s.mapper.Registry().Get(model.CanonicalID(namespace, name))
	if !ok {
		if s.readFromLocalState(w, namespace, name, property) {
			return
		}
		s.writeUnknownDevice(w, "unknown device: "+namespace+"/"+name)
		return
	}

	for _, t := range entry.Instance.Twins {
		if t.PropertyName == property {
			s.writeOK(w, map[string]any{
				"deviceName":   entry.Instance.Name,
				"namespace":    entry.Instance.Namespace,
				"propertyName": property,
				"value":        t.Reported.Value,
				"timestamp":    t.Reported.Metadata.Timestamp,
			})
			return
		}
	}
	s.writeNotFound(w, "unknown property: "+property)
}

// readFromLocalState serves a cached value when the registry has nothing for
// this device, reporting true only when a value was found and written.
func (s *Server) readFromLocalState(w http.ResponseWriter, namespace, name, property string) bool {
	if s.localState == nil {
		return false
	}
	value, ts, ok := s.localState.GetTwinValue(context.Background(), namespace, name, property)
	if !ok {
		return false
	}
	s.writeOK(w, map[string]any{
		"deviceName":   name,
		"namespace":    namespace,
		"propertyName": property,
		"value":        value,
		"timestamp":    ts,
	})
	return true
}

// handleDeviceMethodList serves GET devicemethod/<ns>/<name>: the
// instance's methods and properties (spec §4.I).
func (s *Server) handleDeviceMethodList(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	entry, ok := s.mapper.Registry().Get(model.CanonicalID(namespace, name))
	if !ok {
		s.writeUnknownDevice(w, "unknown device: "+namespace+"/"+name)
		return
	}

	methods := make([]map[string]any, len(entry.Instance.Methods))
	for i, m := range entry.Instance.Methods {
		methods[i] = map[string]any{"name": m.Name, "properties": m.Properties}
	}
	properties := make([]string, len(entry.Instance.Properties))
	for i, p := range entry.Instance.Properties {
		properties[i] = p.Name
	}
	s.writeOK(w, map[string]any{"methods": methods, "properties": properties})
}

// handleDeviceMethodInvoke serves GET devicemethod/<ns>/<name>/<method>/<prop>/<data>:
// a write issued as a GET, per the original surface (spec §4.I). method is
// accepted but not validated against the instance's method list, mirroring
// the write-through Set path rpcserver.Server already exposes.
func (s *Server) handleDeviceMethodInvoke(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")
	property := chi.URLParam(r, "property")
	data := chi.URLParam(r, "data")

	observed, err := s.mapper.Set(r.Context(), model.CanonicalID(namespace, name), property, data)
	if err != nil {
		s.writeUnknownDevice(w, err.Error())
		return
	}
	s.writeOK(w, map[string]any{"propertyName": property, "value": observed})
}

// handleModelMeta serves GET meta/model/<ns>/<name>: the model summary.
func (s *Server) handleModelMeta(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	m, ok := s.mapper.GetModel(model.CanonicalID(namespace, name))
	if !ok {
		s.writeNotFound(w, "unknown model: "+namespace+"/"+name)
		return
	}

	props := make([]map[string]any, len(m.Properties))
	for i, p := range m.Properties {
		props[i] = map[string]any{
			"name":        p.Name,
			"dataType":    p.DataType,
			"accessMode":  p.AccessMode,
			"minimum":     p.Minimum,
			"maximum":     p.Maximum,
			"unit":        p.Unit,
			"description": p.Description,
		}
	}
	s.writeOK(w, map[string]any{
		"id":          m.ID,
		"name":        m.Name,
		"namespace":   m.Namespace,
		"description": m.Description,
		"properties":  props,
	})
}

// handleDatabaseReserved serves GET database/<ns>/<name>: reserved surface,
// always an empty array (spec §4.I).
func (s *Server) handleDatabaseReserved(w http.ResponseWriter, r *http.Request) {
	s.writeOK(w, []any{})
}
