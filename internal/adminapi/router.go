package adminapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter wires the GET-only surface from spec §4.I plus the additive
// ambient routes (metrics, watch) under one chi.Router.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/metrics", s.metrics.Handler().ServeHTTP)
	r.Get("/api/v1/watch", s.handleWatch)

	r.Get("/api/v1/ping", s.handlePing)
	r.Get("/api/v1/device/{namespace}/{name}/{property}", s.handleDeviceRead)
	r.Get("/api/v1/devicemethod/{namespace}/{name}", s.handleDeviceMethodList)
	r.With(s.authMiddleware).Get("/api/v1/devicemethod/{namespace}/{name}/{method}/{property}/{data}", s.handleDeviceMethodInvoke)
	r.Get("/api/v1/meta/model/{namespace}/{name}", s.handleModelMeta)
	r.Get("/api/v1/database/{namespace}/{name}", s.handleDatabaseReserved)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeMethodNotAllowed(w)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeNotFound(w, "unknown route")
	})

	return r
}
