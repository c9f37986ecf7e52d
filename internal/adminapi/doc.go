// Package adminapi is the mapper's read-mostly inspection and control HTTP
// surface (spec §4.I): ping, per-property reads, method listing, method
// invocation (a write, issued as a GET per the original surface), model
// metadata, and a reserved database route. It additionally carries the
// ambient observability and push-feed surface a complete service needs: a
// request-scoped logger, Prometheus metrics, and a WebSocket feed of twin
// report events (SPEC_FULL.md §4), none of which replace or alter a GET
// route from spec.md.
package adminapi
