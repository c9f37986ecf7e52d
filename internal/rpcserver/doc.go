// Package rpcserver implements the control-plane-facing UDS gRPC server
// (spec §4.H): device/model CRUD wired to the registry (internal/device)
// and the driver/sink/reporter capabilities each new runtime needs.
package rpcserver
