// Package driver defines the protocol-agnostic device client interface
// (spec §4.A). Concrete protocol implementations (Modbus, OPC-UA, ...) are
// out of scope for this module; only the interface and a stub
// implementation used by tests and by unregistered protocol names are
// provided here.
package driver

import (
	"context"
	"errors"
)

// Visitor carries the per-read/write addressing hint a driver needs to
// locate a value on the device.
type Visitor struct {
	PropertyName string
	ProtocolName string
	ConfigData   map[string]any
	Offset       int
}

// Client is the handle a driver returns from New and operates on for the
// lifetime of one device. It is opaque to everything outside the driver
// package that produced it.
type Client interface{}

// Driver is the interface every concrete protocol implementation must
// satisfy. A driver owns its own mutual exclusion for reads/writes against
// one Client; the core never assumes two calls against the same Client
// can run concurrently, but it also never serializes them itself.
type Driver interface {
	// New builds a client from a protocol configuration. It must not block
	// on the network; connection establishment happens in Init.
	New(protocolName string, configData map[string]any) (Client, error)

	// Init prepares the client for use (e.g. opens a connection).
	Init(ctx context.Context, c Client) error

	// Read returns the raw bytes for the property addressed by visitor.
	Read(ctx context.Context, c Client, visitor Visitor) ([]byte, error)

	// Write pushes value to the property addressed by visitor.
	Write(ctx context.Context, c Client, value string, visitor Visitor) error

	// Stop requests the driver release any held resources (sockets, etc.)
	// but keep the Client valid for a subsequent GetState/Free call.
	Stop(ctx context.Context, c Client) error

	// GetState returns the raw (un-normalized) connectivity/health status.
	GetState(ctx context.Context, c Client) (string, error)

	// Free releases the client entirely; it must not be used afterward.
	Free(c Client) error
}

// Errors a Driver implementation is expected to return (wrapped) so the
// device runtime can distinguish fatal-at-Start failures from retryable
// runtime failures per spec §7.
var (
	ErrInitFailed    = errors.New("driver: init failed")
	ErrNotConnected  = errors.New("driver: not connected")
	ErrUnknownVisitor = errors.New("driver: unknown visitor")
)
