// Package rpcapi defines the control-plane RPC surface (spec §4.G/§4.H):
// the message shapes, a JSON wire codec, and hand-built gRPC service
// descriptors for both directions — the mapper as server (device/model CRUD
// from the control plane) and the mapper as client (registration and status
// reporting to the control plane). No .proto file is compiled; see
// DESIGN.md for why a JSON codec stands in for generated protobuf code.
package rpcapi
