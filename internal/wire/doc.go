// Package wire converts control-plane RPC messages (internal/rpcapi) into
// the internal model (internal/model) and back (spec §4.J).
package wire
