package rpcserver

import "errors"

// ErrUnknownDevice is returned (wrapped into a gRPC NotFound status) when a
// lookup by canonical id and by short name both miss.
var ErrUnknownDevice = errors.New("rpcserver: unknown device")

// ErrUnknownModel is returned when RemoveDeviceModel targets a model that
// was never created.
var ErrUnknownModel = errors.New("rpcserver: unknown model")
