// Package model defines the device/model data types shared across the
// mapper: the registry, the device runtime, the twin machine, wire parsing,
// and the control-plane RPC surface all operate on these types rather than
// on proto messages directly.
package model
