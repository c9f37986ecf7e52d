// Package device implements the device registry (spec §4.D) and the
// per-device reconciliation runtime (spec §4.E): a tick loop that probes
// connectivity, reads twins through a driver, fans values out to recorders
// and publishers, and reconciles desired state via the twin package.
package device
