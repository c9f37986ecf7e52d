package device

import "errors"

var (
	// ErrNotFound names a registry miss. Get, GetByNamespace and Detach do
	// not return it: they report a miss with a false second result.
	ErrNotFound = errors.New("device: not found")

	// ErrAlreadyRunning is returned by Start if called twice without an
	// intervening Stop.
	ErrAlreadyRunning = errors.New("device: already running")

	// ErrNotRunning is returned by Stop/Set when the runtime has no active
	// driver client to operate on.
	ErrNotRunning = errors.New("device: not running")

	// ErrUnknownTwin is returned by Set when the named twin does not exist
	// on the instance.
	ErrUnknownTwin = errors.New("device: unknown twin")
)
