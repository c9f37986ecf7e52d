package device

import (
	"strings"
	"sync"

	"github.com/nerrad567/edge-mapper/internal/model"
)

// Entry bundles one device's canonical spec with its running reconciliation
// loop. The registry owns both; callers reach the instance only through the
// registry's accessors so the instance a runtime is ticking and the one a
// reader sees never diverge mid-mutation (spec §9 design note 3).
type Entry struct {
	Instance *model.DeviceInstance
	Runtime  *Runtime
}

// Registry is the process-wide, thread-safe table of known devices, keyed
// by canonical id ("<namespace>/<name>").
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]*Entry
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]*Entry)}
}

// Add inserts or overwrites the entry for inst.Key(). The registry performs
// no duplicate check: a caller replacing a live device must Detach (and
// Stop) the old entry first, per spec §4.D — Add always wins the slot.
func (r *Registry) Add(inst *model.DeviceInstance, rt *Runtime) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[inst.Key()] = &Entry{Instance: inst, Runtime: rt}
}

// Get resolves key against the registry. It tries, in order: the exact
// canonical key ("namespace/name"), the dotted form ("namespace.name"), and
// finally a bare short name (a scan matching on Name alone, only usable
// when exactly one device carries that name).
func (r *Registry) Get(key string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.byKey[key]; ok {
		return e, true
	}
	if dotted := strings.Replace(key, ".", "/", 1); dotted != key {
		if e, ok := r.byKey[dotted]; ok {
			return e, true
		}
	}

	var match *Entry
	for _, e := range r.byKey {
		if e.Instance.Name == key {
			if match != nil {
				return nil, false // ambiguous short name
			}
			match = e
		}
	}
	if match != nil {
		return match, true
	}
	return nil, false
}

// GetByNamespace builds the canonical id from namespace and name and
// resolves it through Get, so Get's dotted-form and short-name fallbacks
// still apply to that id.
func (r *Registry) GetByNamespace(namespace, name string) (*Entry, bool) {
	return r.Get(model.CanonicalID(namespace, name))
}

// Detach removes and returns the entry for key, leaving its runtime (if
// started) running — callers that want a clean stop must call
// Entry.Runtime.Stop() themselves before or after detaching.
func (r *Registry) Detach(key string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byKey[key]; ok {
		delete(r.byKey, key)
		return e, true
	}
	return nil, false
}

// List returns a snapshot slice of every registered entry. The slice and
// its Entry pointers are stable; mutate Instance only through Runtime.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.byKey))
	for _, e := range r.byKey {
		out = append(out, e)
	}
	return out
}

// StartAll starts every entry's runtime, collecting (not aborting on) the
// first error per entry; it returns the last error seen, if any.
func (r *Registry) StartAll() error {
	var lastErr error
	for _, e := range r.List() {
		if err := e.Runtime.Start(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// StopAll stops every entry's runtime. Like StartAll it never aborts or
// short-circuits: every runtime gets a Stop attempt regardless of earlier
// failures, since this runs on shutdown. Stop errors are discarded.
func (r *Registry) StopAll() {
	for _, e := range r.List() {
		_ = e.Runtime.Stop()
	}
}
