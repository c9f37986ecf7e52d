package driver

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// StubDriver is the default, always-available Driver implementation. It
// simulates a device holding one string value per property: a read of a
// property that was never written returns an incrementing counter, and a
// read after a write returns the written value, so tests and the reference
// config have something observable without a real protocol stack behind
// them. Spec §1 explicitly
// allows a stub in place of concrete protocol drivers.
type StubDriver struct{}

// NewStubDriver returns a ready-to-use StubDriver.
func NewStubDriver() *StubDriver { return &StubDriver{} }

type stubClient struct {
	mu       sync.Mutex
	state    string
	values   map[string]string
	reads    map[string]int
	stopped  bool
}

func (StubDriver) New(protocolName string, configData map[string]any) (Client, error) {
	return &stubClient{
		state:  "ok",
		values: make(map[string]string),
		reads:  make(map[string]int),
	}, nil
}

func (StubDriver) Init(_ context.Context, c Client) error {
	sc, ok := c.(*stubClient)
	if !ok {
		return fmt.Errorf("driver/stub: %w", ErrUnknownVisitor)
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.stopped = false
	return nil
}

func (StubDriver) Read(_ context.Context, c Client, visitor Visitor) ([]byte, error) {
	sc, ok := c.(*stubClient)
	if !ok {
		return nil, ErrUnknownVisitor
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.stopped {
		return nil, ErrNotConnected
	}
	if v, set := sc.values[visitor.PropertyName]; set {
		return []byte(v), nil
	}
	sc.reads[visitor.PropertyName]++
	return []byte(strconv.Itoa(sc.reads[visitor.PropertyName])), nil
}

func (StubDriver) Write(_ context.Context, c Client, value string, visitor Visitor) error {
	sc, ok := c.(*stubClient)
	if !ok {
		return ErrUnknownVisitor
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.stopped {
		return ErrNotConnected
	}
	sc.values[visitor.PropertyName] = value
	return nil
}

func (StubDriver) Stop(_ context.Context, c Client) error {
	sc, ok := c.(*stubClient)
	if !ok {
		return ErrUnknownVisitor
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.stopped = true
	return nil
}

func (StubDriver) GetState(_ context.Context, c Client) (string, error) {
	sc, ok := c.(*stubClient)
	if !ok {
		return "", ErrUnknownVisitor
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.stopped {
		return "offline", nil
	}
	return sc.state, nil
}

func (StubDriver) Free(c Client) error {
	_, ok := c.(*stubClient)
	if !ok {
		return ErrUnknownVisitor
	}
	return nil
}
