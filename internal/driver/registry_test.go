package driver

import "testing"

type fakeDriver struct{ StubDriver }

func TestFactory_FallsBackToStub(t *testing.T) {
	f := NewFactory()
	d := f.For("unregistered-protocol")
	if _, ok := d.(*StubDriver); !ok {
		t.Errorf("For() on unregistered protocol = %T, want *StubDriver", d)
	}
}

func TestFactory_Register(t *testing.T) {
	f := NewFactory()
	fake := &fakeDriver{}
	f.Register("modbus", fake)

	if got := f.For("modbus"); got != Driver(fake) {
		t.Errorf("For(\"modbus\") = %v, want the registered driver", got)
	}
	if _, ok := f.For("other").(*StubDriver); !ok {
		t.Error("For() on a different protocol should still fall back to stub")
	}
}
