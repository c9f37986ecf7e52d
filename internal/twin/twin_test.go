package twin

import (
	"context"
	"testing"

	"github.com/nerrad567/edge-mapper/internal/driver"
	"github.com/nerrad567/edge-mapper/internal/model"
)

func TestValidateData(t *testing.T) {
	if err := ValidateData(""); err != ErrInvalidValue {
		t.Errorf("ValidateData(\"\") = %v, want ErrInvalidValue", err)
	}
	if err := ValidateData("21.5"); err != nil {
		t.Errorf("ValidateData(\"21.5\") = %v, want nil", err)
	}
}

func TestDealTwin_NoOpWhenDesiredEmptyOrMatchesReported(t *testing.T) {
	var d driver.StubDriver
	c, _ := d.New("stub", nil)
	_ = d.Init(context.Background(), c)

	tw := &model.Twin{PropertyName: "setpoint"}
	v := driver.Visitor{PropertyName: "setpoint"}

	DealTwin(context.Background(), d, c, tw, v)
	if tw.Reported.Value != "" {
		t.Errorf("DealTwin with empty desired mutated Reported to %q", tw.Reported.Value)
	}

	tw.ObservedDesired.Value = "21.5"
	tw.Reported.Value = "21.5"
	DealTwin(context.Background(), d, c, tw, v)
	if tw.Reported.Value != "21.5" {
		t.Errorf("DealTwin with desired == reported changed Reported to %q", tw.Reported.Value)
	}
}

func TestDealTwin_WritesAndReadsBack(t *testing.T) {
	var d driver.StubDriver
	c, _ := d.New("stub", nil)
	_ = d.Init(context.Background(), c)

	tw := &model.Twin{PropertyName: "setpoint"}
	tw.ObservedDesired.Value = "21.5"
	v := driver.Visitor{PropertyName: "setpoint"}

	DealTwin(context.Background(), d, c, tw, v)
	if tw.Reported.Value != "21.5" {
		t.Errorf("Reported.Value = %q, want %q", tw.Reported.Value, "21.5")
	}
}

func TestDealTwin_RetriesOnWriteFailure(t *testing.T) {
	var d driver.StubDriver
	c, _ := d.New("stub", nil)
	_ = d.Init(context.Background(), c)
	_ = d.Stop(context.Background(), c) // forces Write/Read to fail with ErrNotConnected

	tw := &model.Twin{PropertyName: "setpoint"}
	tw.ObservedDesired.Value = "21.5"
	v := driver.Visitor{PropertyName: "setpoint"}

	DealTwin(context.Background(), d, c, tw, v)
	if tw.Reported.Value != "" {
		t.Errorf("Reported.Value = %q after failed write, want unchanged empty", tw.Reported.Value)
	}
	if tw.ObservedDesired.Value != "21.5" {
		t.Error("ObservedDesired should remain set so the next tick retries")
	}
}

func TestSet_WritesReadsBackAndUpdatesBothSides(t *testing.T) {
	var d driver.StubDriver
	c, _ := d.New("stub", nil)
	_ = d.Init(context.Background(), c)

	tw := &model.Twin{PropertyName: "setpoint"}
	v := driver.Visitor{PropertyName: "setpoint"}

	observed, err := Set(context.Background(), d, c, tw, v, "22.0")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if observed != "22.0" {
		t.Errorf("Set() observed = %q, want %q", observed, "22.0")
	}
	if tw.Reported.Value != "22.0" || tw.ObservedDesired.Value != "22.0" {
		t.Errorf("Set() left Reported=%q ObservedDesired=%q, want both %q", tw.Reported.Value, tw.ObservedDesired.Value, "22.0")
	}
}

func TestSet_RejectsEmptyValue(t *testing.T) {
	var d driver.StubDriver
	c, _ := d.New("stub", nil)
	_ = d.Init(context.Background(), c)

	tw := &model.Twin{PropertyName: "setpoint"}
	v := driver.Visitor{PropertyName: "setpoint"}

	if _, err := Set(context.Background(), d, c, tw, v, ""); err != ErrInvalidValue {
		t.Errorf("Set(\"\") error = %v, want ErrInvalidValue", err)
	}
}
