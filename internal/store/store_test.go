package store

import (
	"testing"

	"github.com/tronix365/sensorbridge/internal/types"
	"go.uber.org/zap"
)

func testStore() *Store {
	return New(4095, zap.NewNop())
}

func TestActivateStartsLoading(t *testing.T) {
	s := testStore()
	s.Activate("ESP32_01")

	view, ok := s.Snapshot("ESP32_01")
	if !ok {
		t.Fatal("Expected view after Activate")
	}
	if view.State != StateLoading {
		t.Errorf("Expected state %q after mount, got %q", StateLoading, view.State)
	}
}

func TestMarkLiveIsOneWay(t *testing.T) {
	s := testStore()
	s.Activate("ESP32_01")

	s.MarkLive("ESP32_01")
	view, _ := s.Snapshot("ESP32_01")
	if view.State != StateLive {
		t.Fatalf("Expected state %q after first cycle, got %q", StateLive, view.State)
	}

	// Later ticks never regress the state, also not on errors.
	s.SetSliceError("ESP32_01", SliceGas, "boom")
	s.MarkLive("ESP32_01")
	view, _ = s.Snapshot("ESP32_01")
	if view.State != StateLive {
		t.Errorf("Expected state to stay %q, got %q", StateLive, view.State)
	}
	if view.Errors[SliceGas] != "boom" {
		t.Errorf("Expected slice error to be recorded")
	}
}

func TestWritesForInactiveDeviceAreDropped(t *testing.T) {
	s := testStore()

	s.SetGasSeries("ghost", []types.GasReading{{}})
	if _, ok := s.Snapshot("ghost"); ok {
		t.Fatal("Write for inactive device must not create a view")
	}

	s.Activate("ESP32_01")
	s.Deactivate("ESP32_01")
	s.SetOutputs("ESP32_01", []types.Output{{ID: 1}})
	if _, ok := s.Snapshot("ESP32_01"); ok {
		t.Fatal("Write after Deactivate must be discarded")
	}
}

func TestSetLightSeriesTracksLatestAndLevel(t *testing.T) {
	s := New(1050, zap.NewNop())
	s.Activate("ESP32_01")

	s.SetLightSeries("ESP32_01", []types.LightReading{
		{AnalogValue: 100},
		{AnalogValue: 525, DigitalValue: true},
	})

	view, _ := s.Snapshot("ESP32_01")
	if view.LatestLight == nil || view.LatestLight.AnalogValue != 525 {
		t.Fatalf("Expected latest light sample to be the chronological tail")
	}
	if !view.LatestLight.DigitalValue {
		t.Error("Expected auto-logic state carried through")
	}
	if view.LightLevel != 0.5 {
		t.Errorf("Expected normalized level 0.5 with analog_max=1050, got %v", view.LightLevel)
	}
}

func TestToggleOutputFlipsOnlyTarget(t *testing.T) {
	s := testStore()
	s.Activate("ESP32_01")
	s.SetOutputs("ESP32_01", []types.Output{
		{ID: 1, OutputName: "Bulb 1", IsActive: false},
		{ID: 2, OutputName: "Bulb 2", IsActive: true},
	})

	desired, ok := s.ToggleOutput("ESP32_01", 1)
	if !ok || !desired {
		t.Fatalf("Expected toggle to flip output 1 to true, got ok=%v desired=%v", ok, desired)
	}

	view, _ := s.Snapshot("ESP32_01")
	if !view.Outputs[0].IsActive {
		t.Error("Output 1 should be active")
	}
	if !view.Outputs[1].IsActive {
		t.Error("Output 2 must not be clobbered by a toggle of output 1")
	}

	if _, ok := s.ToggleOutput("ESP32_01", 99); ok {
		t.Error("Toggle of unknown id must report not found")
	}
}

func TestToggleTwiceRestoresOriginal(t *testing.T) {
	s := testStore()
	s.Activate("ESP32_01")
	s.SetOutputs("ESP32_01", []types.Output{{ID: 7, IsActive: false}})

	first, _ := s.ToggleOutput("ESP32_01", 7)
	second, _ := s.ToggleOutput("ESP32_01", 7)

	if !first || second {
		t.Errorf("Expected desired values true then false, got %v then %v", first, second)
	}

	view, _ := s.Snapshot("ESP32_01")
	if view.Outputs[0].IsActive {
		t.Error("Double toggle should restore the original state")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := testStore()
	s.Activate("ESP32_01")
	s.SetOutputs("ESP32_01", []types.Output{{ID: 1, IsActive: false}})

	view, _ := s.Snapshot("ESP32_01")
	view.Outputs[0].IsActive = true
	view.Errors[SliceGas] = "mutated"

	fresh, _ := s.Snapshot("ESP32_01")
	if fresh.Outputs[0].IsActive {
		t.Error("Mutating a snapshot must not leak into the store")
	}
	if _, ok := fresh.Errors[SliceGas]; ok {
		t.Error("Mutating a snapshot's error map must not leak into the store")
	}
}

func TestOnUpdateFiresWithSnapshot(t *testing.T) {
	s := testStore()

	var got []DeviceView
	s.OnUpdate(func(v DeviceView) { got = append(got, v) })

	s.Activate("ESP32_01")
	s.SetOutputs("ESP32_01", []types.Output{{ID: 1}})

	if len(got) != 2 {
		t.Fatalf("Expected 2 update callbacks, got %d", len(got))
	}
	if got[1].Outputs[0].ID != 1 {
		t.Error("Callback should carry the written state")
	}
}
