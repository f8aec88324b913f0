// internal/state/store_test.go
package state

import (
	"testing"
	"time"

	"ventgate/internal/registry"
)

func num(t registry.DataType, n float64) registry.Value {
	return registry.Value{Type: t, Num: n}
}

func TestStore_ApplyAndMarkUnavailable(t *testing.T) {
	s := NewStore(0)
	now := time.Now()

	s.Apply("outdoor_temperature", num(registry.Int16, -3.5), now)

	r, ok := s.Get("outdoor_temperature")
	if !ok || !r.Available || r.Value.Num != -3.5 {
		t.Fatalf("unexpected reading: %+v ok=%v", r, ok)
	}

	// A failed cycle keeps the stale value but clears availability.
	s.MarkUnavailable([]string{"outdoor_temperature"})
	r, _ = s.Get("outdoor_temperature")
	if r.Available {
		t.Fatalf("expected unavailable")
	}
	if r.Value.Num != -3.5 {
		t.Fatalf("stale value lost: %v", r.Value.Num)
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore(0)
	s.Apply("eco_mode", num(registry.UInt16, 1), time.Now())

	snap := s.Snapshot()
	snap["eco_mode"] = Reading{}

	r, _ := s.Get("eco_mode")
	if r.Value.Num != 1 {
		t.Fatalf("snapshot mutation leaked into store")
	}
}

func TestDerived_FilterCountdown(t *testing.T) {
	s := NewStore(0)
	now := time.Now()

	// 45 days remaining, no alarms.
	s.Apply(registry.RegFilterTimeRemaining, num(registry.UInt32, 45*86400), now)
	s.Apply(registry.RegFilterAlarm, registry.BoolValue(false), now)
	s.Apply(registry.RegFilterWarning, registry.BoolValue(false), now)

	d := s.Derived()
	if d["filter_time_remaining_days"] != int64(45) {
		t.Fatalf("days = %v", d["filter_time_remaining_days"])
	}
	if d["next_filter_change_status"] != "ok" {
		t.Fatalf("status = %v", d["next_filter_change_status"])
	}
	if d["next_filter_change_bucket"] != "1_months" {
		t.Fatalf("bucket = %v", d["next_filter_change_bucket"])
	}

	// Alarm wins over the countdown.
	s.Apply(registry.RegFilterAlarm, registry.BoolValue(true), now)
	if got := s.Derived()["next_filter_change_status"]; got != "replace_filter" {
		t.Fatalf("status = %v", got)
	}
}

func TestDerived_ModeText(t *testing.T) {
	s := NewStore(0)
	now := time.Now()

	s.Apply(registry.RegModeStatus, num(registry.UInt16, 1), now)
	s.Apply(registry.RegManualSpeedCommand, num(registry.UInt16, 3), now)
	if got := s.Derived()["mode_status_text"]; got != "manual_normal" {
		t.Fatalf("mode = %v", got)
	}

	s.Apply(registry.RegModeStatus, num(registry.UInt16, 7), now)
	if got := s.Derived()["mode_status_text"]; got != "cooker_hood" {
		t.Fatalf("mode = %v", got)
	}

	// Unavailable mode register degrades to unknown.
	s.MarkUnavailable([]string{registry.RegModeStatus})
	if got := s.Derived()["mode_status_text"]; got != "unknown" {
		t.Fatalf("mode = %v", got)
	}
}

func TestDerived_FlowEstimate(t *testing.T) {
	now := time.Now()

	// VSR 300 nominal flow 368 m3/h -> 3.68 per percent.
	s := NewStore(368)
	s.Apply(registry.RegSupplyFanPower, num(registry.UInt16, 50), now)
	if got := s.Derived()["supply_air_flow_rate"]; got != float64(184) {
		t.Fatalf("flow = %v", got)
	}

	// Legacy fallback: 3 m3/h per percent.
	s = NewStore(0)
	s.Apply(registry.RegSupplyFanPower, num(registry.UInt16, 50), now)
	if got := s.Derived()["supply_air_flow_rate"]; got != float64(150) {
		t.Fatalf("legacy flow = %v", got)
	}
}
