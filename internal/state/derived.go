// internal/state/derived.go
package state

import (
	"fmt"
	"math"

	"ventgate/internal/registry"
)

// Derived computes the value-added keys the register map alone does not
// carry: filter countdown buckets, season, air quality and regulation mode
// texts, resolved operating mode and estimated flow rates. Only registers
// currently available contribute; everything else degrades to "unknown".
func (s *Store) Derived() map[string]any {
	out := make(map[string]any)

	// Filter countdown.
	seconds := int64(s.num(registry.RegFilterTimeRemaining, 0))
	alarm := s.boolean(registry.RegFilterAlarm)
	warning := s.boolean(registry.RegFilterWarning)

	var days, months int64
	if seconds > 0 {
		days = seconds / 86400
		months = days / 30
	}
	out["filter_time_remaining_s"] = seconds
	out["filter_time_remaining_days"] = days
	out["filter_time_remaining_months"] = months

	switch {
	case alarm:
		out["next_filter_change_status"] = "replace_filter"
	case warning:
		out["next_filter_change_status"] = "warning"
	case seconds <= 0:
		out["next_filter_change_status"] = "unknown"
	default:
		out["next_filter_change_status"] = "ok"
	}

	switch {
	case seconds <= 0:
		out["next_filter_change_bucket"] = "unknown"
	case days > 548:
		out["next_filter_change_bucket"] = "more_than_18_months"
	case days >= 31:
		out["next_filter_change_bucket"] = fmt.Sprintf("%d_months", months)
	default:
		out["next_filter_change_bucket"] = fmt.Sprintf("%d_days", days)
	}

	// Season.
	switch int(s.num(registry.RegSeason, -1)) {
	case 0:
		out["active_season"] = "summer"
	case 1:
		out["active_season"] = "winter"
	default:
		out["active_season"] = "unknown"
	}

	// Indoor air quality level.
	switch int(s.num(registry.RegIAQLevel, -1)) {
	case 0:
		out["iaq_level_text"] = "economy"
	case 1:
		out["iaq_level_text"] = "good"
	case 2:
		out["iaq_level_text"] = "improve"
	default:
		out["iaq_level_text"] = "unknown"
	}

	// Regulation mode.
	switch int(s.num(registry.RegRegulationMode, -1)) {
	case 0:
		out["regulation_mode_text"] = "supply_air"
	case 1:
		out["regulation_mode_text"] = "room"
	case 2:
		out["regulation_mode_text"] = "exhaust"
	default:
		out["regulation_mode_text"] = "unknown"
	}

	// Operating mode, with manual speed sub-states.
	mode := int(s.num(registry.RegModeStatus, -1))
	manual := int(s.num(registry.RegManualSpeedCommand, -1))
	switch {
	case mode == 0:
		out["mode_status_text"] = "auto_demand_control"
	case mode == 1:
		switch manual {
		case 0:
			out["mode_status_text"] = "manual_stop"
		case 2:
			out["mode_status_text"] = "manual_low"
		case 3:
			out["mode_status_text"] = "manual_normal"
		case 4:
			out["mode_status_text"] = "manual_high"
		default:
			out["mode_status_text"] = "manual_unknown"
		}
	default:
		if key, ok := registry.StatusModes[uint16(mode)]; ok && mode >= 0 {
			out["mode_status_text"] = key
		} else {
			out["mode_status_text"] = "unknown"
		}
	}

	// Estimated flow rates from fan power factors.
	factor := s.flowFactor()
	out["supply_air_flow_rate"] = math.Round(s.num(registry.RegSupplyFanPower, 0) * factor)
	out["exhaust_air_flow_rate"] = math.Round(s.num(registry.RegExtractFanPower, 0) * factor)

	return out
}

// num returns the numeric value of an available register, or def.
func (s *Store) num(name string, def float64) float64 {
	r, ok := s.Get(name)
	if !ok || !r.Available || r.Value.Type == registry.Bool {
		return def
	}
	return r.Value.Num
}

// boolean returns a Bool register's value; unavailable reads as false.
func (s *Store) boolean(name string) bool {
	r, ok := s.Get(name)
	if !ok || !r.Available {
		return false
	}
	if r.Value.Type == registry.Bool {
		return r.Value.Bool
	}
	return r.Value.Num != 0
}
