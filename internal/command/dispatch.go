// internal/command/dispatch.go
package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dispatch routes one textual command to the executor. name selects the
// operation ("mode", "manual_speed", "filter_reset") or a writable register
// name; payload carries the mode/speed key or a numeric value.
func Dispatch(ctx context.Context, e *Executor, name, payload string) error {
	payload = strings.TrimSpace(payload)

	switch name {
	case "mode":
		return e.SetMode(ctx, payload)
	case "manual_speed":
		return e.SetManualSpeed(ctx, payload)
	case "supply_air_temperature":
		n, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return fmt.Errorf("command: bad temperature %q: %w", payload, err)
		}
		return e.SetSupplyAirTemperature(ctx, n)
	case "filter_reset":
		return e.ResetFilter(ctx, time.Now())
	default:
		n, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return fmt.Errorf("command: bad value %q for %s: %w", payload, name, err)
		}
		return e.SetNumber(ctx, name, n)
	}
}
