// internal/command/executor.go
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ventgate/internal/registry"
)

var (
	// ErrUnknownRegister is returned before any wire traffic when the
	// target name is not in the catalogue.
	ErrUnknownRegister = errors.New("command: unknown register")

	// ErrNotWritable is returned before any wire traffic for a read-only
	// target.
	ErrNotWritable = errors.New("command: register is not writable")
)

// writer is the slice of the scheduler the executor needs. Writes jump the
// poll queue there.
type writer interface {
	Write(ctx context.Context, addr uint16, values []uint16) error
}

// Executor validates and encodes register writes. Every failure mode that
// can be decided locally (unknown name, read-only target, out-of-range
// value) is rejected before the scheduler sees the request.
type Executor struct {
	cat   *registry.Catalogue
	sched writer
	log   zerolog.Logger
}

func New(cat *registry.Catalogue, sched writer, log zerolog.Logger) *Executor {
	return &Executor{
		cat:   cat,
		sched: sched,
		log:   log.With().Str("component", "command").Logger(),
	}
}

// Set writes one typed value to a named register.
func (e *Executor) Set(ctx context.Context, name string, v registry.Value) error {
	d, ok := e.cat.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	if d.Access != registry.ReadWrite {
		return fmt.Errorf("%w: %q", ErrNotWritable, name)
	}

	words, err := registry.Encode(d, v)
	if err != nil {
		return err
	}

	e.log.Info().Str("register", name).Interface("value", v.Scalar()).Msg("writing register")
	if err := e.sched.Write(ctx, d.Address, words); err != nil {
		return fmt.Errorf("command: write %s: %w", name, err)
	}
	return nil
}

// SetNumber writes a numeric value in engineering units; the register's
// scale and type handle the wire representation.
func (e *Executor) SetNumber(ctx context.Context, name string, n float64) error {
	d, ok := e.cat.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	return e.Set(ctx, name, registry.NumValue(d, n))
}

// SetMode commands an operating mode by its key ("auto", "manual", ...).
func (e *Executor) SetMode(ctx context.Context, mode string) error {
	raw, ok := registry.CommandModes[mode]
	if !ok {
		return fmt.Errorf("command: unknown mode %q", mode)
	}
	return e.SetNumber(ctx, registry.RegModeCommand, float64(raw))
}

// SetManualSpeed commands a manual fan speed step ("stop", "low", "normal",
// "high"). The unit must already be in manual mode for it to take effect.
func (e *Executor) SetManualSpeed(ctx context.Context, speed string) error {
	raw, ok := registry.ManualSpeeds[speed]
	if !ok {
		return fmt.Errorf("command: unknown manual speed %q", speed)
	}
	return e.SetNumber(ctx, registry.RegManualSpeedCommand, float64(raw))
}

// SetSupplyAirTemperature adjusts the supply air setpoint in degrees C.
func (e *Executor) SetSupplyAirTemperature(ctx context.Context, degrees float64) error {
	return e.SetNumber(ctx, registry.RegSupplyAirSetpoint, degrees)
}

// ResetFilter records now as the filter replacement time, restarting the
// countdown. The timestamp register is 32 bits wide, so this goes out as
// one multi-register write.
func (e *Executor) ResetFilter(ctx context.Context, now time.Time) error {
	return e.SetNumber(ctx, registry.RegFilterReplacedAt, float64(now.Unix()))
}
