// internal/transport/transport.go
package transport

import (
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/goburrow/modbus"
	"github.com/rs/zerolog"
)

// State is the connection lifecycle. Any transport error drops back to
// Disconnected from any state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Settling
	Ready
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Settling:
		return "settling"
	case Ready:
		return "ready"
	}
	return "disconnected"
}

// Config is the transport-level connection config.
type Config struct {
	Endpoint     string // host:port
	UnitID       uint8
	Timeout      time.Duration // per-request
	ProbeTimeout time.Duration
}

// Transport owns the persistent Modbus TCP session. It carries no queueing
// or retry logic; exactly one request may be in flight, enforced by the
// scheduler being its only caller.
type Transport struct {
	cfg     Config
	log     zerolog.Logger
	handler *modbus.TCPClientHandler
	client  modbus.Client
	state   atomic.Int32
}

// New creates a disconnected transport.
func New(cfg Config, log zerolog.Logger) (*Transport, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("transport: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 3 * time.Second
	}
	return &Transport{
		cfg: cfg,
		log: log.With().Str("component", "transport").Str("endpoint", cfg.Endpoint).Logger(),
	}, nil
}

// State returns the current connection state.
func (t *Transport) State() State { return State(t.state.Load()) }

func (t *Transport) setState(s State) { t.state.Store(int32(s)) }

// Probe performs a bare TCP reachability check without touching the
// protocol layer, to distinguish "host unreachable" from "protocol
// rejected".
func (t *Transport) Probe() error {
	conn, err := net.DialTimeout("tcp", t.cfg.Endpoint, t.cfg.ProbeTimeout)
	if err != nil {
		return &ConnectivityError{Endpoint: t.cfg.Endpoint, Err: err}
	}
	_ = conn.Close()
	return nil
}

// Connect probes the endpoint, opens the persistent session and, when the
// profile declares a settle delay, waits it out before the transport
// accepts requests.
func (t *Transport) Connect(settle time.Duration) error {
	t.setState(Connecting)

	if err := t.Probe(); err != nil {
		t.setState(Disconnected)
		return err
	}

	h := modbus.NewTCPClientHandler(t.cfg.Endpoint)
	h.Timeout = t.cfg.Timeout
	h.SlaveId = t.cfg.UnitID

	if err := h.Connect(); err != nil {
		t.setState(Disconnected)
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}

	t.handler = h
	t.client = modbus.NewClient(h)

	if settle > 0 {
		t.setState(Settling)
		t.log.Info().Dur("settle", settle).Msg("session open, settling")
		time.Sleep(settle)
	}

	t.setState(Ready)
	t.log.Info().Msg("session ready")
	return nil
}

// Close releases the session. Idempotent.
func (t *Transport) Close() error {
	t.setState(Disconnected)
	if t.handler == nil {
		return nil
	}
	err := t.handler.Close()
	t.handler = nil
	t.client = nil
	return err
}

// ReadHolding reads qty holding registers starting at addr (FC03).
func (t *Transport) ReadHolding(addr, qty uint16) ([]uint16, error) {
	if t.State() != Ready {
		return nil, ErrNotReady
	}
	raw, err := t.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, t.fail(err)
	}
	return unpackRegisters(raw, qty)
}

// ReadInput reads qty input registers starting at addr (FC04).
func (t *Transport) ReadInput(addr, qty uint16) ([]uint16, error) {
	if t.State() != Ready {
		return nil, ErrNotReady
	}
	raw, err := t.client.ReadInputRegisters(addr, qty)
	if err != nil {
		return nil, t.fail(err)
	}
	return unpackRegisters(raw, qty)
}

// WriteSingle writes one register (FC06).
func (t *Transport) WriteSingle(addr, value uint16) error {
	if t.State() != Ready {
		return ErrNotReady
	}
	if _, err := t.client.WriteSingleRegister(addr, value); err != nil {
		return t.fail(err)
	}
	return nil
}

// WriteMultiple writes consecutive registers starting at addr (FC16).
func (t *Transport) WriteMultiple(addr uint16, values []uint16) error {
	if t.State() != Ready {
		return ErrNotReady
	}
	if _, err := t.client.WriteMultipleRegisters(addr, uint16(len(values)), packRegisters(values)); err != nil {
		return t.fail(err)
	}
	return nil
}

// fail classifies a raw client error. A lost connection drops the state
// machine to Disconnected; protocol exceptions and timeouts leave the
// session up.
func (t *Transport) fail(err error) error {
	classified := classify(err)
	if errors.Is(classified, ErrConnectionLost) {
		t.log.Warn().Err(err).Msg("connection lost")
		_ = t.Close()
	}
	return classified
}

func classify(err error) error {
	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return &ProtocolError{Function: me.FunctionCode, Code: me.ExceptionCode}
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	// Anything else at this level (reset, EOF, garbled frame) means the
	// session can no longer be trusted.
	return fmt.Errorf("%w: %v", ErrConnectionLost, err)
}

// ---- big-endian register packing (wire order) ----

func unpackRegisters(data []byte, qty uint16) ([]uint16, error) {
	if len(data) != int(qty)*2 {
		return nil, fmt.Errorf("%w: short register payload (%d bytes for %d registers)",
			ErrConnectionLost, len(data), qty)
	}
	out := make([]uint16, qty)
	for i := range out {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out, nil
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
