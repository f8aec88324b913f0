// internal/transport/transport_test.go
package transport

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/goburrow/modbus"
	"github.com/rs/zerolog"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	// Modbus exception -> ProtocolError carrying the code.
	err := classify(&modbus.ModbusError{FunctionCode: 0x84, ExceptionCode: ExceptionIllegalFunction})
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProtocolError, got %T", err)
	}
	if pe.Code != ExceptionIllegalFunction {
		t.Fatalf("expected code 1, got %d", pe.Code)
	}
	if !IsIllegalFunction(err) {
		t.Fatalf("IsIllegalFunction() = false")
	}

	// Network timeout -> ErrTimeout, session stays up.
	var ne net.Error = timeoutErr{}
	if err := classify(ne); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	// Everything else -> ErrConnectionLost.
	if err := classify(errors.New("read: connection reset by peer")); !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("expected ErrConnectionLost, got %v", err)
	}
}

func TestProbe_Unreachable(t *testing.T) {
	// Grab a port and close it again so nothing listens there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	endpoint := l.Addr().String()
	_ = l.Close()

	tr, err := New(Config{Endpoint: endpoint, ProbeTimeout: 500 * time.Millisecond}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	err = tr.Probe()
	var ce *ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConnectivityError, got %v", err)
	}
}

func TestConnect_ProbeFailureSkipsProtocol(t *testing.T) {
	tr, err := New(Config{Endpoint: "127.0.0.1:1", ProbeTimeout: 300 * time.Millisecond}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	err = tr.Connect(0)
	var ce *ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConnectivityError, got %v", err)
	}
	if tr.State() != Disconnected {
		t.Fatalf("expected Disconnected, got %v", tr.State())
	}
}

func TestConnect_CloseIdempotent(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			_ = conn
		}
	}()

	tr, err := New(Config{Endpoint: l.Addr().String(), Timeout: time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	if err := tr.Connect(0); err != nil {
		t.Fatalf("Connect() err=%v", err)
	}
	if tr.State() != Ready {
		t.Fatalf("expected Ready, got %v", tr.State())
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("Close() err=%v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second Close() err=%v", err)
	}
	if tr.State() != Disconnected {
		t.Fatalf("expected Disconnected, got %v", tr.State())
	}

	// A request against a closed transport fails fast.
	if _, err := tr.ReadHolding(0, 1); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestUnpackRegisters(t *testing.T) {
	regs, err := unpackRegisters([]byte{0x00, 0x00, 0x02, 0x58}, 2)
	if err != nil {
		t.Fatalf("unpackRegisters err=%v", err)
	}
	if regs[0] != 0x0000 || regs[1] != 0x0258 {
		t.Fatalf("unexpected registers: %v", regs)
	}

	if _, err := unpackRegisters([]byte{0x00}, 2); !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("expected ErrConnectionLost on short payload, got %v", err)
	}

	if got := packRegisters([]uint16{0x0258}); got[0] != 0x02 || got[1] != 0x58 {
		t.Fatalf("packRegisters: %v", got)
	}
}
