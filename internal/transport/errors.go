// internal/transport/errors.go
package transport

import (
	"errors"
	"fmt"
)

// Sentinel errors for the transient failure classes. Callers branch with
// errors.Is; the scheduler retries both, but only ErrConnectionLost tears
// the session down.
var (
	ErrTimeout        = errors.New("transport: request timed out")
	ErrConnectionLost = errors.New("transport: connection lost")
	ErrNotReady       = errors.New("transport: not connected")
)

// ConnectivityError means the host was unreachable at the TCP level; the
// protocol layer was never attempted.
type ConnectivityError struct {
	Endpoint string
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("transport: %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// Modbus exception codes we branch on.
const (
	ExceptionIllegalFunction = 0x01
	ExceptionIllegalAddress  = 0x02
)

// ProtocolError is a Modbus exception response. An illegal-function
// exception on a native input read triggers the holding fallback instead of
// a bare retry.
type ProtocolError struct {
	Function byte
	Code     byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("transport: modbus exception fc=%d code=%d", e.Function, e.Code)
}

// IsIllegalFunction reports whether err is an unsupported-function-code
// exception.
func IsIllegalFunction(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.Code == ExceptionIllegalFunction
}
