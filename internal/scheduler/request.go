// internal/scheduler/request.go
package scheduler

import (
	"errors"
	"time"

	"ventgate/internal/plan"
)

// Priority orders requests in the queue. Command always dequeues before
// Poll, but never interrupts an in-flight request.
type Priority int

const (
	Poll Priority = iota
	Command
)

func (p Priority) String() string {
	if p == Command {
		return "command"
	}
	return "poll"
}

// Kind is the wire operation a request performs.
type Kind int

const (
	ReadBatch Kind = iota
	WriteSingle
	WriteMultiple
)

// ErrCanceled terminates a queued request when the connection is torn down
// underneath it. Canceled poll reads are regenerated on the next cycle.
var ErrCanceled = errors.New("scheduler: request canceled")

// Result is the terminal outcome of one request.
type Result struct {
	Words []uint16 // reads only
	Err   error
}

// Request is owned exclusively by the scheduler queue from submission until
// it terminates in success, exhausted retries or cancellation.
type Request struct {
	Kind     Kind
	Priority Priority

	// ReadBatch payload.
	Batch plan.Batch

	// Write payload.
	Address uint16
	Values  []uint16

	attempt   int
	createdAt time.Time
	done      chan Result
}

func (r *Request) finish(res Result) {
	r.done <- res
}
