// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ventgate/internal/metrics"
	"ventgate/internal/plan"
	"ventgate/internal/profile"
	"ventgate/internal/registry"
	"ventgate/internal/transport"
)

// Conn is the transport contract the scheduler drives. The wire session is
// not safe for concurrent requests; the scheduler worker is its only
// caller.
type Conn interface {
	Connect(settle time.Duration) error
	Close() error
	ReadHolding(addr, qty uint16) ([]uint16, error)
	ReadInput(addr, qty uint16) ([]uint16, error)
	WriteSingle(addr, value uint16) error
	WriteMultiple(addr uint16, values []uint16) error
}

const (
	submitBuffer      = 64
	maxConnectBackoff = 30 * time.Second
)

// Scheduler serializes all reads and writes through one Conn. A single
// worker goroutine owns the queue, the connection and the fallback latch;
// producers talk to it over channels, so queue mutation needs no locking.
type Scheduler struct {
	conn Conn
	log  zerolog.Logger

	submitCh  chan *Request
	profileCh chan profile.Profile

	// Worker-owned state below; untouched outside Run.
	prof      profile.Profile
	connected bool
	cmdQueue  []*Request
	pollQueue []*Request

	// Latched when the gateway rejects FC04; read from other goroutines.
	forceHolding atomic.Bool
}

// New creates a scheduler for one connection. Run must be started before
// any submission completes.
func New(conn Conn, prof profile.Profile, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		conn:      conn,
		log:       log.With().Str("component", "scheduler").Logger(),
		submitCh:  make(chan *Request, submitBuffer),
		profileCh: make(chan profile.Profile, 4),
		prof:      prof,
	}
}

// ForceHolding reports whether input reads are latched to the holding
// function code for this session.
func (s *Scheduler) ForceHolding() bool { return s.forceHolding.Load() }

// SetProfile swaps the active profile at runtime. The new pacing, retry and
// fallback parameters apply from the next dispatched request; the session
// is kept.
func (s *Scheduler) SetProfile(p profile.Profile) {
	s.profileCh <- p
}

// Read submits a poll-priority batch read and blocks until it terminates.
// The returned words start at the batch's start address.
func (s *Scheduler) Read(ctx context.Context, b plan.Batch) ([]uint16, error) {
	res, err := s.submit(ctx, &Request{Kind: ReadBatch, Priority: Poll, Batch: b})
	if err != nil {
		return nil, err
	}
	return res.Words, res.Err
}

// Write submits a command-priority register write and blocks until it
// terminates. Single-word writes use FC06, wider ones FC16.
func (s *Scheduler) Write(ctx context.Context, addr uint16, values []uint16) error {
	kind := WriteSingle
	if len(values) > 1 {
		kind = WriteMultiple
	}
	res, err := s.submit(ctx, &Request{Kind: kind, Priority: Command, Address: addr, Values: values})
	if err != nil {
		return err
	}
	return res.Err
}

func (s *Scheduler) submit(ctx context.Context, req *Request) (Result, error) {
	req.done = make(chan Result, 1)
	req.createdAt = time.Now()

	select {
	case s.submitCh <- req:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case res := <-req.done:
		return res, nil
	case <-ctx.Done():
		// The worker still finishes the request; the buffered done
		// channel keeps it from blocking on a departed caller.
		return Result{}, ctx.Err()
	}
}

// Run is the dispatch loop. It returns when ctx is canceled, failing every
// queued request.
func (s *Scheduler) Run(ctx context.Context) {
	defer func() {
		s.failQueued(ErrCanceled)
		_ = s.conn.Close()
	}()

	for {
		s.drainInbox()

		req := s.dequeue()
		if req == nil {
			select {
			case <-ctx.Done():
				return
			case r := <-s.submitCh:
				s.enqueue(r)
			case p := <-s.profileCh:
				s.applyProfile(p)
			}
			continue
		}

		if !s.connected {
			if err := s.ensureConnected(ctx); err != nil {
				req.finish(Result{Err: ErrCanceled})
				return
			}
		}

		s.execute(ctx, req)

		// Inter-request pacing, regardless of priority or outcome. This
		// is the primary defense against fragile gateways.
		if !sleepCtx(ctx, s.prof.InterRequestDelay) {
			return
		}
	}
}

// drainInbox moves pending submissions and profile swaps into worker state
// without blocking.
func (s *Scheduler) drainInbox() {
	for {
		select {
		case r := <-s.submitCh:
			s.enqueue(r)
		case p := <-s.profileCh:
			s.applyProfile(p)
		default:
			return
		}
	}
}

func (s *Scheduler) enqueue(r *Request) {
	if r.Priority == Command {
		s.cmdQueue = append(s.cmdQueue, r)
	} else {
		s.pollQueue = append(s.pollQueue, r)
	}
}

// dequeue pops the next request: command priority strictly first.
func (s *Scheduler) dequeue() *Request {
	if len(s.cmdQueue) > 0 {
		r := s.cmdQueue[0]
		s.cmdQueue = s.cmdQueue[1:]
		return r
	}
	if len(s.pollQueue) > 0 {
		r := s.pollQueue[0]
		s.pollQueue = s.pollQueue[1:]
		return r
	}
	return nil
}

func (s *Scheduler) applyProfile(p profile.Profile) {
	s.log.Info().Str("profile", p.Name).Msg("profile changed")
	s.prof = p
}

// ensureConnected dials until the session is ready, backing off between
// attempts. Only a canceled context makes it give up.
func (s *Scheduler) ensureConnected(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		err := s.conn.Connect(s.prof.PostConnectDelay)
		if err == nil {
			s.connected = true
			return nil
		}

		metrics.ReconnectsTotal.Inc()
		delay := backoff(s.prof.BackoffBase, attempt)
		s.log.Warn().Err(err).Dur("retry_in", delay).Msg("connect failed")

		if !sleepCtx(ctx, delay) {
			return ctx.Err()
		}
	}
}

// execute drives one request through its retry budget and delivers the
// terminal result.
func (s *Scheduler) execute(ctx context.Context, req *Request) {
	for {
		start := time.Now()
		words, err := s.dispatch(req)
		metrics.RequestSeconds.WithLabelValues(kindLabel(req.Kind)).Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.RequestsTotal.WithLabelValues(kindLabel(req.Kind), "ok").Inc()
			req.finish(Result{Words: words})
			return
		}

		// Unsupported function code on a native input read: fall back to
		// the holding code for this batch and remember it for the rest of
		// the session. Expected control flow, not a retry.
		if transport.IsIllegalFunction(err) && s.readAs(req) == registry.InputRegister {
			s.log.Info().Uint16("start", req.Batch.Start).
				Msg("gateway rejected input-register read, latching holding fallback")
			s.forceHolding.Store(true)
			metrics.FallbackActive.Set(1)
			continue
		}

		if errors.Is(err, transport.ErrConnectionLost) || errors.Is(err, transport.ErrNotReady) {
			// The session is gone: every queued poll read is stale and is
			// regenerated next cycle. Commands stay queued; the in-flight
			// request keeps its retry budget across the reconnect.
			s.connected = false
			s.drainInbox()
			s.cancelPolls()
		}

		req.attempt++
		if req.attempt > s.prof.MaxRetries {
			s.log.Warn().Err(err).Str("kind", kindLabel(req.Kind)).
				Int("attempts", req.attempt).Msg("request failed, retries exhausted")
			metrics.RequestsTotal.WithLabelValues(kindLabel(req.Kind), "error").Inc()
			req.finish(Result{Err: err})
			return
		}

		metrics.RetriesTotal.Inc()
		if !sleepCtx(ctx, backoff(s.prof.BackoffBase, req.attempt-1)) {
			req.finish(Result{Err: ErrCanceled})
			return
		}

		if !s.connected {
			if cerr := s.ensureConnected(ctx); cerr != nil {
				req.finish(Result{Err: ErrCanceled})
				return
			}
		}
	}
}

// dispatch performs exactly one wire round trip.
func (s *Scheduler) dispatch(req *Request) ([]uint16, error) {
	switch req.Kind {
	case ReadBatch:
		if s.readAs(req) == registry.InputRegister {
			return s.conn.ReadInput(req.Batch.Start, req.Batch.Words)
		}
		return s.conn.ReadHolding(req.Batch.Start, req.Batch.Words)
	case WriteSingle:
		return nil, s.conn.WriteSingle(req.Address, req.Values[0])
	case WriteMultiple:
		return nil, s.conn.WriteMultiple(req.Address, req.Values)
	}
	return nil, errors.New("scheduler: unknown request kind")
}

// readAs resolves the function code for a read, honoring the session-wide
// holding fallback latch.
func (s *Scheduler) readAs(req *Request) registry.Kind {
	if req.Kind != ReadBatch {
		return registry.HoldingRegister
	}
	if s.forceHolding.Load() {
		return registry.HoldingRegister
	}
	return req.Batch.ReadAs
}

// cancelPolls fails every queued poll request immediately. Queued commands
// survive for the reconnected session.
func (s *Scheduler) cancelPolls() {
	if len(s.pollQueue) == 0 {
		return
	}
	s.log.Debug().Int("canceled", len(s.pollQueue)).Msg("canceling queued poll reads")
	for _, r := range s.pollQueue {
		r.finish(Result{Err: ErrCanceled})
	}
	s.pollQueue = nil
}

func (s *Scheduler) failQueued(err error) {
	for _, r := range s.cmdQueue {
		r.finish(Result{Err: err})
	}
	s.cmdQueue = nil
	for _, r := range s.pollQueue {
		r.finish(Result{Err: err})
	}
	s.pollQueue = nil
}

func kindLabel(k Kind) string {
	switch k {
	case WriteSingle:
		return "write_single"
	case WriteMultiple:
		return "write_multiple"
	}
	return "read"
}

func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base << uint(attempt)
	if d > maxConnectBackoff || d <= 0 {
		return maxConnectBackoff
	}
	return d
}

// sleepCtx sleeps for d unless ctx ends first; returns false on
// cancellation. Zero and negative durations return immediately.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
