// internal/poll/coordinator.go
package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ventgate/internal/metrics"
	"ventgate/internal/plan"
	"ventgate/internal/profile"
	"ventgate/internal/publish"
	"ventgate/internal/registry"
	"ventgate/internal/state"
	"ventgate/internal/transport"
)

// reader is the slice of the scheduler the coordinator needs.
type reader interface {
	Read(ctx context.Context, b plan.Batch) ([]uint16, error)
	SetProfile(p profile.Profile)
}

// Coordinator runs the periodic read cycle: it plans batches from the
// catalogue, reads them through the scheduler, decodes into the store and
// publishes as each batch lands. One goroutine, one cycle at a time; a
// cycle that outlasts the scan interval skips the missed tick instead of
// stacking up.
type Coordinator struct {
	cat      *registry.Catalogue
	sched    reader
	store    *state.Store
	pub      publish.Publisher
	log      zerolog.Logger
	interval time.Duration

	mu      sync.Mutex
	prof    profile.Profile
	batches []plan.Batch
}

func New(cat *registry.Catalogue, sched reader, store *state.Store, pub publish.Publisher, prof profile.Profile, interval time.Duration, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		cat:      cat,
		sched:    sched,
		store:    store,
		pub:      pub,
		log:      log.With().Str("component", "poll").Logger(),
		interval: interval,
		prof:     prof,
	}
}

// SetProfile swaps the active profile: the batch plan is rebuilt on the
// next cycle and the scheduler picks up the new pacing and retry tuning.
func (c *Coordinator) SetProfile(p profile.Profile) {
	c.mu.Lock()
	c.prof = p
	c.batches = nil
	c.mu.Unlock()
	c.sched.SetProfile(p)
}

// Run polls until ctx is canceled. The first cycle starts immediately.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cycle(ctx)
			// A cycle longer than the interval leaves a tick pending.
			// Drop it so cycles never overlap or burst.
			select {
			case <-ticker.C:
				metrics.PollOverruns.Inc()
				c.log.Warn().Dur("interval", c.interval).Msg("poll cycle overran scan interval")
			default:
			}
		}
	}
}

// cycle reads every planned batch once. Failures are scoped: a bad batch
// marks only its registers unavailable, a lost connection marks everything.
func (c *Coordinator) cycle(ctx context.Context) {
	started := time.Now()

	for _, b := range c.plan() {
		if ctx.Err() != nil {
			return
		}

		words, err := c.sched.Read(ctx, b)
		if err != nil {
			c.store.MarkUnavailable(names(b))
			if errors.Is(err, transport.ErrConnectionLost) {
				c.log.Warn().Err(err).Msg("connection lost mid-cycle")
				c.store.MarkAllUnavailable()
				return
			}
			c.log.Warn().Err(err).Uint16("start", b.Start).Uint16("words", b.Words).
				Msg("batch read failed")
			continue
		}

		c.applyBatch(b, words)
	}

	c.pub.PublishDerived(c.store.Derived())
	metrics.PollCycles.Inc()
	c.log.Debug().Dur("took", time.Since(started)).Msg("poll cycle done")
}

// applyBatch decodes each member register out of the batch words and
// publishes the batch's updates. A register that fails to decode is marked
// unavailable on its own; the rest of the batch still lands.
func (c *Coordinator) applyBatch(b plan.Batch, words []uint16) {
	now := time.Now()
	updates := make([]publish.Update, 0, len(b.Registers))

	for _, d := range b.Registers {
		// A register outside the returned words decodes against an empty
		// slice so the length check in Decode reports it.
		off, span := int(d.Address-b.Start), int(d.Span())
		var seg []uint16
		if off >= 0 && off+span <= len(words) {
			seg = words[off : off+span]
		}
		v, err := registry.Decode(d, seg)
		if err != nil {
			c.log.Warn().Err(err).Str("register", d.Name).Msg("decode failed")
			c.store.MarkUnavailable([]string{d.Name})
			updates = append(updates, publish.NewUpdate(d.Name, registry.Value{}, false, now))
			continue
		}
		c.store.Apply(d.Name, v, now)
		updates = append(updates, publish.NewUpdate(d.Name, v, true, now))
	}

	c.pub.PublishValues(updates)
}

// plan returns the cached batch plan, rebuilding it after a profile change.
func (c *Coordinator) plan() []plan.Batch {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.batches == nil {
		c.batches = plan.Read(c.cat.All(), c.prof)
		c.log.Info().Str("profile", c.prof.Name).Int("batches", len(c.batches)).
			Msg("batch plan rebuilt")
	}
	return c.batches
}

func names(b plan.Batch) []string {
	out := make([]string, len(b.Registers))
	for i, d := range b.Registers {
		out[i] = d.Name
	}
	return out
}
