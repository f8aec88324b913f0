// internal/poll/coordinator_test.go
package poll

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ventgate/internal/plan"
	"ventgate/internal/profile"
	"ventgate/internal/publish"
	"ventgate/internal/registry"
	"ventgate/internal/state"
	"ventgate/internal/transport"
)

type fakeReader struct {
	reads    []plan.Batch
	respond  func(b plan.Batch) ([]uint16, error)
	profiles []profile.Profile
}

func (f *fakeReader) Read(_ context.Context, b plan.Batch) ([]uint16, error) {
	f.reads = append(f.reads, b)
	return f.respond(b)
}

func (f *fakeReader) SetProfile(p profile.Profile) {
	f.profiles = append(f.profiles, p)
}

type fakePublisher struct {
	values  [][]publish.Update
	derived []map[string]any
}

func (f *fakePublisher) PublishValues(u []publish.Update) { f.values = append(f.values, u) }
func (f *fakePublisher) PublishDerived(d map[string]any)  { f.derived = append(f.derived, d) }
func (f *fakePublisher) Close()                           {}

func testCatalogue(t *testing.T) *registry.Catalogue {
	t.Helper()
	cat, err := registry.NewCatalogue([]registry.Descriptor{
		{Name: "outdoor_temperature", Address: 12101, Kind: registry.InputRegister, Type: registry.Int16, Scale: 0.1},
		{Name: "supply_temperature", Address: 12102, Kind: registry.InputRegister, Type: registry.Int16, Scale: 0.1},
		{Name: "eco_mode", Address: 2504, Kind: registry.HoldingRegister, Type: registry.Bool, Scale: 1, Access: registry.ReadWrite},
	})
	if err != nil {
		t.Fatalf("catalogue: %v", err)
	}
	return cat
}

func newCoordinator(t *testing.T, reader *fakeReader, pub *fakePublisher, prof profile.Profile) (*Coordinator, *state.Store) {
	t.Helper()
	store := state.NewStore(0)
	c := New(testCatalogue(t), reader, store, pub, prof, time.Second, zerolog.Nop())
	return c, store
}

func TestCycle_DecodesAndPublishesPerBatch(t *testing.T) {
	reader := &fakeReader{respond: func(b plan.Batch) ([]uint16, error) {
		words := make([]uint16, b.Words)
		for i := range words {
			words[i] = 0x00D2 // 210 raw
		}
		return words, nil
	}}
	pub := &fakePublisher{}
	c, store := newCoordinator(t, reader, pub, profile.Generic())

	c.cycle(context.Background())

	r, ok := store.Get("outdoor_temperature")
	if !ok || !r.Available {
		t.Fatalf("outdoor_temperature missing: %+v ok=%v", r, ok)
	}
	if r.Value.Num != 21.0 {
		t.Fatalf("value = %v, want 21.0", r.Value.Num)
	}

	// One holding batch, one input batch; each publishes on completion,
	// derived once per cycle.
	if len(reader.reads) != 2 {
		t.Fatalf("reads = %d, want 2", len(reader.reads))
	}
	if len(pub.values) != 2 {
		t.Fatalf("value publishes = %d, want 2", len(pub.values))
	}
	if len(pub.derived) != 1 {
		t.Fatalf("derived publishes = %d, want 1", len(pub.derived))
	}
}

func TestCycle_FailedBatchScopedToItsRegisters(t *testing.T) {
	reader := &fakeReader{respond: func(b plan.Batch) ([]uint16, error) {
		if b.Kind == registry.InputRegister {
			return nil, transport.ErrTimeout
		}
		return make([]uint16, b.Words), nil
	}}
	pub := &fakePublisher{}
	c, store := newCoordinator(t, reader, pub, profile.Generic())

	c.cycle(context.Background())

	if r, _ := store.Get("outdoor_temperature"); r.Available {
		t.Fatalf("failed batch register should be unavailable")
	}
	if r, ok := store.Get("eco_mode"); !ok || !r.Available {
		t.Fatalf("surviving batch register lost: %+v ok=%v", r, ok)
	}
	// Derived still goes out on a partial cycle.
	if len(pub.derived) != 1 {
		t.Fatalf("derived publishes = %d, want 1", len(pub.derived))
	}
}

func TestCycle_ConnectionLossMarksEverythingAndAborts(t *testing.T) {
	calls := 0
	reader := &fakeReader{respond: func(b plan.Batch) ([]uint16, error) {
		calls++
		if calls == 1 {
			return make([]uint16, b.Words), nil
		}
		return nil, transport.ErrConnectionLost
	}}
	pub := &fakePublisher{}
	c, store := newCoordinator(t, reader, pub, profile.Generic())

	c.cycle(context.Background())

	for _, name := range []string{"eco_mode", "outdoor_temperature", "supply_temperature"} {
		if r, ok := store.Get(name); ok && r.Available {
			t.Fatalf("%s still available after connection loss", name)
		}
	}
	if calls != 2 {
		t.Fatalf("cycle did not abort: %d reads", calls)
	}
}

func TestCycle_DecodeFailureScopedToOneRegister(t *testing.T) {
	// Short read: the input batch comes back one word short, so only the
	// second register in the batch fails to decode.
	reader := &fakeReader{respond: func(b plan.Batch) ([]uint16, error) {
		return make([]uint16, b.Words), nil
	}}
	pub := &fakePublisher{}
	c, store := newCoordinator(t, reader, pub, profile.Generic())

	// Force a decode failure by corrupting the cached plan: shrink the
	// input batch's word count below its register span.
	c.plan()
	c.mu.Lock()
	for i := range c.batches {
		if c.batches[i].Kind == registry.InputRegister {
			c.batches[i].Words--
			c.batches[i].Registers[1].Address++ // now past the short read
		}
	}
	c.mu.Unlock()

	c.cycle(context.Background())

	if r, _ := store.Get("supply_temperature"); r.Available {
		t.Fatalf("register with bad decode should be unavailable")
	}
	if r, ok := store.Get("outdoor_temperature"); !ok || !r.Available {
		t.Fatalf("sibling register lost: %+v ok=%v", r, ok)
	}
}

func TestSetProfile_RebuildsPlanAndForwards(t *testing.T) {
	reader := &fakeReader{respond: func(b plan.Batch) ([]uint16, error) {
		return make([]uint16, b.Words), nil
	}}
	pub := &fakePublisher{}
	c, _ := newCoordinator(t, reader, pub, profile.Generic())

	generic := c.plan()
	for _, b := range generic {
		if b.Kind == registry.InputRegister && b.ReadAs != registry.InputRegister {
			t.Fatalf("generic plan should keep native input reads")
		}
	}

	c.SetProfile(profile.Defensive())

	defensive := c.plan()
	for _, b := range defensive {
		if b.ReadAs != registry.HoldingRegister {
			t.Fatalf("defensive plan should force holding reads")
		}
	}
	if len(reader.profiles) != 1 || reader.profiles[0].Name != "save_connect" {
		t.Fatalf("profile not forwarded to scheduler: %+v", reader.profiles)
	}
}
