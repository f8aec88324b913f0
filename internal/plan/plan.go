// internal/plan/plan.go
package plan

import (
	"sort"

	"ventgate/internal/profile"
	"ventgate/internal/registry"
)

// Batch is one wire read covering a contiguous (or gap-bridged) run of
// register addresses. Recomputed whenever the catalogue subset or the
// active profile changes; never persisted.
type Batch struct {
	Registers []registry.Descriptor

	Start uint16
	Words uint16

	// Kind is the logical register class of every member.
	Kind registry.Kind

	// ReadAs is the register class actually used on the wire. It differs
	// from Kind when the profile forces the holding fallback for input
	// registers, and may be rewritten by the scheduler after a runtime
	// fallback.
	ReadAs registry.Kind
}

// Read partitions the descriptors into read batches obeying the profile's
// size and gap constraints. Output is deterministic for a given
// descriptors+profile pair.
func Read(defs []registry.Descriptor, p profile.Profile) []Batch {
	if len(defs) == 0 {
		return nil
	}

	sorted := make([]registry.Descriptor, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		return sorted[i].Address < sorted[j].Address
	})

	var out []Batch
	var cur *Batch

	flush := func() {
		if cur != nil {
			out = append(out, *cur)
			cur = nil
		}
	}

	for _, d := range sorted {
		if cur != nil && d.Kind == cur.Kind && fits(cur, d, p) {
			cur.Registers = append(cur.Registers, d)
			if d.End() > cur.Start+cur.Words {
				cur.Words = d.End() - cur.Start
			}
			continue
		}

		flush()
		cur = &Batch{
			Registers: []registry.Descriptor{d},
			Start:     d.Address,
			Words:     d.Span(),
			Kind:      d.Kind,
			ReadAs:    readAs(d.Kind, p),
		}
	}
	flush()

	return out
}

// fits reports whether d can join the current batch: its address must be
// contiguous with the batch's end or within the profile's bridgeable gap,
// and the grown batch must stay within MaxBatchWords.
func fits(b *Batch, d registry.Descriptor, p profile.Profile) bool {
	end := b.Start + b.Words
	if d.Address < end {
		// Overlapping or duplicate address, keep it in the same request.
		return d.End()-b.Start <= p.MaxBatchWords
	}
	if d.Address-end > p.GapBridge {
		return false
	}
	return d.End()-b.Start <= p.MaxBatchWords
}

func readAs(k registry.Kind, p profile.Profile) registry.Kind {
	if k == registry.InputRegister && p.InputStrategy == profile.ForceHolding {
		return registry.HoldingRegister
	}
	return k
}
