// internal/publish/publish.go
package publish

import (
	"time"

	"ventgate/internal/registry"
)

// Update is one published register value.
type Update struct {
	Name      string    `json:"name"`
	Value     any       `json:"value"`
	Available bool      `json:"available"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher receives decoded values as each poll batch completes. A partial
// cycle still publishes the registers that succeeded.
type Publisher interface {
	// PublishValues delivers one batch worth of register updates.
	PublishValues(updates []Update)
	// PublishDerived delivers the derived key/value map once per cycle.
	PublishDerived(derived map[string]any)
	Close()
}

// NewUpdate builds an Update from a decoded value.
func NewUpdate(name string, v registry.Value, available bool, at time.Time) Update {
	u := Update{Name: name, Available: available, Timestamp: at}
	if available {
		u.Value = v.Scalar()
	}
	return u
}

// Nop discards everything; used when no sink is configured.
type Nop struct{}

func (Nop) PublishValues([]Update)        {}
func (Nop) PublishDerived(map[string]any) {}
func (Nop) Close()                        {}
