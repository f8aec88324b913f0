// internal/registry/registry.go
package registry

import (
	"fmt"
	"sort"
)

// Kind is the register class, which selects the read function code.
type Kind uint8

const (
	HoldingRegister Kind = iota // FC03
	InputRegister               // FC04
)

func (k Kind) String() string {
	if k == InputRegister {
		return "input"
	}
	return "holding"
}

// DataType is the wire representation of one logical value.
type DataType uint8

const (
	Bool DataType = iota
	Int16
	UInt16
	Int32
	UInt32
)

// Words returns how many consecutive registers the type occupies.
func (t DataType) Words() uint16 {
	if t == Int32 || t == UInt32 {
		return 2
	}
	return 1
}

func (t DataType) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int16:
		return "int16"
	case UInt16:
		return "uint16"
	case Int32:
		return "int32"
	case UInt32:
		return "uint32"
	}
	return "unknown"
}

// Access marks whether a register accepts writes.
type Access uint8

const (
	ReadOnly Access = iota
	ReadWrite
)

// Descriptor is one immutable catalogue entry.
//
// Address is the zero-based protocol address; vendor manuals number
// registers from 1, so a PDF address maps here as (PDF - 1).
// 32-bit types occupy (Address, Address+1), high word at the lower address.
type Descriptor struct {
	Name    string
	Address uint16
	Kind    Kind
	Type    DataType
	Scale   float64
	Access  Access
}

// Span is the number of registers the descriptor occupies on the wire.
func (d Descriptor) Span() uint16 { return d.Type.Words() }

// End is the first address past the descriptor.
func (d Descriptor) End() uint16 { return d.Address + d.Span() }

// Catalogue is the full set of descriptors for one device model,
// built once at startup and never mutated.
type Catalogue struct {
	byName map[string]Descriptor
	sorted []Descriptor
}

// NewCatalogue builds a catalogue from a descriptor table.
// Names must be unique and scales non-zero.
func NewCatalogue(defs []Descriptor) (*Catalogue, error) {
	c := &Catalogue{byName: make(map[string]Descriptor, len(defs))}

	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("registry: descriptor at address %d has no name", d.Address)
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate descriptor name %q", d.Name)
		}
		if d.Scale == 0 {
			return nil, fmt.Errorf("registry: descriptor %q has zero scale", d.Name)
		}
		c.byName[d.Name] = d
	}

	c.sorted = make([]Descriptor, 0, len(defs))
	c.sorted = append(c.sorted, defs...)
	sort.Slice(c.sorted, func(i, j int) bool {
		if c.sorted[i].Kind != c.sorted[j].Kind {
			return c.sorted[i].Kind < c.sorted[j].Kind
		}
		return c.sorted[i].Address < c.sorted[j].Address
	})

	return c, nil
}

// Lookup returns the descriptor with the given logical name.
func (c *Catalogue) Lookup(name string) (Descriptor, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// All returns every descriptor ordered by kind then address.
// The returned slice must not be modified.
func (c *Catalogue) All() []Descriptor { return c.sorted }

// Len returns the number of descriptors.
func (c *Catalogue) Len() int { return len(c.sorted) }
