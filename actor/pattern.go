package actor

import (
	"reflect"

	"github.com/markInTheAbyss/go-actor/actor/aerrors"
	"github.com/markInTheAbyss/go-actor/actor/internal/registry"
)

// SlotKind tags the four slot shapes the design allows in a pattern.
type SlotKind uint8

const (
	// SlotTyped matches any single element of the given Go type.
	SlotTyped SlotKind = iota
	// SlotTypedValue matches a single element of the given type that also
	// equals Value (via reflect.DeepEqual unless Equal is set).
	SlotTypedValue
	// SlotAny matches any single element, of any type (count-preserving).
	SlotAny
	// SlotMany is the variadic wildcard: zero or more consecutive elements.
	SlotMany
)

// Slot is one descriptor in a Pattern.
type Slot struct {
	Kind SlotKind
	Type reflect.Type // SlotTyped, SlotTypedValue
	Value any // SlotTypedValue
	Equal func(have, want any) bool // optional override for SlotTypedValue
}

// Typed returns a SlotTyped slot matching any value of T's type.
func Typed[T any]() Slot {
	var zero T
	return Slot{Kind: SlotTyped, Type: reflect.TypeOf(zero)}
}

// TypedValue returns a SlotTypedValue slot matching exactly value.
func TypedValue(value any) Slot {
	return Slot{Kind: SlotTypedValue, Type: reflect.TypeOf(value), Value: value}
}

// Any returns a single-element wildcard slot.
func Any() Slot { return Slot{Kind: SlotAny} }

// Rest returns a variadic (zero-or-more) wildcard slot.
func Rest() Slot { return Slot{Kind: SlotMany} }

// wildcardTopology selects one of the five matcher strategies 
type wildcardTopology uint8

const (
	topologyNone wildcardTopology = iota
	topologyTrailing
	topologyLeading
	topologyInBetween
	topologyMultiple
)

// Pattern is a compiled, ready-to-match sequence of Slots. Construct with
// NewPattern; construction validates the variadic-wildcard arity rules that
// CAF enforced with a compile-time static_assert (cppa/pattern.hpp /
// detail/matches.hpp) and that Go must instead reject at run time.
type Pattern struct {
	reg *registry.Registry
	slots []Slot
	topology wildcardTopology

	// manyPositions holds the index (within slots) of each SlotMany, in
	// ascending order; len is 0, 1, or 2.
	manyPositions []int

	// k is the count of non-wildcard-many slots (SlotAny counts toward k;
	// it binds exactly one element, it just doesn't constrain its type).
	k int
}

// NewPattern validates and compiles slots into a Pattern.
func NewPattern(reg *registry.Registry, slots...Slot) (*Pattern, error) {
	var many []int
	k := 0
	for i, s := range slots {
		if s.Kind == SlotMany {
			many = append(many, i)
		} else {
			k++
		}
	}
	if len(many) > 2 {
		return nil, aerrors.ErrInvalidPattern
	}
	var topology wildcardTopology
	switch len(many) {
	case 0:
		topology = topologyNone
	case 1:
		switch {
		case len(slots) == 1:
			// A single Rest() slot: k=0, accepts any payload including the
			// empty one. Classified as trailing per spec §8's boundary case.
			topology = topologyTrailing
		case many[0] == 0:
			topology = topologyLeading
		case many[0] == len(slots)-1:
			topology = topologyTrailing
		default:
			topology = topologyInBetween
		}
	case 2:
		if many[1] == many[0]+1 {
			return nil, aerrors.ErrInvalidPattern
		}
		topology = topologyMultiple
	}
	return &Pattern{reg: reg, slots: slots, topology: topology, manyPositions: many, k: k}, nil
}

// staticTypeIDs returns the TypeIDs of this pattern's slots when every slot
// is SlotTyped or SlotTypedValue. Any SlotAny or SlotMany slot makes it
// report false, so the static token path is only taken when every slot is
// typed; otherwise matchNone falls back to element-by-element comparison
// (see matcher.go).
func (p *Pattern) staticTypeIDs() ([]registry.TypeID, bool) {
	ids := make([]registry.TypeID, 0, len(p.slots))
	for _, s := range p.slots {
		switch s.Kind {
		case SlotTyped, SlotTypedValue:
			ids = append(ids, p.reg.IDOf(s.Type))
		default:
			return nil, false
		}
	}
	return ids, true
}
