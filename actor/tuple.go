package actor

import (
	"reflect"
	"sync/atomic"

	"github.com/markInTheAbyss/go-actor/actor/internal/registry"
)

// Tuple is the ordered, reference-counted message payload described in
// the design/§4.1. It supports two construction modes: NewTuple builds a
// dynamically typed payload (element types recorded per element, no stable
// type token, forces the matcher into element-by-element comparison);
// NewStaticTuple builds a statically typed payload whose element-type list
// is fixed at the call site, letting the matcher fingerprint it once into a
// Token for O(1) same-shape comparisons and match-cache lookups.
//
// Tuples are shared by reference count (Retain/Release); any mutation
// through Set copies on write once the count exceeds one, per spec
// invariant (3) of §4.1.
type Tuple struct {
	reg *registry.Registry
	static bool
	values []any
	typeIDs []registry.TypeID
	token registry.Token
	refs *int32
}

// NewTuple constructs a dynamically typed Tuple from values. Element types
// are recorded individually; the tuple carries no stable type token.
func NewTuple(reg *registry.Registry, values...any) *Tuple {
	return newTuple(reg, false, values)
}

// NewStaticTuple constructs a statically typed Tuple: the caller asserts
// that every Tuple built through this call site shares the same ordered
// element-type list, so the returned Tuple's Token is a valid fingerprint
// for match-cache purposes.
func NewStaticTuple(reg *registry.Registry, values...any) *Tuple {
	return newTuple(reg, true, values)
}

func newTuple(reg *registry.Registry, static bool, values []any) *Tuple {
	ids := make([]registry.TypeID, len(values))
	for i, v := range values {
		ids[i] = reg.IDOf(reflect.TypeOf(v))
	}
	cp := make([]any, len(values))
	copy(cp, values)
	refs := int32(1)
	t := &Tuple{
		reg: reg,
		static: static,
		values: cp,
		typeIDs: ids,
		refs: &refs,
	}
	if static {
		t.token = reg.TokenOf(ids)
	}
	return t
}

// Size returns the element count.
func (t *Tuple) Size() int { return len(t.values) }

// Static reports whether this Tuple was built via NewStaticTuple. A
// dynamically typed Tuple (Static == false) always bypasses the
// per-behavior match cache.
func (t *Tuple) Static() bool { return t.static }

// TypeToken returns the Tuple's type token and true if this Tuple is
// statically typed; a dynamically typed Tuple returns (0, false).
func (t *Tuple) TypeToken() (registry.Token, bool) {
	if !t.static {
		return 0, false
	}
	return t.token, true
}

// ElementType returns the TypeID of the i-th element.
func (t *Tuple) ElementType(i int) registry.TypeID { return t.typeIDs[i] }

// ElementAt returns a read-only view of the i-th element.
func (t *Tuple) ElementAt(i int) any { return t.values[i] }

// Retain increments the reference count and returns t for chaining.
func (t *Tuple) Retain() *Tuple {
	atomic.AddInt32(t.refs, 1)
	return t
}

// Release decrements the reference count. Tuples have no finalizer; Release
// exists so pool-style callers (the envelope free list) can tell when the
// last handle let go and it is safe to mutate a structurally-shared Tuple
// in place again.
func (t *Tuple) Release() {
	atomic.AddInt32(t.refs, -1)
}

// shared reports whether more than one handle currently references t.
func (t *Tuple) shared() bool {
	return atomic.LoadInt32(t.refs) > 1
}

// Set returns a Tuple with element i replaced by v. If t is uniquely owned
// (refcount == 1) the mutation happens in place and t itself is returned;
// otherwise a fresh copy is made (copy-on-write) and returned, leaving the
// shared original untouched.
func (t *Tuple) Set(i int, v any) *Tuple {
	id := t.reg.IDOf(reflect.TypeOf(v))
	if !t.shared() {
		t.values[i] = v
		t.typeIDs[i] = id
		if t.static {
			t.token = t.reg.TokenOf(t.typeIDs)
		}
		return t
	}
	cpVals := make([]any, len(t.values))
	copy(cpVals, t.values)
	cpVals[i] = v
	cpIDs := make([]registry.TypeID, len(t.typeIDs))
	copy(cpIDs, t.typeIDs)
	cpIDs[i] = id
	refs := int32(1)
	nt := &Tuple{
		reg: t.reg,
		static: t.static,
		values: cpVals,
		typeIDs: cpIDs,
		refs: &refs,
	}
	if t.static {
		nt.token = t.reg.TokenOf(cpIDs)
	}
	return nt
}
