package actor

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle is the opaque, cheaply copyable ActorHandle. Copies share the
// underlying actor by pointer; comparing two Handles (with ==,
// since both fields are themselves comparable) answers identity, which
// doubles as Go's native hashing story for use as a map key.
//
// The uuid gives each actor a process-wide-unique identity independent of
// its memory address, useful once a supervisor subtree is respawned at a
// different address but application code still wants to recognize "the
// actor that used to be at this position in the tree".
type Handle struct {
	id uuid.UUID
	cell *actorCell
}

// IsZero reports whether h is the zero Handle (no actor).
func (h Handle) IsZero() bool { return h.cell == nil }

// ID returns the process-wide-unique identity of the actor h refers to.
func (h Handle) ID() uuid.UUID { return h.id }

// retain bumps the explicit handle refcount used by §4.7 step 5
// ("decrement the owning handle count"). In Go, the actor's memory is
// reclaimed by the GC regardless. The count is retained once by newHandle
// and released once by terminate; copying a Handle does not change it, so
// it does not count live Handles.
func (h Handle) retain() {
	if h.cell != nil {
		atomic.AddInt32(&h.cell.handleRefs, 1)
	}
}

// release decrements the explicit handle refcount.
func (h Handle) release() {
	if h.cell != nil {
		atomic.AddInt32(&h.cell.handleRefs, -1)
	}
}

func newHandle(cell *actorCell) Handle {
	h := Handle{id: uuid.New(), cell: cell}
	h.retain()
	return h
}
