package actor

import (
	"time"

	"github.com/markInTheAbyss/go-actor/actor/aerrors"
)

// pendingRequest is the bookkeeping an actor keeps for one outstanding
// request id.
type pendingRequest struct {
	dest Handle
	id MessageID
	timer Timer
	breakerDone func(success bool)
	continueWith func(resp *Tuple, err error) (*Tuple, error)
}

// RequestHandle is returned by Request/TimedRequest. At most one of
// Then/Await should be called on it, optionally combined with
// ContinueWith; calling none leaves the request pending until its response
// or sync-timeout resolves it with no behavior installed to observe that.
type RequestHandle struct {
	ctx *ActorContext
	id MessageID
	dest Handle
	pending *pendingRequest
}

// Then stacks behavior as a response-waiting entry keyed by this request's
// id; the actor keeps dispatching other work (via behavior's other clauses,
// if any, or the cache) and matches the response whenever it arrives (spec
// §4.5).
func (h *RequestHandle) Then(behavior *Behavior) {
	h.ctx.cell.stack.becomeWaitingFor(behavior, h.id)
}

// Await stacks behavior the same way as Then. For a Blocking actor it
// additionally puts the actor into StateWaiting and pumps its mailbox on
// the calling goroutine until the request resolves. For an EventBased actor
// it returns at once and behaves exactly like Then: messages the waiting
// behavior does not match are cached. See strategy.go.
func (h *RequestHandle) Await(behavior *Behavior) {
	h.ctx.cell.stack.becomeWaitingFor(behavior, h.id)
	h.ctx.cell.strategy.await(h.ctx.cell, h.id)
}

// ContinueWith composes fn with the handling of this request's response:
// when a clause matches the response, the handler's result and error are
// passed through fn, and a non-nil error fn returns plans the actor's exit
// exactly as a handler error would, mirroring CAF's
// behavior::add_continuation (cppa/behavior.hpp). fn's result tuple is not
// sent anywhere.
func (h *RequestHandle) ContinueWith(fn func(resp *Tuple, err error) (*Tuple, error)) {
	h.pending.continueWith = fn
}

// request is the shared implementation behind ActorContext.Request and
// ActorContext.TimedRequest.
func request(ctx *ActorContext, dest Handle, highPriority bool, payload *Tuple, timeout time.Duration, useBreaker bool) (*RequestHandle, error) {
	cell := ctx.cell
	id := cell.nextMessageID(true, highPriority)

	if useBreaker && cell.breaker != nil {
		done, err := cell.breaker.allow(dest)
		if err != nil {
			return nil, err
		}
		pr := &pendingRequest{dest: dest, id: id, breakerDone: done}
		cell.pending[id] = pr
		if ok := enqueue(dest, ctx.cell.self, id, payload, priorityFor(highPriority)); !ok {
			delete(cell.pending, id)
			done(false)
			return nil, aerrors.ErrMailboxClosed
		}
		armTimeout(cell, pr, timeout)
		return &RequestHandle{ctx: ctx, id: id, dest: dest, pending: pr}, nil
	}

	pr := &pendingRequest{dest: dest, id: id}
	cell.pending[id] = pr
	if ok := enqueue(dest, cell.self, id, payload, priorityFor(highPriority)); !ok {
		delete(cell.pending, id)
		return nil, aerrors.ErrMailboxClosed
	}
	armTimeout(cell, pr, timeout)
	return &RequestHandle{ctx: ctx, id: id, dest: dest, pending: pr}, nil
}

func priorityFor(high bool) Priority {
	if high {
		return PriorityHigh
	}
	return PriorityNormal
}

func armTimeout(cell *actorCell, pr *pendingRequest, timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	self := cell.self
	pr.timer = cell.rt.timers.Schedule(timeout, func() {
		cell.rt.deliverSyncTimeout(self, pr.id)
	})
}

// resolvePending removes id from the actor's pending set, returning the
// entry if it was present (spec P3/invariant (1) of §4.5).
func (c *actorCell) resolvePending(id MessageID) (*pendingRequest, bool) {
	pr, ok := c.pending[id]
	if !ok {
		return nil, false
	}
	delete(c.pending, id)
	if pr.timer != nil {
		pr.timer.Stop()
	}
	return pr, true
}

// cancelRequest removes id from the pending set without it ever having
// resolved.
func (c *actorCell) cancelRequest(id MessageID) {
	if pr, ok := c.pending[id]; ok {
		if pr.timer != nil {
			pr.timer.Stop()
		}
		delete(c.pending, id)
	}
}

// Pending reports how many requests this actor still awaits responses for
// (exposed for tests verifying spec P3).
func (ctx *ActorContext) Pending() int { return len(ctx.cell.pending) }
