package actor

import (
	"time"

	"github.com/markInTheAbyss/go-actor/actor/aerrors"
)

// Spawn creates an EventBased (cooperative) actor: fn runs once,
// synchronously on the calling goroutine before Spawn returns, to build its
// initial Behavior (the design's spawn(fn, args…)). fn receives the actor's
// own Context, so it may Become, Link, Monitor, etc. before returning.
func (rt *Runtime) Spawn(fn func(ctx *ActorContext) *Behavior) Handle {
	return rt.spawn(fn, eventBasedStrategy{})
}

// SpawnLinked spawns an EventBased actor already linked to parent, as if
// Link(parent, result) had been called atomically at creation.
func (rt *Runtime) SpawnLinked(parent Handle, fn func(ctx *ActorContext) *Behavior) Handle {
	h := rt.spawn(fn, eventBasedStrategy{})
	Link(parent, h)
	return h
}

// SpawnMonitored spawns an EventBased actor already monitored by watcher
//.
func (rt *Runtime) SpawnMonitored(watcher Handle, fn func(ctx *ActorContext) *Behavior) Handle {
	h := rt.spawn(fn, eventBasedStrategy{})
	Monitor(watcher, h)
	return h
}

// SpawnBlocking creates a Blocking (thread-based) actor: its constructor fn
// runs on the calling goroutine, as with Spawn; after that it owns a
// dedicated goroutine rather than sharing the cooperative worker pool.
func (rt *Runtime) SpawnBlocking(fn func(ctx *ActorContext) *Behavior) Handle {
	h := rt.spawn(fn, blockingStrategy{})
	go rt.scheduler.driveBlocking(h.cell)
	return h
}

// noopBehavior is the catch-all fallback installed for a spawned actor that
// built its real behavior entirely through ctx (Request/Await, Become)
// during its constructor function and returned nil, or whose constructor
// left it with nothing at all. Its single Rest() clause matches every
// payload and discards it; it exists only so the actor's top-of-stack is
// never an empty behavior.
func noopBehavior(rt *Runtime) *Behavior {
	return NewBehavior(On(Rest()).Do(rt, func(*ActorContext, Mapping, *Tuple) (*Tuple, error) {
		return nil, nil
	}))
}

// spawn builds the actor's cell and runs fn as its constructor. fn runs
// synchronously, on the calling goroutine, before spawn returns — so fn may
// itself call ctx.Request(...).Await(...) and leave the behavior stack already holding the response-
// waiting entry it pushed; spawn only installs fn's returned Behavior on
// top if fn left the stack's top unrelated to it (the common case: fn just
// built and returned a Behavior without touching ctx at all).
func (rt *Runtime) spawn(fn func(ctx *ActorContext) *Behavior, strategy dispatchStrategy) Handle {
	cell := newActorCell(rt, rt.cfg.Quantum)
	cell.strategy = strategy
	if rt.breaker != nil {
		// A nil *BreakerSet stored in the interface would compare non-nil.
		cell.breaker = rt.breaker
	}
	self := newHandle(cell)
	cell.self = self
	cell.stack = newBehaviorStack(NewBehavior())

	ctx := &ActorContext{cell: cell, env: &Envelope{}}
	initial := fn(ctx)

	top := cell.stack.top()
	if initial != nil && initial != top.behavior {
		epoch := cell.stack.become(initial, PolicyDiscard)
		cell.armBehaviorTimeout(initial, epoch)
	} else if top.behavior.Empty() {
		cell.stack.become(noopBehavior(rt), PolicyDiscard)
	}

	// fn may have already called ctx.Quit synchronously (e.g. a guard
	// clause that rejects its own construction). Nothing will ever drive
	// this cell's dispatch loop in that case — an EventBased cell only
	// gets a scheduler tick once a producer enqueues it — so run the
	// termination sequence immediately rather than leaving it stranded in
	// StateIdle forever.
	if reason, planned := cell.plannedReason(); planned {
		rt.terminate(cell, reason)
	}
	return self
}

// Send is the fire-and-forget, normal-priority, uncorrelated send of spec
// §6. It reports whether dest accepted the message (false if dest had
// already terminated).
func Send(dest Handle, values...any) bool {
	if dest.cell == nil {
		return false
	}
	payload := NewTuple(dest.cell.rt.registry, values...)
	return enqueue(dest, Handle{}, 0, payload, PriorityNormal)
}

// SendFrom is Send, but records sender as the envelope's origin so dest's
// CurrentSender resolves to it.
func SendFrom(sender, dest Handle, values...any) bool {
	if dest.cell == nil {
		return false
	}
	payload := NewTuple(dest.cell.rt.registry, values...)
	return enqueue(dest, sender, 0, payload, PriorityNormal)
}

// SendPriority is Send on the high-priority band.
func SendPriority(dest Handle, values...any) bool {
	if dest.cell == nil {
		return false
	}
	payload := NewTuple(dest.cell.rt.registry, values...)
	return enqueue(dest, Handle{}, 0, payload, PriorityHigh)
}

// Request sends values to dest and returns a RequestHandle correlated by a
// fresh id, with no deadline — it never sync-times-out on its own (spec
// §6's request(dest, value…)).
func (ctx *ActorContext) Request(dest Handle, values...any) (*RequestHandle, error) {
	payload := NewTuple(ctx.cell.rt.registry, values...)
	return request(ctx, dest, false, payload, 0, false)
}

// TimedRequest is Request with a deadline: if no response arrives within
// timeout, the request resolves via sync-timeout instead (the design's
// timed_request(dest, duration, value…)).
func (ctx *ActorContext) TimedRequest(dest Handle, timeout time.Duration, values...any) (*RequestHandle, error) {
	payload := NewTuple(ctx.cell.rt.registry, values...)
	return request(ctx, dest, false, payload, timeout, false)
}

// TimedRequestWithBreaker is TimedRequest routed through the Runtime's
// BreakerSet, if one is configured (SPEC_FULL.md §B); with none configured
// it behaves exactly like TimedRequest.
func (ctx *ActorContext) TimedRequestWithBreaker(dest Handle, timeout time.Duration, values...any) (*RequestHandle, error) {
	payload := NewTuple(ctx.cell.rt.registry, values...)
	return request(ctx, dest, false, payload, timeout, true)
}

// Become installs behavior on top of the behavior stack per policy, then
// drains the mailbox cache against it before returning — P6's "immediately
// after become(B) returns, no envelope that matches B remains in the
// mailbox cache before new mailbox envelopes are dispatched".
func (ctx *ActorContext) Become(behavior *Behavior, policy becomePolicy) {
	if behavior.Empty() {
		panic(aerrors.ErrEmptyBehavior)
	}
	c := ctx.cell
	epoch := c.stack.become(behavior, policy)
	c.armBehaviorTimeout(behavior, epoch)
	c.drainCache()
}

// Unbecome pops the current behavior back to the one beneath it (spec
// §6's unbecome). It is a no-op if the stack would become empty or the
// top entry is a response-waiting one (those resolve only via their
// response, sync-timeout, or sync-failure).
func (ctx *ActorContext) Unbecome() bool {
	return ctx.cell.stack.unbecome()
}

// Link atomically links ctx's own actor with peer (link(peer)).
func (ctx *ActorContext) Link(peer Handle) { Link(ctx.cell.self, peer) }

// Unlink is the inverse of Link.
func (ctx *ActorContext) Unlink(peer Handle) { Unlink(ctx.cell.self, peer) }

// MonitorPeer installs a one-shot monitor of peer, owned by ctx's actor
// (monitor(peer)).
func (ctx *ActorContext) MonitorPeer(peer Handle) { Monitor(ctx.cell.self, peer) }

// DemonitorPeer removes a previously installed monitor of peer.
func (ctx *ActorContext) DemonitorPeer(peer Handle) { Demonitor(ctx.cell.self, peer) }

// TrapExit sets whether ctx's actor receives EXIT as an ordinary envelope
// (true) or cascades non-normal peer termination onto itself (false, the
// default) — trap_exit(bool).
func (ctx *ActorContext) TrapExit(v bool) { ctx.cell.SetTrapExit(v) }

// TrapsExit reports the current trap-exit flag.
func (ctx *ActorContext) TrapsExit() bool { return ctx.cell.TrapExit() }

// Quit sets ctx's actor's planned exit reason (quit(reason));
// idempotent — only the first call's reason sticks. The
// actual termination sequence (§4.7) runs once the current handler
// invocation completes and the owning strategy observes the planned
// reason.
func (ctx *ActorContext) Quit(reason ExitReason) { ctx.cell.planExit(reason) }

// OnSyncFailure installs the callback invoked when a pending request
// resolves via sync-timeout or sync-failure with no other observer (spec
// §7's "request.await... signals the installed sync-failure/sync-timeout
// callback"). A nil callback (the default) falls back to the reserved-
// exit-reason termination the design describes.
func (ctx *ActorContext) OnSyncFailure(fn func(id MessageID, err error)) {
	ctx.cell.syncFailure = fn
}

// CancelRequest removes id from ctx's actor's pending set without it ever
// having resolved; a response or
// sync-timeout that arrives afterward for id is silently dropped.
func (ctx *ActorContext) CancelRequest(id MessageID) { ctx.cell.cancelRequest(id) }

// armBehaviorTimeout schedules behavior's timeout callback, if it has one,
// to fire epoch back into the actor's own mailbox once the timer elapses
//.
func (c *actorCell) armBehaviorTimeout(behavior *Behavior, epoch uint64) {
	if !behavior.HasTimeout() {
		return
	}
	self := c.self
	reg := c.rt.registry
	c.rt.timers.Schedule(behavior.Timeout(), func() {
		payload := NewTuple(reg, behaviorTimeoutSignal{epoch: epoch})
		enqueue(self, Handle{}, 0, payload, PriorityHigh)
	})
}

// drainCache retries every envelope set aside in the mailbox cache against
// the (now current) top-of-stack behavior, in original arrival order,
// before this call returns — implementing P6. Envelopes that still don't
// match are re-cached by dispatchOne itself.
func (c *actorCell) drainCache() {
	drained := c.mailbox.CacheDrain()
	for _, env := range drained {
		c.recycleAfterDispatch(env, c.dispatchOne(env))
		if _, planned := c.plannedReason(); planned {
			return
		}
	}
}
