package actor

import (
	"fmt"

	"github.com/markInTheAbyss/go-actor/actor/aerrors"
)

// dispatchOutcome reports what happened when one envelope was offered to
// the actor's current top-of-stack behavior.
type dispatchOutcome int

const (
	// dispatchSuccess: a clause matched and its handler ran.
	dispatchSuccess dispatchOutcome = iota
	// dispatchCached: nothing matched; the envelope was set aside.
	dispatchCached
	// dispatchDropped: a stale system envelope (superseded timeout epoch,
	// already-resolved sync-timeout) was discarded outright.
	dispatchDropped
	// dispatchSkip: env is already marked as under processing higher up this
	// same goroutine's call stack (dispatchOne recurses from inside a running
	// handler through a Blocking actor's Await pump, strategy.go's
	// blockingStrategy.await, and through Become's cache drain) or the
	// recursion depth bound was hit; set aside exactly like an unmatched
	// envelope, the recursion guard of the design's nestable-invoke policy.
	dispatchSkip
)

// maxInvokeDepth bounds how many handler invocations may nest on one
// goroutine's call stack before dispatchOne refuses to recurse further. A
// Blocking actor's Await and any actor's Become (which drains the mailbox
// cache) recurse into dispatchOne from inside a running handler; an actor
// whose handlers keep doing so without ever unwinding would otherwise grow
// this goroutine's stack without bound.
const maxInvokeDepth = 256

// behaviorTimeoutSignal is the private envelope payload the timer service
// delivers back to an actor's own mailbox when a behavior's timeout
// elapses with nothing matched in the meantime. It carries the
// epoch token so a superseded behavior's stale firing is told apart from a
// live one, per behaviorStack.nextEpoch()'s doc comment.
type behaviorTimeoutSignal struct {
	epoch uint64
}

// dispatchOne offers env to cell's current top-of-stack behavior, running
// at most one matching clause's handler. It is the single place every
// dispatch strategy funnels through.
func (c *actorCell) dispatchOne(env *Envelope) dispatchOutcome {
	if env.processing || c.invokeDepth >= maxInvokeDepth {
		c.mailbox.CacheAppend(env)
		return dispatchSkip
	}
	if sig, ok := soleValue[behaviorTimeoutSignal](env.Payload); ok {
		return c.dispatchBehaviorTimeout(sig)
	}
	if st, ok := soleValue[SyncTimeout](env.Payload); ok {
		return c.dispatchSyncTimeout(st.RequestID)
	}
	if env.ID.IsResponse() {
		// A response whose request was cancelled, timed out, or already
		// answered is no longer pending and is dropped.
		if _, pending := c.pending[env.ID.AsRequest()]; !pending {
			return dispatchDropped
		}
	}

	top := c.stack.top()
	behavior := top.behavior
	armedEpoch := top.timeoutEpoch
	candidates := behavior.candidates(env.Payload)
	for _, idx := range candidates {
		cl := behavior.clauses[idx]
		mv, ok := Match(cl.Pattern, env.Payload)
		if !ok {
			continue
		}
		env.processing = true
		resp, err := c.invoke(cl.Handler, env, mv)
		env.processing = false

		// A match cancels the still-current behavior's armed timeout: its
		// pending timer firing now carries a stale epoch and is dropped.
		if t := c.stack.top(); armedEpoch != 0 && t.behavior == behavior && t.timeoutEpoch == armedEpoch {
			t.timeoutEpoch = c.stack.nextEpoch()
		}

		if env.ID.IsResponse() {
			reqID := env.ID.AsRequest()
			if pr, ok := c.resolvePending(reqID); ok {
				if pr.breakerDone != nil {
					pr.breakerDone(err == nil)
				}
				if pr.continueWith != nil {
					resp, err = pr.continueWith(resp, err)
				}
			}
			c.stack.popResponseWaiting(reqID)
		}

		c.afterHandler(env, resp, err)
		return dispatchSuccess
	}

	c.mailbox.CacheAppend(env)
	return dispatchCached
}

// invoke runs handler with panic recovery, converting a panic into the
// ErrHandlerPanicked error rather than propagating it into the scheduler
//.
func (c *actorCell) invoke(handler HandlerFunc, env *Envelope, mv Mapping) (resp *Tuple, err error) {
	ctx := &ActorContext{cell: c, env: env}
	c.invokeDepth++
	defer func() {
		c.invokeDepth--
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", aerrors.ErrHandlerPanicked, r)
		}
	}()
	return handler(ctx, mv, env.Payload)
}

// afterHandler applies the post-handler bookkeeping common to every
// dispatch: a handler error plans an abnormal exit; a non-nil response to
// a request-flagged envelope with a live sender is mailed back correlated
// via Response.
func (c *actorCell) afterHandler(env *Envelope, resp *Tuple, err error) {
	if err != nil {
		c.planExit(ExitUnhandledException)
		return
	}
	if env.ID.IsRequest() && !env.Sender.IsZero() && resp != nil {
		enqueue(env.Sender, c.self, env.ID.Response(), resp, PriorityNormal)
	}
}

// dispatchBehaviorTimeout fires top's onTimeout callback iff sig's epoch
// still matches the epoch armed for the currently-installed behavior;
// otherwise the behavior was superseded by a later Become/Unbecome/Then
// and the firing is stale.
func (c *actorCell) dispatchBehaviorTimeout(sig behaviorTimeoutSignal) dispatchOutcome {
	top := c.stack.top()
	if !top.behavior.HasTimeout() || top.timeoutEpoch != sig.epoch {
		return dispatchDropped
	}
	if fn := top.behavior.onTimeout; fn != nil {
		c.invokeDepth++
		fn()
		c.invokeDepth--
	}
	return dispatchSuccess
}

// dispatchSyncTimeout resolves a pending request whose deadline elapsed
// with no response seen. If id is no
// longer pending (its response or cancellation already resolved it), the
// firing is stale and dropped. Absent the actor's sync-failure callback
// (OnSyncFailure), the actor is planned to exit with
// ExitUnhandledSyncTimeout.
func (c *actorCell) dispatchSyncTimeout(id MessageID) dispatchOutcome {
	pr, ok := c.resolvePending(id)
	if !ok {
		return dispatchDropped
	}
	if pr.breakerDone != nil {
		pr.breakerDone(false)
	}
	c.stack.popResponseWaiting(id)
	if c.syncFailure != nil {
		c.syncFailure(id, aerrors.ErrSyncTimeout)
	} else {
		c.planExit(ExitUnhandledSyncTimeout)
	}
	return dispatchSuccess
}

// recycleAfterDispatch returns env to the Runtime's envelope pool unless
// outcome set it aside in the mailbox cache, where it must stay alive for a
// future Become (or, for dispatchSkip, the outer in-flight invocation) to
// retry.
func (c *actorCell) recycleAfterDispatch(env *Envelope, outcome dispatchOutcome) {
	if outcome == dispatchCached || outcome == dispatchSkip {
		return
	}
	c.rt.envelopes.put(env)
}

// soleValue reports whether tup carries exactly one element of type T,
// returning it. Used to recognize the kernel's own synthetic single-value
// system envelopes without a reserved TypeID scheme.
func soleValue[T any](tup *Tuple) (T, bool) {
	var zero T
	if tup == nil || tup.Size() != 1 {
		return zero, false
	}
	v, ok := tup.ElementAt(0).(T)
	return v, ok
}
