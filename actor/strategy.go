package actor

import "time"

// dispatchStrategy is replacement for the source's compile-time
// mixin chain (receive-policy mixin × sync-sender mixin × behavior-stack
// mixin, each parameterized by the enclosing actor type): a small interface
// the actor core consumes, with EventBased and Blocking as its two ordinary
// concrete records.
type dispatchStrategy interface {
	// runQuantum dispatches a batch from c's mailbox, returning the number
	// of envelopes dispatched (cached envelopes count too) so the caller can
	// tell "did nothing" from "did a batch". EventBased workers call this
	// once per pickup and drain at most one fairness quantum; Blocking
	// actors call it in a loop from their own dedicated goroutine, and each
	// call waits for mail and then drains everything available.
	runQuantum(c *actorCell) int
	// await implements the behavioral difference between Then (never
	// blocks) and Await: EventBased's await is a no-op, since the
	// cooperative dispatch loop already treats a response-waiting
	// top-of-stack entry like any other; Blocking's await recursively pumps
	// the mailbox on the calling goroutine until id resolves.
	await(c *actorCell, id MessageID)
}

// eventBasedStrategy is the cooperative actor model : no
// private stack, a shared worker pool drains one quantum-sized batch per
// pickup then yields.
type eventBasedStrategy struct{}

func (eventBasedStrategy) runQuantum(c *actorCell) int {
	n := 0
	for n < c.quantum {
		env, ok := c.mailbox.TryPop()
		if !ok {
			break
		}
		c.recycleAfterDispatch(env, c.dispatchOne(env))
		n++
		if _, planned := c.plannedReason(); planned {
			break
		}
	}
	return n
}

func (eventBasedStrategy) await(*actorCell, MessageID) {}

// blockingStrategy is the thread-based actor model : the
// actor owns a dedicated goroutine, and mailbox reads are blocking calls.
type blockingStrategy struct{}

func (blockingStrategy) runQuantum(c *actorCell) int {
	n := 0
	if _, planned := c.plannedReason(); planned {
		// The constructor itself already called Quit — e.g. a blocking
		// actor that decided to exit before its dedicated goroutine ever
		// started. Blocking on an empty, still-open mailbox here would
		// deadlock driveBlocking forever.
		return n
	}
	c.mailbox.BlockUntilNonEmpty(time.Time{})
	for {
		env, ok := c.mailbox.TryPop()
		if !ok {
			break
		}
		c.recycleAfterDispatch(env, c.dispatchOne(env))
		n++
		if _, planned := c.plannedReason(); planned {
			break
		}
	}
	return n
}

// await pumps c's mailbox synchronously, on the calling (handler-invoking)
// goroutine, until id leaves the pending set — by a matching response, a
// sync-timeout, or cancellation. This is the one place a Blocking actor's
// own dispatch recurses into dispatchOne from inside an already-running
// handler frame; legal only because a Blocking actor owns its goroutine
// outright.
func (blockingStrategy) await(c *actorCell, id MessageID) {
	c.setState(StateWaiting)
	defer c.setState(StateRunning)
	for {
		if _, stillPending := c.pending[id]; !stillPending {
			return
		}
		c.mailbox.BlockUntilNonEmpty(time.Time{})
		env, ok := c.mailbox.TryPop()
		if !ok {
			continue
		}
		c.recycleAfterDispatch(env, c.dispatchOne(env))
		if _, planned := c.plannedReason(); planned {
			return
		}
	}
}
