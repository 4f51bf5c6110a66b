package actor

import "context"

// Companion bridges a foreign (non-actor) goroutine into the actor graph,
// grounded on CAF's actor_companion.hpp: application code outside any actor
// Push-es values in as if they were Send, and Poll-s the next delivered
// Tuple out, blocking (with context cancellation) rather than matching
// against a Behavior. It is itself backed by an ordinary EventBased actor
// whose sole clause forwards every payload onto a buffered Go channel.
type Companion struct {
	handle Handle
	out chan *Tuple
}

// NewCompanion spawns the backing actor and returns a Companion wired to
// it. buffer sizes the internal channel; a full buffer drops further
// deliveries rather than blocking the backing actor's dispatch loop (a
// companion is meant for a foreign thread that polls promptly, not as an
// unbounded queue).
func NewCompanion(rt *Runtime, buffer int) *Companion {
	if buffer <= 0 {
		buffer = 16
	}
	comp := &Companion{out: make(chan *Tuple, buffer)}
	comp.handle = rt.Spawn(func(ctx *ActorContext) *Behavior {
		return NewBehavior(On(Rest()).Do(rt, func(_ *ActorContext, _ Mapping, msg *Tuple) (*Tuple, error) {
			select {
			case comp.out <- msg.Retain():
			default:
			}
			return nil, nil
		}))
	})
	return comp
}

// Handle returns the backing actor's Handle, so other actors may Link,
// Monitor, or Request it like any other actor.
func (c *Companion) Handle() Handle { return c.handle }

// Push enqueues values as an ordinary fire-and-forget send to the backing
// actor, from whatever goroutine calls it.
func (c *Companion) Push(values...any) bool {
	return Send(c.handle, values...)
}

// Poll blocks until a delivered Tuple is available or ctx is done.
func (c *Companion) Poll(ctx context.Context) (*Tuple, error) {
	select {
	case m := <-c.out:
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
