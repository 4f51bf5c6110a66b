package actor

import (
	"sync"
	"sync/atomic"
)

// State is the per-actor scheduling state.
type State int32

const (
	StateIdle State = iota
	StateRunnable
	StateRunning
	StateWaiting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunnable:
		return "runnable"
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// ExitReason is the 32-bit termination code an actor exits with.
type ExitReason uint32

const (
	ExitNormal ExitReason = 0
	ExitUnhandledException ExitReason = 1
	ExitUnhandledSyncFailure ExitReason = 2
	ExitUnhandledSyncTimeout ExitReason = 3
	// ExitUserDefinedBase is the first value an application may use for its
	// own exit codes.
	ExitUserDefinedBase ExitReason = 16
)

// EXIT is the system envelope delivered to a linked peer that traps exits.
type EXIT struct {
	From Handle
	Reason ExitReason
}

// DOWN is the system envelope delivered to a monitor on the watched actor's
// termination.
type DOWN struct {
	From Handle
	Reason ExitReason
}

// SyncTimeout is the synthetic envelope payload delivered when a
// TimedRequest's deadline elapses.
type SyncTimeout struct {
	RequestID MessageID
}

const noReason int64 = -1

// actorCell is the private, non-exported actor record Handle points at. All
// fields past construction are touched exclusively by the owning actor's
// consumer path, except state, plannedExit, handleRefs, and trapExit,
// which producers/peers mutate as plain atomics with no actor-private lock,
// and links and monitors, which peers mutate under mu.
type actorCell struct {
	rt *Runtime
	self Handle
	mailbox *Mailbox
	stack *behaviorStack

	state atomic.Int32
	plannedExit atomic.Int64 // noReason until Quit is observed
	handleRefs int32 // atomically adjusted via Handle.retain()/release

	trapExit atomic.Bool

	// pending/invokeDepth/sync callbacks: consumer-only.
	mu sync.Mutex // guards links/monitors only, since link/unlink/monitor/demonitor are called from peer goroutines, not just the owner
	links map[Handle]struct{}
	// monitors counts, per watcher, how many independent Monitor(watcher, c)
	// calls are still outstanding — P5 requires each call to produce its own
	// DOWN, so a second Monitor from the same watcher must not collapse into
	// the first (CAF attaches one observer object per monitor() call;
	// counting per watcher gets the same multiplicity without needing a
	// per-call token).
	monitors map[Handle]int

	pending map[MessageID]*pendingRequest

	invokeDepth int

	syncFailure func(id MessageID, err error)
	breaker breaker

	counter uint64 // next MessageID sequence number this actor will draw

	quantum int

	cleanup []func() error

	strategy dispatchStrategy

	terminatedCh chan struct{}
	terminated sync.Once
	terminateOnce sync.Once
}

func newActorCell(rt *Runtime, quantum int) *actorCell {
	c := &actorCell{
		rt: rt,
		mailbox: NewMailbox(),
		links: make(map[Handle]struct{}),
		monitors: make(map[Handle]int),
		pending: make(map[MessageID]*pendingRequest),
		quantum: quantum,
		terminatedCh: make(chan struct{}),
	}
	c.plannedExit.Store(noReason)
	c.state.Store(int32(StateIdle))
	return c
}

func (c *actorCell) State() State { return State(c.state.Load()) }

// casState performs the single-CAS state transition the design requires.
func (c *actorCell) casState(from, to State) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

func (c *actorCell) setState(to State) { c.state.Store(int32(to)) }

// planExit sets the planned exit reason exactly once; the first caller wins
// and later calls are no-ops.
func (c *actorCell) planExit(reason ExitReason) bool {
	return c.plannedExit.CompareAndSwap(noReason, int64(reason))
}

// plannedReason returns the planned exit reason and whether one has been
// set yet.
func (c *actorCell) plannedReason() (ExitReason, bool) {
	v := c.plannedExit.Load()
	if v == noReason {
		return 0, false
	}
	return ExitReason(v), true
}

func (c *actorCell) nextMessageID(req, highPriority bool) MessageID {
	c.counter++
	if !req {
		return 0
	}
	return newRequestID(c.counter, highPriority)
}

// TrapExit reports the actor's current trap-exit flag.
func (c *actorCell) TrapExit() bool { return c.trapExit.Load() }

// SetTrapExit sets the actor's trap-exit flag.
func (c *actorCell) SetTrapExit(v bool) { c.trapExit.Store(v) }

func (c *actorCell) onTerminated() {
	c.terminated.Do(func() { close(c.terminatedCh) })
}

// ActorContext is the handle a HandlerFunc receives: access to the
// currently dispatched envelope's sender/message, plus the actor-mutating
// operations (Become, Unbecome, Link, Monitor, Quit, ...) that may only be
// invoked by the actor itself while executing a handler.
type ActorContext struct {
	cell *actorCell
	env *Envelope
}

// Self returns this actor's own Handle.
func (ctx *ActorContext) Self() Handle { return ctx.cell.self }

// CurrentSender returns the sender of the envelope currently being
// dispatched (the zero Handle if it was sent with no actor origin).
func (ctx *ActorContext) CurrentSender() Handle { return ctx.env.Sender }

// CurrentMessage returns the payload Tuple of the envelope currently being
// dispatched.
func (ctx *ActorContext) CurrentMessage() *Tuple { return ctx.env.Payload }

// CurrentMessageID returns the correlation id of the envelope currently
// being dispatched.
func (ctx *ActorContext) CurrentMessageID() MessageID { return ctx.env.ID }

// AddCleanup registers fn to run during step (4) of the design's
// termination sequence ("run cleanup attachables"), after EXIT/DOWN delivery
// and before the actor's own handle is released. Cleanup attachables run in
// registration order; any errors they return are aggregated (not swallowed)
// via go.uber.org/multierr and logged at Warn on the owning Runtime's
// logger.
func (ctx *ActorContext) AddCleanup(fn func() error) {
	ctx.cell.cleanup = append(ctx.cell.cleanup, fn)
}
