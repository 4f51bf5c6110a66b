package actor

import (
	"go.uber.org/zap"

	"github.com/markInTheAbyss/go-actor/actor/internal/registry"
)

// DefaultQuantum is the fairness batch size when no
// RuntimeConfig override is supplied: "the exact fairness quantum (batch
// size) is unspecified by the source; it must be documented and tunable"
//, resolved per SPEC_FULL.md §D.
const DefaultQuantum = 32

// RuntimeConfig parameterizes one Runtime. Zero values are replaced by
// defaults in NewRuntime; actor/config builds one of these from
// viper/pflag-sourced configuration (SPEC_FULL.md §A.3).
type RuntimeConfig struct {
	// Quantum is the per-actor fairness batch size.
	Quantum int
	// Workers is the cooperative worker-pool size; 0 selects GOMAXPROCS.
	Workers int
	// RegistryCapacity sizes the type-token decode cache (internal/registry).
	RegistryCapacity int
	// Logger receives the kernel's structured diagnostics. A nil Logger
	// gets zap.NewNop so a Runtime never needs a nil check on its hot
	// path.
	Logger *zap.Logger
	// Clock abstracts time for the timer service; nil selects SystemClock.
	Clock Clock
	// Breaker, if non-nil, is consulted by every TimedRequestWithBreaker
	// call (SPEC_FULL.md §B).
	Breaker *BreakerSet
}

func (c RuntimeConfig) withDefaults() RuntimeConfig {
	if c.Quantum <= 0 {
		c.Quantum = DefaultQuantum
	}
	if c.RegistryCapacity <= 0 {
		c.RegistryCapacity = 4096
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	return c
}

// Runtime is the process-wide resource bundle of "process-wide
// resources with explicit init/teardown at runtime_start/runtime_stop,
// passed as context handles rather than via ambient singletons": a type
// registry, a clock, a timer service, an envelope pool, a cooperative
// scheduler, and a logger. Every Spawn call is a method on a *Runtime
// rather than a free function, so no part of the kernel reaches for a
// package-level global.
type Runtime struct {
	cfg RuntimeConfig
	registry *registry.Registry
	clock Clock
	timers *timerService
	envelopes *envelopePool
	scheduler *scheduler
	logger *zap.Logger
	breaker *BreakerSet
}

// NewRuntime builds and starts a Runtime: its scheduler's worker pool and
// timer-service goroutine are both live on return.
func NewRuntime(cfg RuntimeConfig) *Runtime {
	cfg = cfg.withDefaults()
	rt := &Runtime{
		cfg: cfg,
		registry: registry.New(cfg.RegistryCapacity),
		clock: cfg.Clock,
		envelopes: newEnvelopePool(),
		logger: cfg.Logger,
		breaker: cfg.Breaker,
	}
	rt.timers = newTimerService(rt.clock)
	rt.scheduler = newScheduler(rt, cfg.Workers)
	rt.scheduler.start()
	rt.logger.Info("runtime started",
		zap.Int("quantum", cfg.Quantum),
		zap.Int("workers", rt.scheduler.workers),
	)
	return rt
}

// Stop is runtime_stop: it halts the scheduler's worker pool and the timer
// service's goroutine. It does not terminate any still-live actor; callers
// that need a clean shutdown should Quit every actor they spawned first.
func (rt *Runtime) Stop() {
	rt.scheduler.stopAndWait()
	rt.timers.Stop()
	rt.logger.Info("runtime stopped")
}

// deliverSyncTimeout enqueues the synthetic SYNC_TIMEOUT{id} system
// envelope onto dest's own mailbox; armTimeout (request.go)
// schedules this call through the timer service.
func (rt *Runtime) deliverSyncTimeout(dest Handle, id MessageID) {
	payload := NewTuple(rt.registry, SyncTimeout{RequestID: id})
	enqueue(dest, Handle{}, 0, payload, PriorityHigh)
}

// NewTuple builds a dynamically typed Tuple against rt's own type
// registry — the public entry point application code outside this package
// uses to construct message payloads, since internal/registry.Registry
// itself is not exported.
func (rt *Runtime) NewTuple(values...any) *Tuple {
	return NewTuple(rt.registry, values...)
}

// NewStaticTuple is NewTuple's statically typed counterpart (see Tuple's
// doc comment for the distinction).
func (rt *Runtime) NewStaticTuple(values...any) *Tuple {
	return NewStaticTuple(rt.registry, values...)
}

// NewTuple builds a dynamically typed Tuple against the registry of ctx's
// own Runtime.
func (ctx *ActorContext) NewTuple(values...any) *Tuple {
	return NewTuple(ctx.cell.rt.registry, values...)
}

// NewStaticTuple is ActorContext.NewTuple's statically typed counterpart.
func (ctx *ActorContext) NewStaticTuple(values...any) *Tuple {
	return NewStaticTuple(ctx.cell.rt.registry, values...)
}

// enqueue is the single producer-side path every Send/Request/system
// delivery funnels through: it draws an Envelope from dest's Runtime's
// pool, pushes it onto dest's mailbox at priority, and — for an EventBased
// destination — notifies the scheduler that it may now be runnable. It
// reports whether the push succeeded.
func enqueue(dest Handle, sender Handle, id MessageID, payload *Tuple, priority Priority) bool {
	cell := dest.cell
	if cell == nil {
		return false
	}
	env := cell.rt.envelopes.get()
	env.Sender = sender
	env.ID = id
	env.Payload = payload

	rejected, ok := cell.mailbox.PushBack(env, priority)
	if !ok {
		cell.rt.envelopes.put(rejected)
		return false
	}
	if _, eventBased := cell.strategy.(eventBasedStrategy); eventBased {
		cell.rt.scheduler.markRunnable(cell)
	}
	return true
}
