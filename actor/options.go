package actor

import "go.uber.org/zap"

// Option configures a RuntimeConfig, mirroring the functional-options idiom
// the source's own mailbox package uses for NewMailbox/NewMailboxes (each
// Option there closes over an *options and mutates one field of it; these
// do the same over *RuntimeConfig).
type Option func(*RuntimeConfig)

// WithQuantum overrides the per-actor fairness batch size.
func WithQuantum(n int) Option {
	return func(c *RuntimeConfig) { c.Quantum = n }
}

// WithWorkers overrides the cooperative worker-pool size (GOMAXPROCS if
// never set or non-positive).
func WithWorkers(n int) Option {
	return func(c *RuntimeConfig) { c.Workers = n }
}

// WithRegistryCapacity sizes the type-token decode cache.
func WithRegistryCapacity(n int) Option {
	return func(c *RuntimeConfig) { c.RegistryCapacity = n }
}

// WithLogger installs a structured logger for the kernel's own diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *RuntimeConfig) { c.Logger = l }
}

// WithClock overrides the time source driving the timer service — tests
// substitute a fake Clock to drive timeouts deterministically without
// sleeping.
func WithClock(cl Clock) Option {
	return func(c *RuntimeConfig) { c.Clock = cl }
}

// WithBreaker attaches a BreakerSet that TimedRequestWithBreaker consults
// (SPEC_FULL.md §B); omit it and TimedRequestWithBreaker behaves exactly
// like TimedRequest.
func WithBreaker(b *BreakerSet) Option {
	return func(c *RuntimeConfig) { c.Breaker = b }
}

// New builds and starts a Runtime from functional options, the idiomatic
// entry point for application code (NewRuntime(RuntimeConfig{...}) remains
// available for callers that already have a fully-populated config, e.g.
// actor/config's viper-sourced one).
func New(opts...Option) *Runtime {
	var cfg RuntimeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewRuntime(cfg)
}
