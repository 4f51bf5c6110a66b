// Package actor implements a single-process actor-model runtime: typed
// message tuples routed through pattern-matching behaviors, a two-priority
// mailbox per actor, request/response correlation with timeouts, a
// cooperative (and, for thread-based actors, blocking) scheduler, and a
// link/monitor/exit graph for supervision.
package actor
