package actor

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Link atomically adds each party to the other's link set. If
// either party has already terminated, the other immediately receives an
// EXIT envelope carrying that party's exit reason. That EXIT is delivered
// as an envelope whether or not the receiver traps exits; it never cascades
// termination the way a live link's abnormal exit does.
func Link(a, b Handle) {
	if a.IsZero() || b.IsZero() || a == b {
		return
	}
	aDead, aReason := addLink(a.cell, b)
	bDead, bReason := addLink(b.cell, a)
	if bDead {
		deliverExit(a, b, bReason)
	}
	if aDead {
		deliverExit(b, a, aReason)
	}
}

// addLink records peer in cell.links, reporting whether cell was already
// terminated at the moment of insertion (and, if so, with what reason) so
// the caller can synthesize the EXIT a live link would otherwise have
// delivered later.
func addLink(cell *actorCell, peer Handle) (alreadyDead bool, reason ExitReason) {
	cell.mu.Lock()
	// terminate nils out links/monitors once it has taken its snapshot;
	// a Link racing in after that must not resurrect the map.
	if cell.links != nil {
		cell.links[peer] = struct{}{}
	}
	cell.mu.Unlock()
	if cell.State() == StateTerminated {
		r, _ := cell.plannedReason()
		return true, r
	}
	return false, 0
}

// Unlink is the inverse of Link: atomic on both sides.
func Unlink(a, b Handle) {
	if a.IsZero() || b.IsZero() {
		return
	}
	unlinkOneSide(a.cell, b)
	unlinkOneSide(b.cell, a)
}

func unlinkOneSide(cell *actorCell, peer Handle) {
	if cell == nil {
		return
	}
	cell.mu.Lock()
	delete(cell.links, peer)
	cell.mu.Unlock()
}

// Monitor records a monitor: watcher receives exactly one DOWN when watched
// terminates. A second Monitor(watcher, watched) call from the same watcher
// is not a no-op — it arms its own independent registration, so watched's
// termination delivers one DOWN per call made, not one per distinct watcher
// (spec P5). If watched has already terminated, the DOWN for this call is
// delivered immediately.
func Monitor(watcher, watched Handle) {
	if watcher.IsZero() || watched.IsZero() {
		return
	}
	cell := watched.cell
	cell.mu.Lock()
	if cell.monitors != nil {
		cell.monitors[watcher]++
	}
	cell.mu.Unlock()
	if cell.State() == StateTerminated {
		cell.mu.Lock()
		if n := cell.monitors[watcher]; n <= 1 {
			delete(cell.monitors, watcher)
		} else {
			cell.monitors[watcher] = n - 1
		}
		cell.mu.Unlock()
		reason, _ := cell.plannedReason()
		deliverDown(watcher, watched, reason)
	}
}

// Demonitor removes one previously installed monitor registration for
// watcher; if Monitor(watcher, watched) was called more than once, a single
// Demonitor only cancels one of those calls, mirroring CAF's per-attachable
// demonitor. A DOWN already in flight is unaffected.
func Demonitor(watcher, watched Handle) {
	if watcher.IsZero() || watched.IsZero() {
		return
	}
	cell := watched.cell
	cell.mu.Lock()
	if n, ok := cell.monitors[watcher]; ok {
		if n <= 1 {
			delete(cell.monitors, watcher)
		} else {
			cell.monitors[watcher] = n - 1
		}
	}
	cell.mu.Unlock()
}

func deliverExit(to, from Handle, reason ExitReason) {
	if to.cell == nil {
		return
	}
	payload := NewTuple(to.cell.rt.registry, EXIT{From: from, Reason: reason})
	enqueue(to, from, 0, payload, PriorityHigh)
}

func deliverDown(to, from Handle, reason ExitReason) {
	if to.cell == nil {
		return
	}
	payload := NewTuple(to.cell.rt.registry, DOWN{From: from, Reason: reason})
	enqueue(to, from, 0, payload, PriorityHigh)
}

// terminate runs the the design termination sequence exactly once per actor,
// regardless of how many goroutines observe the planned exit concurrently:
// (1) mark the mailbox terminal, (2) deliver EXIT to trapping links or
// cascade termination to non-trapping ones, (3) deliver DOWN to monitors,
// (4) run cleanup attachables, (5) release the actor's own self-reference.
func (rt *Runtime) terminate(c *actorCell, reason ExitReason) {
	c.terminateOnce.Do(func() {
		c.setState(StateTerminated)
		c.mailbox.MarkConsumerDone()

		c.mu.Lock()
		links := make([]Handle, 0, len(c.links))
		for peer := range c.links {
			links = append(links, peer)
		}
		monitors := make([]Handle, 0, len(c.monitors))
		for watcher, n := range c.monitors {
			for i := 0; i < n; i++ {
				monitors = append(monitors, watcher)
			}
		}
		c.links = nil
		c.monitors = nil
		c.mu.Unlock()

		for _, peer := range links {
			unlinkOneSide(peer.cell, c.self)
			if peer.cell == nil {
				continue
			}
			if peer.cell.TrapExit() {
				deliverExit(peer, c.self, reason)
			} else if reason != ExitNormal {
				if peer.cell.planExit(reason) {
					rt.terminate(peer.cell, reason)
				}
			}
		}
		for _, watcher := range monitors {
			deliverDown(watcher, c.self, reason)
		}
		var cleanupErr error
		for _, fn := range c.cleanup {
			cleanupErr = multierr.Append(cleanupErr, fn())
		}
		if cleanupErr != nil {
			rt.logger.Warn("actor cleanup attachable failed",
				zap.String("actor_id", c.self.ID().String()),
				zap.Uint32("reason", uint32(reason)),
				zap.Error(cleanupErr),
			)
		}
		c.self.release()
		c.onTerminated()
	})
}
