package actor

import "github.com/ehrlich-b/actorcore/internal/pool"

// linkRecord is one half of a bidirectional link: the owning actor holds
// a handle to this record naming its peer.
type linkRecord struct {
	peer ActorId
}

// monitorRecord is a one-way watch: the owning actor holds a handle to
// this record naming the actor it watches. The returned pool.Handle
// itself serves as the caller-visible monitor reference.
type monitorRecord struct {
	target ActorId
}

// ExitInfo is the payload of a CLASS_EXIT notification.
type ExitInfo struct {
	Actor  ActorId
	Reason ExitReason
}

func encodeExitInfo(info ExitInfo) []byte {
	b := make([]byte, 5)
	b[0] = byte(info.Actor)
	b[1] = byte(info.Actor >> 8)
	b[2] = byte(info.Actor >> 16)
	b[3] = byte(info.Actor >> 24)
	b[4] = byte(info.Reason)
	return b
}

// DecodeExitInfo unpacks a CLASS_EXIT message payload.
func DecodeExitInfo(data []byte) ExitInfo {
	if len(data) < 5 {
		return ExitInfo{}
	}
	id := ActorId(data[0]) | ActorId(data[1])<<8 | ActorId(data[2])<<16 | ActorId(data[3])<<24
	return ExitInfo{Actor: id, Reason: ExitReason(data[4])}
}

// postExit delivers a CLASS_EXIT notification from dying to a surviving
// peer. Delivery uses send's ordinary mailbox path, so an EXIT is just
// another message a select/recv call can observe.
func (rt *Runtime) postExit(to, dyingID ActorId, reason ExitReason) {
	rt.send(to, dyingID, ClassExit, TagWildcard, encodeExitInfo(ExitInfo{Actor: dyingID, Reason: reason}))
}

// Link establishes a bidirectional link between the calling actor and
// target. Re-linking an already-linked peer is a no-op.
func (rt *Runtime) Link(target ActorId) Status {
	self := rt.running
	if self == nil {
		return status(INVALID, "link: no running actor")
	}
	if target == self.id {
		return status(INVALID, "link: cannot link self")
	}
	t := rt.table.get(target)
	if t == nil || t.state == Dead {
		return status(INVALID, "link: target not alive")
	}
	for _, h := range self.links {
		if rt.links.Get(h).peer == target {
			return StatusOK
		}
	}
	h1, r1, ok := rt.links.Alloc()
	if !ok {
		return status(NOMEM, "link: link pool exhausted")
	}
	h2, r2, ok := rt.links.Alloc()
	if !ok {
		rt.links.Free(h1)
		return status(NOMEM, "link: link pool exhausted")
	}
	r1.peer = target
	r2.peer = self.id
	self.links = append(self.links, h1)
	t.links = append(t.links, h2)
	return StatusOK
}

// Unlink removes any link between the calling actor and target.
func (rt *Runtime) Unlink(target ActorId) Status {
	self := rt.running
	if self == nil {
		return status(INVALID, "unlink: no running actor")
	}
	removeLinkTo(rt, self, target)
	if t := rt.table.get(target); t != nil {
		removeLinkTo(rt, t, self.id)
	}
	return StatusOK
}

// removeLinkTo frees and drops a's link record naming peer, if any.
func removeLinkTo(rt *Runtime, a *Actor, peer ActorId) {
	for i, h := range a.links {
		if rt.links.Get(h).peer == peer {
			rt.links.Free(h)
			a.links = append(a.links[:i], a.links[i+1:]...)
			return
		}
	}
}

// Monitor installs a one-way watch on target: if target dies, the
// calling actor receives a CLASS_EXIT message. The returned
// handle cancels the watch via Unmonitor.
func (rt *Runtime) Monitor(target ActorId) (pool.Handle, Status) {
	self := rt.running
	if self == nil {
		return 0, status(INVALID, "monitor: no running actor")
	}
	t := rt.table.get(target)
	if t == nil || t.state == Dead {
		return 0, status(INVALID, "monitor: target not alive")
	}
	h, rec, ok := rt.monitors.Alloc()
	if !ok {
		return 0, status(NOMEM, "monitor: monitor pool exhausted")
	}
	rec.target = target
	self.monitors = append(self.monitors, h)
	return h, StatusOK
}

// Unmonitor cancels a watch established by Monitor, e.g. once a Request
// has received its reply and no longer needs the EXIT race-guard.
func (rt *Runtime) Unmonitor(ref pool.Handle) Status {
	self := rt.running
	if self == nil {
		return status(INVALID, "unmonitor: no running actor")
	}
	for i, h := range self.monitors {
		if h == ref {
			rt.monitors.Free(h)
			self.monitors = append(self.monitors[:i], self.monitors[i+1:]...)
			return StatusOK
		}
	}
	return status(INVALID, "unmonitor: ref not found")
}

// cleanupDeath runs the full resource-teardown procedure for an
// actor that has just transitioned to DEAD, whatever the cause (Exit,
// Kill, crash, or crash-stack). It is synchronous and runs entirely in
// the caller's goroutine: the dying actor's own goroutine has either
// already handed control back via runEntry's deferred recover, or (for
// Kill) never gets to run again, so no concurrent access to dying's
// state is possible.
func (rt *Runtime) cleanupDeath(dying *Actor) {
	// 1. Notify linked peers and drop the reciprocal records.
	for _, h := range dying.links {
		rec := rt.links.Get(h)
		if rec == nil {
			continue
		}
		peer := rt.table.get(rec.peer)
		if peer != nil && peer.state != Dead {
			rt.postExit(peer.id, dying.id, dying.exitReason)
			removeLinkTo(rt, peer, dying.id)
		}
		rt.links.Free(h)
	}
	dying.links = nil

	// 2. Scan every live actor's monitor records for a watch on dying.
	for _, a := range rt.table.all() {
		if a == dying {
			continue
		}
		kept := a.monitors[:0]
		for _, h := range a.monitors {
			rec := rt.monitors.Get(h)
			if rec != nil && rec.target == dying.id {
				rt.postExit(a.id, dying.id, dying.exitReason)
				rt.monitors.Free(h)
				continue
			}
			kept = append(kept, h)
		}
		a.monitors = kept
	}

	// 3. Free monitors dying itself owned.
	for _, h := range dying.monitors {
		rt.monitors.Free(h)
	}
	dying.monitors = nil

	// 4. Drop every registry entry dying owned.
	rt.registry.RemoveOwnedBy(dying.id)

	// 5. Unsubscribe from every bus.
	rt.busUnsubscribeAll(dying.id)

	// 6. Release the active message and the mailbox.
	rt.releaseActive(dying)
	dying.mb.clear(rt)

	// 7. Free the stack region and the actor-table slot.
	rt.arena.Free(dying.region)
	rt.table.release(dying.id)

	rt.log.WithActor(uint32(dying.id)).Info("died", "reason", dying.exitReason.String())
}
