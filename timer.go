package actor

// timerRecord is the pooled bookkeeping for one armed timer, shared by
// both clock backends.
type timerRecord struct {
	owner      ActorId
	tag        Tag
	periodic   bool
	intervalUs int64
	deadlineUs int64 // simulated backend only, virtual μs; unused (0) under the wall-clock backend
	fd         int   // wallclock backend only; -1 when unused
	active     bool
}

// timerBackend is implemented by the wall-clock reactor-driven timer
// service and by the simulated-time service.
type timerBackend interface {
	now() int64
	arm(owner ActorId, tag Tag, deltaUs int64, periodic bool) (TimerId, Status)
	cancel(id TimerId) Status
	close()
}

// clampDelta enforces the "a zero-or-negative request still fires on
// the next tick, never immediately inline and never disarmed" rule
// common to both backends.
func clampDelta(deltaUs int64) int64 {
	if deltaUs <= 0 {
		return 1
	}
	return deltaUs
}

// now returns the runtime's current clock reading in microseconds, from
// whichever timer backend is configured.
func (rt *Runtime) now() int64 {
	return rt.timers.now()
}

// After arms a one-shot timer that delivers a CLASS_TIMER message to the
// calling actor after deltaUs microseconds.
func (rt *Runtime) After(deltaUs int64, tag Tag) (TimerId, Status) {
	return rt.timers.arm(rt.currentID(), tag, deltaUs, false)
}

// Every arms a periodic timer that re-delivers every deltaUs
// microseconds until Cancel.
func (rt *Runtime) Every(deltaUs int64, tag Tag) (TimerId, Status) {
	return rt.timers.arm(rt.currentID(), tag, deltaUs, true)
}

// Cancel disarms a timer previously returned by After/Every.
func (rt *Runtime) Cancel(id TimerId) Status {
	return rt.timers.cancel(id)
}

// Sleep blocks the calling actor for deltaUs microseconds. It is
// sugar over After + a select that only a TIMER ever satisfies.
func (rt *Runtime) Sleep(deltaUs int64) Status {
	if _, st := rt.After(deltaUs, TagWildcard); !st.Ok() {
		return st
	}
	self := rt.running
	f := Filter{Sender: WildcardActorID, Class: ClassTimer, Tag: TagWildcard}
	for {
		if h := self.mb.findMatch(rt, f); h != 0 {
			self.mb.remove(rt, h)
			rt.freeEntry(h)
			return StatusOK
		}
		self.waitSrcs = []Source{{Kind: SourceIPC, Filter: f}}
		rt.blockAndYield()
		self.waitSrcs = nil
	}
}

// armTimeout is the internal primitive Select uses for its own timeout
// source: a one-shot runtime-tagged timer the caller is expected to
// cancel once it stops waiting.
func (rt *Runtime) armTimeout(deltaUs int64, tag Tag) TimerId {
	id, _ := rt.timers.arm(rt.currentID(), tag, deltaUs, false)
	return id
}

func (rt *Runtime) cancelTimer(id TimerId) {
	rt.timers.cancel(id)
}

// fireTimer delivers one CLASS_TIMER message for a due timer. The
// backend that owns rec's lifecycle decides whether to re-arm
// (periodic) or retire (one-shot) it after this returns.
func (rt *Runtime) fireTimer(id TimerId, rec *timerRecord) {
	owner := rt.table.get(rec.owner)
	if owner != nil && owner.state != Dead {
		rt.send(owner.id, owner.id, ClassTimer, rec.tag, nil)
	}
}
