package actor

// SourceKind distinguishes the two waitable source types a select() call
// can mix.
type SourceKind int

const (
	SourceIPC SourceKind = iota
	SourceBus
)

// Source is one waitable entry in a select() call: an IPC filter or a
// bus to read from.
type Source struct {
	Kind   SourceKind
	Filter Filter // meaningful when Kind == SourceIPC
	Bus    BusId  // meaningful when Kind == SourceBus
}

// SelectResult reports which source matched and carries its payload.
type SelectResult struct {
	Index int
	IPC   Message
	Bus   BusMessage
}

// Select waits for the first source among sources to become ready,
// scanning bus sources before IPC sources on every pass (a fixed
// priority, not configurable): bus reads are non-destructive and cheap
// to check, so giving them first refusal costs nothing and keeps a
// fast-moving topic from starving behind a backed-up mailbox. Within a
// pass, sources are checked in the order given and the first match
// wins.
//
// timeoutMs == 0 never blocks (returns WOULDBLOCK if nothing is ready
// now); timeoutMs < 0 blocks indefinitely; timeoutMs > 0 blocks up to
// that many milliseconds before returning TIMEOUT.
func (rt *Runtime) Select(sources []Source, timeoutMs int64) (SelectResult, Status) {
	if len(sources) == 0 || len(sources) > MaxSelectSources {
		return SelectResult{}, status(INVALID, "select: invalid source count")
	}
	self := rt.running
	if self == nil {
		return SelectResult{}, status(INVALID, "select: no running actor")
	}

	if res, ok := rt.scanSources(self, sources); ok {
		return res, StatusOK
	}
	if timeoutMs == 0 {
		return SelectResult{}, status(WOULDBLOCK, "select: no source ready")
	}

	haveTimeout := timeoutMs > 0
	var timeoutTag Tag
	var timeoutTimer TimerId
	if haveTimeout {
		timeoutTag = rt.nextRuntimeTag()
		timeoutTimer = rt.armTimeout(timeoutMs*1000, timeoutTag)
	}
	finish := func(res SelectResult, st Status) (SelectResult, Status) {
		if haveTimeout {
			rt.cancelTimer(timeoutTimer)
			// Drop a timeout message that raced in before cancellation,
			// so it never surfaces as a spurious TIMER to a later
			// ANY-class recv.
			if h := self.mb.findMatch(rt, Filter{Sender: WildcardActorID, Class: ClassTimer, Tag: timeoutTag}); h != 0 {
				self.mb.remove(rt, h)
				rt.freeEntry(h)
			}
		}
		for _, src := range sources {
			if src.Kind == SourceBus {
				rt.busClearBlocked(src.Bus, self.id)
			}
		}
		return res, st
	}

	for {
		self.waitSrcs = sources
		for _, src := range sources {
			if src.Kind == SourceBus {
				rt.busMarkBlocked(src.Bus, self.id)
			}
		}
		rt.blockAndYield()
		self.waitSrcs = nil

		if res, ok := rt.scanSources(self, sources); ok {
			return finish(res, StatusOK)
		}
		if haveTimeout {
			if h := self.mb.findMatch(rt, Filter{Sender: WildcardActorID, Class: ClassTimer, Tag: timeoutTag}); h != 0 {
				self.mb.remove(rt, h)
				rt.freeEntry(h)
				return finish(SelectResult{}, status(TIMEOUT, "select: timed out"))
			}
		}
		// Neither a real source nor our own timeout matched: a
		// spurious wakeup (another message arrived that doesn't
		// satisfy any source here). Loop and wait again.
	}
}

// scanSources performs one non-blocking pass over sources: every bus
// source in order, then every IPC source in order.
func (rt *Runtime) scanSources(self *Actor, sources []Source) (SelectResult, bool) {
	for i, src := range sources {
		if src.Kind != SourceBus {
			continue
		}
		if msg, ok := rt.busTryRead(src.Bus, self.id); ok {
			return SelectResult{Index: i, Bus: msg}, true
		}
	}
	for i, src := range sources {
		if src.Kind != SourceIPC {
			continue
		}
		if h := self.mb.findMatch(rt, src.Filter); h != 0 {
			return SelectResult{Index: i, IPC: rt.consumeIntoActive(self, h)}, true
		}
	}
	return SelectResult{}, false
}
