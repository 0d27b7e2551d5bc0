package actor

import "github.com/ehrlich-b/actorcore/internal/pool"

// send is the internal primitive behind every public send variant.
// It validates length, allocates an entry (and payload buffer) from the
// pools, packs the wire header, appends to the recipient's mailbox, and
// wakes the recipient if it was WAITING on a source this entry satisfies.
func (rt *Runtime) send(to ActorId, sender ActorId, class MsgClass, tag Tag, data []byte) Status {
	if len(data) > MaxMessageSize-MessageHeaderSize {
		return status(INVALID, "send: payload exceeds MaxMessageSize")
	}
	recipient := rt.table.get(to)
	if recipient == nil || recipient.state == Dead {
		return status(INVALID, "send: recipient not alive")
	}

	h, entry, ok := rt.entries.Alloc()
	if !ok {
		return status(NOMEM, "send: mailbox entry pool exhausted")
	}
	ph, buf, ok := rt.payloads.Alloc()
	if !ok {
		rt.entries.Free(h)
		return status(NOMEM, "send: payload pool exhausted")
	}

	writeHeader(buf.bytes[:MessageHeaderSize], class, tag)
	copy(buf.bytes[MessageHeaderSize:], data)

	entry.sender = sender
	entry.buf = ph
	entry.totalLen = MessageHeaderSize + len(data)
	entry.payloadLen = len(data)

	recipient.mb.enqueue(rt, h)

	if recipient.state == Waiting {
		if rt.wakesFor(recipient, sender, class, tag.masked()) {
			recipient.state = Ready
			rt.scheduler.onReady(recipient)
		}
	}
	return StatusOK
}

// wakesFor implements the mailbox wake decision: consult recorded select
// IPC sources first (waking on a match or on any TIMER-class message,
// since timeouts ride this channel), falling back to an any-message wake
// when nothing was recorded (the plain-recv case, unified here through
// the same select-source mechanism since recv is just select with a
// single IPC source).
func (rt *Runtime) wakesFor(a *Actor, sender ActorId, class MsgClass, tag Tag) bool {
	if class == ClassTimer {
		return true
	}
	if len(a.waitSrcs) == 0 {
		return true
	}
	for _, src := range a.waitSrcs {
		if src.Kind == SourceIPC && src.Filter.matches(sender, class, tag) {
			return true
		}
	}
	return false
}

// Notify sends a NOTIFY-class message from the calling actor.
func (rt *Runtime) Notify(to ActorId, tag Tag, data []byte) Status {
	return rt.send(to, rt.currentID(), ClassNotify, tag, data)
}

// currentID returns the id of the currently running actor, or
// InvalidActorID if called outside any actor's execution (e.g. host code
// injecting a message on the runtime's behalf).
func (rt *Runtime) currentID() ActorId {
	if rt.running == nil {
		return InvalidActorID
	}
	return rt.running.id
}

// Recv is recv(msg, timeout) ≡ select({IPC: (ANY,ANY,ANY)}, timeout).
func (rt *Runtime) Recv(timeoutMs int64) (Message, Status) {
	res, st := rt.Select([]Source{{Kind: SourceIPC, Filter: AnyFilter()}}, timeoutMs)
	if !st.Ok() {
		return Message{}, st
	}
	return res.IPC, StatusOK
}

// RecvMatch waits for a single filtered message; any of sender/class/tag
// may be the respective wildcard.
func (rt *Runtime) RecvMatch(sender ActorId, class MsgClass, tag Tag, timeoutMs int64) (Message, Status) {
	f := Filter{Sender: sender, Class: class, Tag: tag}
	res, st := rt.Select([]Source{{Kind: SourceIPC, Filter: f}}, timeoutMs)
	if !st.Ok() {
		return Message{}, st
	}
	return res.IPC, StatusOK
}

// RecvMatches performs a selective receive over up to MaxSelectSources
// filters, returning the index of the filter that matched.
func (rt *Runtime) RecvMatches(filters []Filter, timeoutMs int64) (Message, int, Status) {
	if len(filters) > MaxSelectSources {
		return Message{}, -1, status(INVALID, "recv_matches: too many filters")
	}
	srcs := make([]Source, len(filters))
	for i, f := range filters {
		srcs[i] = Source{Kind: SourceIPC, Filter: f}
	}
	res, st := rt.Select(srcs, timeoutMs)
	if !st.Ok() {
		return Message{}, -1, st
	}
	return res.IPC, res.Index, StatusOK
}

// releaseActive frees the calling actor's current active message, if any.
func (rt *Runtime) releaseActive(a *Actor) {
	if a.active != 0 {
		rt.freeEntry(a.active)
		a.active = 0
	}
}

// consumeIntoActive removes h from the mailbox, releases the previous
// active message, and stores h as the new active message.
func (rt *Runtime) consumeIntoActive(a *Actor, h pool.Handle) Message {
	a.mb.remove(rt, h)
	rt.releaseActive(a)
	a.active = h
	return rt.toMessage(h)
}
