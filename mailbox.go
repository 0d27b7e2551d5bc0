package actor

import "github.com/ehrlich-b/actorcore/internal/pool"

// payloadBuffer is the fixed-size buffer record pooled for mailbox
// entries, sized to MaxMessageSize. Its bytes hold the wire
// format of : a 4-byte class|tag header followed by the payload.
type payloadBuffer struct {
	bytes [MaxMessageSize]byte
}

// mailboxEntry is one link in an actor's doubly-linked FIFO mailbox.
type mailboxEntry struct {
	sender    ActorId
	buf       pool.Handle // handle into Runtime.payloads; header+payload bytes
	totalLen  int         // header + payload bytes actually used in buf
	payloadLen int        // payload bytes only, i.e. totalLen-MessageHeaderSize

	prev, next pool.Handle // handles into Runtime.entries; 0 = none
}

// mailbox is the FIFO owned by one actor.
type mailbox struct {
	head, tail pool.Handle
	count      int
}

// enqueue appends an entry (already allocated in rt.entries) to the tail
// of the mailbox.
func (mb *mailbox) enqueue(rt *Runtime, h pool.Handle) {
	e := rt.entries.Get(h)
	e.prev = mb.tail
	e.next = 0
	if mb.tail != 0 {
		rt.entries.Get(mb.tail).next = h
	} else {
		mb.head = h
	}
	mb.tail = h
	mb.count++
}

// remove unlinks an entry from the mailbox without freeing it.
func (mb *mailbox) remove(rt *Runtime, h pool.Handle) {
	e := rt.entries.Get(h)
	if e == nil {
		return
	}
	if e.prev != 0 {
		rt.entries.Get(e.prev).next = e.next
	} else {
		mb.head = e.next
	}
	if e.next != 0 {
		rt.entries.Get(e.next).prev = e.prev
	} else {
		mb.tail = e.prev
	}
	mb.count--
}

// freeEntry releases an entry and its payload buffer back to the pools.
func (rt *Runtime) freeEntry(h pool.Handle) {
	if h == 0 {
		return
	}
	if e := rt.entries.Get(h); e != nil && e.buf != 0 {
		rt.payloads.Free(e.buf)
	}
	rt.entries.Free(h)
}

// clear frees every entry currently in the mailbox.
func (mb *mailbox) clear(rt *Runtime) {
	h := mb.head
	for h != 0 {
		next := rt.entries.Get(h).next
		rt.freeEntry(h)
		h = next
	}
	mb.head, mb.tail, mb.count = 0, 0, 0
}

// decodedHeader reads class/tag out of an entry's wire header. Entries
// with fewer than MessageHeaderSize bytes never match any filter;
// the runtime never constructs such an entry itself, but a defensive
// check is kept here since decodedHeader is also what findMatch trusts.
func (rt *Runtime) decodedHeader(e *mailboxEntry) (MsgClass, Tag, bool) {
	if e.totalLen < MessageHeaderSize {
		return 0, 0, false
	}
	buf := rt.payloads.Get(e.buf)
	class, tag := readHeader(buf.bytes[:MessageHeaderSize])
	return class, tag, true
}

// findMatch scans from the head for the first entry matching f, returning
// its handle or 0 (first match wins, ).
func (mb *mailbox) findMatch(rt *Runtime, f Filter) pool.Handle {
	h := mb.head
	for h != 0 {
		e := rt.entries.Get(h)
		if class, tag, ok := rt.decodedHeader(e); ok && f.matches(e.sender, class, tag) {
			return h
		}
		h = e.next
	}
	return 0
}

// toMessage materializes a Message view borrowing into the entry's
// payload buffer.
func (rt *Runtime) toMessage(h pool.Handle) Message {
	e := rt.entries.Get(h)
	class, tag, _ := rt.decodedHeader(e)
	buf := rt.payloads.Get(e.buf)
	data := buf.bytes[MessageHeaderSize : MessageHeaderSize+e.payloadLen]
	return Message{Sender: e.sender, Class: class, Tag: tag, Data: data, Len: e.payloadLen}
}
