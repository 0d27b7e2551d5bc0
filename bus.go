package actor

import (
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/ehrlich-b/actorcore/internal/pool"
)

// BusConfig carries the recognized options for CreateBus.
type BusConfig struct {
	MaxEntries        int   // ring capacity
	MaxEntrySize      int   // bytes, <= MaxMessageSize
	MaxSubscribers    int   // <= MaxBusSubscribers
	MaxAgeMs          int64 // 0 = entries never expire by age
	ConsumeAfterReads int   // 0 = never consume early; N = evict the oldest entry once its total reads across all subscribers reach N
}

// busEntry is one slot in a bus's ring buffer.
type busEntry struct {
	sender     ActorId
	tag        Tag
	buf        pool.Handle // handle into Runtime.busPayloads
	payloadLen int
	timestamp  int64 // microseconds, rt.now()
	readCount  int
}

// busSubscriber tracks one subscribing actor's read cursor.
type busSubscriber struct {
	actor       ActorId
	nextReadIdx int // absolute ring position of the next entry to read
	active      bool
	blocked     bool // currently WAITING in a select() naming this bus
}

// Bus is a bounded multi-reader topic: a ring of entries each
// subscriber reads independently via its own cursor, with eviction by
// capacity, by age, and (optionally) once an entry's total read count
// across all subscribers reaches ConsumeAfterReads. That last check runs
// only on a read of the oldest live entry; a newer entry that reaches the
// count stays in the ring until it is the oldest and read again, or is
// evicted by capacity or age.
type Bus struct {
	id   BusId
	cfg  BusConfig
	ring []busEntry
	head int // absolute position of the oldest live entry
	count int

	subs []busSubscriber

	// maxAge mirrors cfg.MaxAgeMs as an Option so busExpireByAge reads a
	// presence check instead of re-deriving "disabled" from a sentinel.
	maxAge fn.Option[int64]
}

// BusMessage is the observable view of a bus entry handed back by Read
// or a SourceBus select match. Data is a copy of the entry's payload, so
// it stays valid after the entry itself is evicted.
type BusMessage struct {
	Sender    ActorId
	Tag       Tag
	Data      []byte
	Timestamp int64
}

// CreateBus allocates a new bus with the given configuration.
func (rt *Runtime) CreateBus(cfg BusConfig) (BusId, Status) {
	if cfg.MaxEntries <= 0 {
		return InvalidBusID, status(INVALID, "create_bus: MaxEntries must be positive")
	}
	if cfg.MaxSubscribers <= 0 || cfg.MaxSubscribers > MaxBusSubscribers {
		return InvalidBusID, status(INVALID, "create_bus: MaxSubscribers out of range")
	}
	if cfg.MaxEntrySize <= 0 || cfg.MaxEntrySize > MaxMessageSize {
		return InvalidBusID, status(INVALID, "create_bus: MaxEntrySize out of range")
	}
	if len(rt.buses) >= rt.maxBuses {
		return InvalidBusID, status(NOMEM, "create_bus: bus table full")
	}
	rt.busIDCounter++
	id := BusId(rt.busIDCounter)
	maxAge := fn.None[int64]()
	if cfg.MaxAgeMs > 0 {
		maxAge = fn.Some(cfg.MaxAgeMs)
	}
	rt.buses[id] = &Bus{
		id:     id,
		cfg:    cfg,
		ring:   make([]busEntry, cfg.MaxEntries),
		subs:   make([]busSubscriber, cfg.MaxSubscribers),
		maxAge: maxAge,
	}
	return id, StatusOK
}

// DestroyBus removes a bus; it is INVALID while subscribers remain.
func (rt *Runtime) DestroyBus(id BusId) Status {
	b, ok := rt.buses[id]
	if !ok {
		return status(INVALID, "destroy_bus: no such bus")
	}
	for _, s := range b.subs {
		if s.active {
			return status(INVALID, "destroy_bus: subscribers remain")
		}
	}
	rt.busFreeAll(b)
	delete(rt.buses, id)
	return StatusOK
}

func (rt *Runtime) busFreeAll(b *Bus) {
	for i := 0; i < b.count; i++ {
		e := &b.ring[(b.head+i)%len(b.ring)]
		if e.buf != 0 {
			rt.busPayloads.Free(e.buf)
			e.buf = 0
		}
	}
}

// Publish appends an entry, expiring stale entries by age first and
// evicting the oldest entry if the ring is full, then wakes every
// subscriber currently blocked on this bus.
func (rt *Runtime) Publish(id BusId, tag Tag, data []byte) Status {
	b, ok := rt.buses[id]
	if !ok {
		return status(INVALID, "publish: no such bus")
	}
	if len(data) > b.cfg.MaxEntrySize {
		return status(INVALID, "publish: entry exceeds MaxEntrySize")
	}

	now := rt.now()
	rt.busExpireByAge(b, now)
	if b.count == len(b.ring) {
		rt.busEvictOldest(b)
	}

	ph, buf, ok := rt.busPayloads.Alloc()
	if !ok {
		return status(NOMEM, "publish: bus payload pool exhausted")
	}
	copy(buf.bytes[:], data)

	idx := (b.head + b.count) % len(b.ring)
	b.ring[idx] = busEntry{
		sender:     rt.currentID(),
		tag:        tag,
		buf:        ph,
		payloadLen: len(data),
		timestamp:  now,
	}
	b.count++

	for i := range b.subs {
		s := &b.subs[i]
		if !s.active || !s.blocked {
			continue
		}
		s.blocked = false
		if a := rt.table.get(s.actor); a != nil && a.state == Waiting {
			a.state = Ready
			rt.scheduler.onReady(a)
		}
	}
	return StatusOK
}

// busExpireByAge drops entries older than MaxAgeMs from the head. A
// clock that has moved backward (only possible under simulated time
// misuse) is treated as zero age rather than underflowing.
func (rt *Runtime) busExpireByAge(b *Bus, now int64) {
	maxAgeMs := b.maxAge.UnwrapOr(0)
	if maxAgeMs <= 0 {
		return
	}
	limit := maxAgeMs * 1000
	for b.count > 0 {
		e := &b.ring[b.head%len(b.ring)]
		age := now - e.timestamp
		if age < 0 || age <= limit {
			break
		}
		rt.busEvictOldest(b)
	}
}

// busEvictOldest frees and drops the head entry, advancing every
// subscriber cursor that had not yet read past it.
func (rt *Runtime) busEvictOldest(b *Bus) {
	if b.count == 0 {
		return
	}
	e := &b.ring[b.head%len(b.ring)]
	if e.buf != 0 {
		rt.busPayloads.Free(e.buf)
		e.buf = 0
	}
	b.head++
	b.count--
	for i := range b.subs {
		if b.subs[i].active && b.subs[i].nextReadIdx < b.head {
			b.subs[i].nextReadIdx = b.head
		}
	}
}

// Subscribe registers the calling actor as a reader of id, starting
// only from entries published after this call returns.
func (rt *Runtime) Subscribe(id BusId) Status {
	self := rt.running
	if self == nil {
		return status(INVALID, "subscribe: no running actor")
	}
	b, ok := rt.buses[id]
	if !ok {
		return status(INVALID, "subscribe: no such bus")
	}
	for _, s := range b.subs {
		if s.active && s.actor == self.id {
			return StatusOK
		}
	}
	slot := -1
	for i, s := range b.subs {
		if !s.active {
			slot = i
			break
		}
	}
	if slot == -1 {
		return status(NOMEM, "subscribe: bus subscriber table full")
	}
	b.subs[slot] = busSubscriber{actor: self.id, nextReadIdx: b.head + b.count, active: true}
	self.subBuses = append(self.subBuses, id)
	return StatusOK
}

// Unsubscribe removes the calling actor from id's subscriber table.
func (rt *Runtime) Unsubscribe(id BusId) Status {
	self := rt.running
	if self == nil {
		return status(INVALID, "unsubscribe: no running actor")
	}
	if !rt.busUnsubscribeActor(id, self.id) {
		return status(INVALID, "unsubscribe: not subscribed")
	}
	for i, bid := range self.subBuses {
		if bid == id {
			self.subBuses = append(self.subBuses[:i], self.subBuses[i+1:]...)
			break
		}
	}
	return StatusOK
}

func (rt *Runtime) busUnsubscribeActor(id BusId, actorID ActorId) bool {
	b, ok := rt.buses[id]
	if !ok {
		return false
	}
	for i := range b.subs {
		if b.subs[i].active && b.subs[i].actor == actorID {
			b.subs[i] = busSubscriber{}
			return true
		}
	}
	return false
}

// busUnsubscribeAll removes actorID from every bus it subscribes to.
func (rt *Runtime) busUnsubscribeAll(actorID ActorId) {
	a := rt.table.get(actorID)
	if a == nil {
		return
	}
	for _, id := range a.subBuses {
		rt.busUnsubscribeActor(id, actorID)
	}
	a.subBuses = nil
}

// Read performs a single non-blocking bus read for the calling actor
//; combine with Select for a blocking wait.
func (rt *Runtime) Read(id BusId) (BusMessage, Status) {
	self := rt.running
	if self == nil {
		return BusMessage{}, status(INVALID, "read: no running actor")
	}
	if msg, ok := rt.busTryRead(id, self.id); ok {
		return msg, StatusOK
	}
	return BusMessage{}, status(WOULDBLOCK, "read: no entry available")
}

func (rt *Runtime) busMarkBlocked(id BusId, actorID ActorId) {
	if b, ok := rt.buses[id]; ok {
		for i := range b.subs {
			if b.subs[i].active && b.subs[i].actor == actorID {
				b.subs[i].blocked = true
				return
			}
		}
	}
}

func (rt *Runtime) busClearBlocked(id BusId, actorID ActorId) {
	if b, ok := rt.buses[id]; ok {
		for i := range b.subs {
			if b.subs[i].active && b.subs[i].actor == actorID {
				b.subs[i].blocked = false
				return
			}
		}
	}
}

// busTryRead advances actorID's cursor on bus id by one entry, if one
// is available, applying the consume-after-N-reads eviction rule once
// the just-read entry sits at the head.
func (rt *Runtime) busTryRead(id BusId, actorID ActorId) (BusMessage, bool) {
	b, ok := rt.buses[id]
	if !ok {
		return BusMessage{}, false
	}
	slot := -1
	for i := range b.subs {
		if b.subs[i].active && b.subs[i].actor == actorID {
			slot = i
			break
		}
	}
	if slot == -1 {
		return BusMessage{}, false
	}
	s := &b.subs[slot]
	if s.nextReadIdx < b.head {
		s.nextReadIdx = b.head
	}
	tail := b.head + b.count
	if s.nextReadIdx >= tail {
		return BusMessage{}, false
	}

	idx := s.nextReadIdx % len(b.ring)
	e := &b.ring[idx]
	e.readCount++
	s.nextReadIdx++

	buf := rt.busPayloads.Get(e.buf)
	data := append([]byte(nil), buf.bytes[:e.payloadLen]...)
	msg := BusMessage{Sender: e.sender, Tag: e.tag, Data: data, Timestamp: e.timestamp}

	if b.cfg.ConsumeAfterReads > 0 && s.nextReadIdx-1 == b.head && e.readCount >= b.cfg.ConsumeAfterReads {
		rt.busEvictOldest(b)
	}
	return msg, true
}
