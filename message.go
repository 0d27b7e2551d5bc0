package actor

import "encoding/binary"

// Message is the observable view of a mailbox entry handed to user code on
// a successful receive/select. Its Data slice borrows into the entry's
// payload buffer; the borrow is valid until the actor's next
// receive/select call or until the actor exits.
type Message struct {
	Sender ActorId
	Class  MsgClass
	Tag    Tag
	Data   []byte
	Len    int // payload bytes only, mirrors len(Data)
}

// writeHeader packs class<<28|tag into the 4-byte wire header preceding
// every mailbox entry's payload and writes it to buf[0:4].
func writeHeader(buf []byte, class MsgClass, tag Tag) {
	binary.LittleEndian.PutUint32(buf, uint32(class)<<28|uint32(tag.masked()))
}

// readHeader unpacks the 4-byte wire header at buf[0:4].
func readHeader(buf []byte) (MsgClass, Tag) {
	h := binary.LittleEndian.Uint32(buf)
	return MsgClass(h >> 28), Tag(h & TagMask)
}

// Filter is an IPC selective-receive filter: each field may be the
// respective wildcard.
type Filter struct {
	Sender ActorId
	Class  MsgClass
	Tag    Tag
}

// AnyFilter matches any sender, class, and tag — the filter underlying
// plain Recv}, timeout)).
func AnyFilter() Filter {
	return Filter{Sender: WildcardActorID, Class: ClassAny, Tag: TagWildcard}
}

// matches reports whether the filter matches a decoded entry.
func (f Filter) matches(sender ActorId, class MsgClass, tag Tag) bool {
	if f.Sender != WildcardActorID && f.Sender != sender {
		return false
	}
	if f.Class != ClassAny && f.Class != class {
		return false
	}
	if f.Tag != TagWildcard && f.Tag.masked() != tag.masked() {
		return false
	}
	return true
}
