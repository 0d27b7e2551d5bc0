package actor

// Request sends a CLASS_REQUEST message to to and blocks for a matching
// CLASS_REPLY. A monitor guards against to dying before it
// replies: the wait also matches to's EXIT, which is reported as
// CLOSED instead of ever blocking forever on a peer that died
// mid-call.
func (rt *Runtime) Request(to ActorId, data []byte, timeoutMs int64) (Message, Status) {
	ref, st := rt.Monitor(to)
	if !st.Ok() {
		return Message{}, st
	}
	defer rt.Unmonitor(ref)

	tag := rt.nextRuntimeTag()
	if st := rt.send(to, rt.currentID(), ClassRequest, tag, data); !st.Ok() {
		return Message{}, st
	}

	res, st := rt.Select([]Source{
		{Kind: SourceIPC, Filter: Filter{Sender: to, Class: ClassReply, Tag: tag}},
		{Kind: SourceIPC, Filter: Filter{Sender: to, Class: ClassExit, Tag: TagWildcard}},
	}, timeoutMs)
	if !st.Ok() {
		return Message{}, st
	}
	if res.Index == 1 {
		return Message{}, status(CLOSED, "request: target exited before replying")
	}
	return res.IPC, StatusOK
}

// Reply answers a request previously received via Recv/Select, preserving
// its tag so the caller's Request correlates it. req must be a
// CLASS_REQUEST message.
func (rt *Runtime) Reply(req Message, data []byte) Status {
	if req.Class != ClassRequest {
		return status(INVALID, "reply: message is not a request")
	}
	return rt.send(req.Sender, rt.currentID(), ClassReply, req.Tag, data)
}

// nextRuntimeTag hands out a fresh tag with TagRuntimeBit set, so
// request/reply correlation ids never collide with user-chosen tags.
func (rt *Runtime) nextRuntimeTag() Tag {
	rt.tagCounter++
	return Tag((rt.tagCounter & (TagMask &^ TagRuntimeBit)) | TagRuntimeBit)
}
