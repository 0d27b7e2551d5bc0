// Package actor implements a small, embeddable actor runtime: lightweight
// cooperatively-scheduled actors, each with its own logical stack, talking
// through private mailboxes and shared multi-reader topic buses,
// coordinated by timers and a readiness reactor.
//
// The runtime is single-threaded by construction: the Scheduler hands a
// baton to exactly one actor goroutine at a time over an unbuffered
// channel pair, so every data structure below the Scheduler (pools,
// mailboxes, the bus ring, the name registry, the link/monitor graph) is
// free of locks — only one goroutine is ever live at any instant.
package actor
