//go:build !linux

// Package reactor provides a software tick+pending-flag substitute for
// the epoll/timerfd reactor on non-Linux hosts — the same role 
// assigns to "a software tick+pending flag on the embedded target", kept
// here so actorcore builds (without real wall-clock timer delivery) on
// development machines that aren't Linux. Production wall-clock timing
// targets the Linux reactor in reactor.go.
package reactor

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("reactor: epoll/timerfd backend requires linux")

type Kind int

const (
	Timer Kind = iota
	Network
	Wakeup
)

type Event struct {
	UserData uint64
	Kind     Kind
}

type Reactor struct {
	pending chan Event
}

func New() (*Reactor, error) {
	return &Reactor{pending: make(chan Event, 256)}, nil
}

func (r *Reactor) Register(fd int, kind Kind, userData uint64) error { return errUnsupported }
func (r *Reactor) Unregister(fd int) error                           { return errUnsupported }

func (r *Reactor) Wait(timeout time.Duration) ([]Event, error) {
	select {
	case ev := <-r.pending:
		out := []Event{ev}
		for {
			select {
			case more := <-r.pending:
				out = append(out, more)
				continue
			default:
			}
			break
		}
		return out, nil
	case <-time.After(timeout):
		return nil, nil
	}
}

func (r *Reactor) Notify() error {
	select {
	case r.pending <- Event{Kind: Wakeup}:
	default:
	}
	return nil
}

func (r *Reactor) Close() error { return nil }

func NewTimerFD(initial, interval time.Duration) (int, error) { return -1, errUnsupported }
func DrainTimerFD(fd int)                                     {}
func CloseFD(fd int) error                                    { return errUnsupported }
