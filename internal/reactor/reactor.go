//go:build linux

// Package reactor implements the single process-wide readiness
// multiplexer the scheduler polls between actor runs: one
// epoll instance, timerfd-backed timer sources, and an eventfd used for
// the WAKEUP source subsystems can use to interrupt a blocked poll from
// outside the scheduler goroutine.
package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Kind tags a registered source: TIMER, NETWORK, or WAKEUP.
type Kind int

const (
	Timer Kind = iota
	Network
	Wakeup
)

// Event reports one readiness notification from Wait.
type Event struct {
	UserData uint64
	Kind     Kind
}

// Reactor is the epoll-backed readiness multiplexer.
type Reactor struct {
	epfd     int
	wakeupFD int
	kinds    map[int]Kind
	userData map[int]uint64
}

// New creates the process-wide reactor, including its WAKEUP eventfd.
func New() (*Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("reactor: epoll_create1: %w", err)
	}
	wakeupFD, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("reactor: eventfd: %w", err)
	}
	r := &Reactor{
		epfd:     epfd,
		wakeupFD: wakeupFD,
		kinds:    make(map[int]Kind),
		userData: make(map[int]uint64),
	}
	if err := r.Register(wakeupFD, Wakeup, 0); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Register adds fd to the epoll set tagged with kind/userData.
func (r *Reactor) Register(fd int, kind Kind, userData uint64) error {
	r.kinds[fd] = kind
	r.userData[fd] = userData
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("reactor: epoll_ctl add fd=%d: %w", fd, err)
	}
	return nil
}

// Unregister removes fd from the epoll set. It does not close fd.
func (r *Reactor) Unregister(fd int) error {
	delete(r.kinds, fd)
	delete(r.userData, fd)
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("reactor: epoll_ctl del fd=%d: %w", fd, err)
	}
	return nil
}

// Wait blocks up to timeout for readiness, returning every ready source.
// A timeout <= 0 polls without blocking.
func (r *Reactor) Wait(timeout time.Duration) ([]Event, error) {
	ms := int(timeout / time.Millisecond)
	if timeout > 0 && ms == 0 {
		ms = 1
	}
	if ms < 0 {
		ms = 0
	}
	var events [32]unix.EpollEvent
	n, err := unix.EpollWait(r.epfd, events[:], ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, fmt.Errorf("reactor: epoll_wait: %w", err)
	}
	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		fd := int(events[i].Fd)
		kind := r.kinds[fd]
		ud := r.userData[fd]
		if kind == Wakeup {
			drainEventfd(fd)
		}
		out = append(out, Event{UserData: ud, Kind: kind})
	}
	return out, nil
}

// Notify wakes a blocked Wait from any goroutine.
func (r *Reactor) Notify() error {
	buf := [8]byte{1, 0, 0, 0, 0, 0, 0, 0}
	_, err := unix.Write(r.wakeupFD, buf[:])
	return err
}

func drainEventfd(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
}

// Close releases the epoll and eventfd descriptors.
func (r *Reactor) Close() error {
	unix.Close(r.wakeupFD)
	return unix.Close(r.epfd)
}

// NewTimerFD creates a relative, optionally periodic timerfd and arms it,
// returning the raw fd for the caller to Register.
func NewTimerFD(initial, interval time.Duration) (int, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return -1, fmt.Errorf("reactor: timerfd_create: %w", err)
	}
	spec := unix.ItimerSpec{
		Value:    unix.NsecToTimespec(initial.Nanoseconds()),
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
	}
	if spec.Value.Sec == 0 && spec.Value.Nsec == 0 {
		// A zero relative deadline would disarm the timer instead of
		// firing on the next tick; clamp to 1ns.
		spec.Value.Nsec = 1
	}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: timerfd_settime: %w", err)
	}
	return fd, nil
}

// DrainTimerFD reads and discards the 8-byte expiration counter, clearing
// the timerfd's readiness level.
func DrainTimerFD(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
}

// CloseFD closes an arbitrary fd owned by a caller of NewTimerFD.
func CloseFD(fd int) error { return unix.Close(fd) }
