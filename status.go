package actor

import "fmt"

// Code is the closed status taxonomy. Every fallible runtime
// operation returns a Status carrying one of these plus a static reason
// string — reasons are always string literals, never heap-formatted, so a
// failing call never allocates.
type Code int

const (
	OK Code = iota
	NOMEM
	INVALID
	TIMEOUT
	CLOSED
	WOULDBLOCK
	IO
	EXISTS
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case NOMEM:
		return "NOMEM"
	case INVALID:
		return "INVALID"
	case TIMEOUT:
		return "TIMEOUT"
	case CLOSED:
		return "CLOSED"
	case WOULDBLOCK:
		return "WOULDBLOCK"
	case IO:
		return "IO"
	case EXISTS:
		return "EXISTS"
	default:
		return "UNKNOWN"
	}
}

// Status is the {code, optional static reason} pair every fallible
// operation returns. It is a plain value type so hot paths never
// allocate to report failure.
type Status struct {
	Code   Code
	Reason string
}

// StatusOK is the zero-allocation success value. Successful calls never
// fabricate a reason string.
var StatusOK = Status{Code: OK}

func (s Status) Ok() bool { return s.Code == OK }

func (s Status) Error() string {
	if s.Reason == "" {
		return s.Code.String()
	}
	return fmt.Sprintf("%s: %s", s.Code, s.Reason)
}

func status(code Code, reason string) Status { return Status{Code: code, Reason: reason} }

// Error wraps a Status with operation/actor/bus context for logging and
// errors.Is/As. The hot-path API returns Status directly; Error exists
// for callers that want a conventional Go `error` (e.g. bridging into
// context.Context-based host code).
type Error struct {
	Op      string
	ActorID ActorId
	BusID   BusId
	Status  Status
	Inner   error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Status.Error()
	}
	return fmt.Sprintf("actor: %s: %s", e.Op, e.Status.Error())
}

func (e *Error) Unwrap() error { return e.Inner }

func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Status.Code == te.Status.Code
}

// WrapStatus turns a Status into an *Error with operation context, or nil
// if the Status is OK.
func WrapStatus(op string, s Status) error {
	if s.Ok() {
		return nil
	}
	return &Error{Op: op, Status: s}
}
