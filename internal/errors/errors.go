package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies every failure the server can run into.
type Kind int

const (
	SocketError Kind = iota
	ListenError
	ParseError
	NotSupported
	OutOfMemory
	NotFound
	Generic
	PathTooLong
)

func (k Kind) Error() string {
	switch k {
	case SocketError:
		return "socket error"
	case ListenError:
		return "listen error"
	case ParseError:
		return "parse error"
	case NotSupported:
		return "not supported"
	case OutOfMemory:
		return "out of memory"
	case NotFound:
		return "not found"
	case Generic:
		return "generic error"
	case PathTooLong:
		return "path too long"
	default:
		return fmt.Sprintf("unknown error kind: %d", int(k))
	}
}

// Error carries a Kind together with context and the error that caused it.
type Error struct {
	Kind       Kind
	msg        string
	underlying error
}

func New(kind Kind, msg string, underlying error) *Error {
	return &Error{
		Kind:       kind,
		msg:        msg,
		underlying: underlying,
	}
}

func (e *Error) Error() string {
	s := e.Kind.Error()
	if e.msg != "" {
		s += ": " + e.msg
	}
	if e.underlying != nil {
		s += fmt.Sprintf(" (underlying: %v)", e.underlying)
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.underlying
}

// Is reports a match when target is the same Kind, so callers can write
// errors.Is(err, NotFound).
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
