// Package eioerr defines the error type shared across the engine.io client:
// every failure surfaced to a caller is either a Transport error (network/IO,
// recoverable by reconnecting at a higher layer) or a Protocol error
// (malformed wire data, always fatal to the session).
package eioerr

import (
	"errors"
	"fmt"
)

// Kind distinguishes the two ways an engine.io operation can fail.
type Kind int

const (
	// Transport marks an HTTP-level failure, I/O error, or DNS failure.
	Transport Kind = iota
	// Protocol marks malformed payload/packet data or a handshake that
	// didn't match the expected shape.
	Protocol
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Protocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every exported engine.io operation.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engineio: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("engineio: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Protocolf builds a Protocol error with a formatted message.
func Protocolf(format string, args ...any) *Error {
	return &Error{Kind: Protocol, Msg: fmt.Sprintf(format, args...)}
}

// Transportf builds a Transport error with a formatted message, wrapping cause.
func Transportf(cause error, format string, args ...any) *Error {
	return &Error{Kind: Transport, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// IsProtocol reports whether err is (or wraps) a Protocol-kind Error.
func IsProtocol(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == Protocol
	}
	return false
}

// IsTransport reports whether err is (or wraps) a Transport-kind Error.
func IsTransport(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == Transport
	}
	return false
}

// ErrPongTimeout names the clean-shutdown-via-missed-pong case. It is never
// returned from Client.Join: a missed pong
// flips the session's connected flag and ends the ping loop without error,
// by design (see the session engine's ping loop).
var ErrPongTimeout = errors.New("engineio: pong not received before timeout")
