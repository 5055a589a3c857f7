// Package packet implements the Engine.IO v3 packet format: a single typed
// frame consisting of a one-character type marker followed by a text or
// binary body.
//
// Frame format:
//
//	0        1
//	┌────────┬───────────────┐
//	│ type   │   body ...    │
//	│'0'..'6'│  text or bytes │
//	└────────┴───────────────┘
package packet

import (
	"fmt"
	"unicode/utf8"

	"github.com/PhilippGackstatter/engineio/eioerr"
)

// Type is the Engine.IO packet type, a closed enum over the ASCII digits
// '0'..'6'.
type Type byte

const (
	Open    Type = iota // '0' — handshake, carries the JSON OpenPacket
	Close               // '1' — terminate the session
	Ping                // '2' — heartbeat probe, sent by this client
	Pong                // '3' — heartbeat response, mirrors the ping payload
	Message             // '4' — application data, text or bytes
	Upgrade             // '5' — transport upgrade notice, ignored by this client
	Noop                // '6' — used to close a pending poll without data
)

// typeChars maps Type to its wire character, indexed by Type.
var typeChars = [...]byte{'0', '1', '2', '3', '4', '5', '6'}

// char returns the ASCII digit this type encodes to on the wire.
func (t Type) char() byte {
	return typeChars[t]
}

// String renders the type name, mostly useful in logs and test failures.
func (t Type) String() string {
	switch t {
	case Open:
		return "open"
	case Close:
		return "close"
	case Ping:
		return "ping"
	case Pong:
		return "pong"
	case Message:
		return "message"
	case Upgrade:
		return "upgrade"
	case Noop:
		return "noop"
	default:
		return fmt.Sprintf("type(%d)", byte(t))
	}
}

// typeFromDigitChar decodes an ASCII digit character ('0'..'6') into a Type.
func typeFromDigitChar(c byte) (Type, bool) {
	if c < '0' || c > '6' {
		return 0, false
	}
	return Type(c - '0'), true
}

// typeFromDigit decodes a numeric digit (0..6, not an ASCII character) into
// a Type. Used when the byte has already been extracted from a binary-tagged
// frame, where the type is a raw value rather than a character.
func typeFromDigit(d byte) (Type, bool) {
	if d > 6 {
		return 0, false
	}
	return Type(d), true
}

// Data is the payload a Packet carries: exactly one of Text or Binary is
// meaningful, selected by IsBinary. A Text body always holds valid UTF-8.
type Data struct {
	IsBinary bool
	Text     string
	Binary   []byte
}

// TextData constructs a text-bodied Data.
func TextData(s string) Data {
	return Data{Text: s}
}

// BinaryData constructs a binary-bodied Data.
func BinaryData(b []byte) Data {
	return Data{IsBinary: true, Binary: b}
}

// Packet is one Engine.IO protocol frame: a type plus its body. Immutable
// once constructed.
type Packet struct {
	Type Type
	Data Data
}

// New constructs a text-bodied packet.
func New(t Type, text string) Packet {
	return Packet{Type: t, Data: TextData(text)}
}

// NewBinary constructs a binary-bodied packet.
func NewBinary(t Type, body []byte) Packet {
	return Packet{Type: t, Data: BinaryData(body)}
}

// Encode serializes the packet to its text representation: the type
// character followed by the body. Binary bodies are appended as raw bytes,
// which is only valid when the caller intends to re-tag the result as a
// binary frame in the payload codec (see package payload) — a binary-bodied
// packet is never emitted as a *text* frame.
func (p Packet) Encode() []byte {
	out := make([]byte, 0, 1+len(p.Data.Text)+len(p.Data.Binary))
	out = append(out, p.Type.char())
	if p.Data.IsBinary {
		out = append(out, p.Data.Binary...)
	} else {
		out = append(out, p.Data.Text...)
	}
	return out
}

// DecodeText decodes a packet whose type byte is an ASCII digit character,
// as used inside text-tagged payload frames. The remainder of s becomes the
// packet's Text body.
func DecodeText(s string) (Packet, error) {
	if len(s) == 0 {
		return Packet{}, eioerr.Protocolf("empty packet")
	}
	t, ok := typeFromDigitChar(s[0])
	if !ok {
		return Packet{}, eioerr.Protocolf("invalid packet type character %q", s[0])
	}
	body := s[1:]
	if !utf8.ValidString(body) {
		return Packet{}, eioerr.Protocolf("packet body is not valid UTF-8")
	}
	return New(t, body), nil
}

// DecodeBinary decodes a packet whose type byte is a raw numeric digit, as
// used inside binary-tagged payload frames. The remainder of b becomes the
// packet's Binary body.
func DecodeBinary(b []byte) (Packet, error) {
	if len(b) == 0 {
		return Packet{}, eioerr.Protocolf("empty packet")
	}
	t, ok := typeFromDigit(b[0])
	if !ok {
		return Packet{}, eioerr.Protocolf("invalid packet type byte %d", b[0])
	}
	return NewBinary(t, b[1:]), nil
}
