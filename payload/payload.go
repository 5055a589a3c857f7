// Package payload implements the Engine.IO v3 payload codec: the
// self-delimiting framing that packs an ordered sequence of packets into one
// HTTP body, mixing text-tagged and binary-tagged frames.
//
// The wire format autodetects on the first byte of the body:
//
//	0x00 or 0x01 as the first byte → binary framing:
//
//	  <marker:1 byte ∈ {0x00,0x01}><lenDigits:n bytes, 0x00..0x09><0xFF><content>
//
//	  marker 0x00 selects the text packet decoder for content (UTF-8 required),
//	  marker 0x01 selects the binary packet decoder. len counts content bytes.
//
//	anything else → text framing:
//
//	  <lenDigits: ASCII '0'..'9'>':'<content: len UTF-8 bytes>
//
// Frames are concatenated back to back with no separator between them; a
// decoder must keep consuming frames until the body is exhausted.
package payload

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PhilippGackstatter/engineio/eioerr"
	"github.com/PhilippGackstatter/engineio/packet"
)

const frameTerminator byte = 0xff

// marker identifies which packet decoder a binary frame's content uses.
// This mirrors the shape of a pluggable codec type (encode/decode/identify),
// generalized here to "which packet decode rule applies to this frame" rather
// than "which serialization format encodes this RPC body".
type marker byte

const (
	markerText   marker = 0x00
	markerBinary marker = 0x01
)

// frameCodec decodes a single frame's content once its marker has already
// selected which rule applies. There are exactly two implementations, chosen
// by the marker byte on decode and fixed to text on encode (see Encode).
type frameCodec interface {
	decode(content []byte) (packet.Packet, error)
}

type textFrameCodec struct{}

func (textFrameCodec) decode(content []byte) (packet.Packet, error) {
	if !isValidUTF8(content) {
		return packet.Packet{}, eioerr.Protocolf("binary frame tagged text contains invalid UTF-8")
	}
	return packet.DecodeText(string(content))
}

type binaryFrameCodec struct{}

func (binaryFrameCodec) decode(content []byte) (packet.Packet, error) {
	return packet.DecodeBinary(content)
}

func codecFor(m marker) (frameCodec, bool) {
	switch m {
	case markerText:
		return textFrameCodec{}, true
	case markerBinary:
		return binaryFrameCodec{}, true
	default:
		return nil, false
	}
}

func isValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}

// Encode serializes packets using binary framing: every packet becomes a
// text representation (packet.Packet.Encode, never Binary — outbound
// binary-bodied packets are a non-goal for this client) wrapped in
// 0x00 <lenDigits> 0xFF <content>.
func Encode(packets []packet.Packet) []byte {
	out := make([]byte, 0, 64*len(packets))
	for _, p := range packets {
		content := p.Encode()
		out = append(out, byte(markerText))
		out = append(out, lengthDigits(len(content))...)
		out = append(out, frameTerminator)
		out = append(out, content...)
	}
	return out
}

// lengthDigits renders n as raw decimal digit bytes (0-9 each, MSB first, no
// leading zeros except n==0 → a single 0 byte) — the binary-framing length
// field, not ASCII text.
func lengthDigits(n int) []byte {
	if n == 0 {
		return []byte{0}
	}
	s := strconv.Itoa(n)
	digits := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		digits[i] = s[i] - '0'
	}
	return digits
}

// Decode parses an HTTP body into its ordered sequence of packets,
// autodetecting binary vs text framing from the first byte.
func Decode(body []byte) ([]packet.Packet, error) {
	if len(body) == 0 {
		return nil, eioerr.Protocolf("empty payload body")
	}
	if body[0] == byte(markerText) || body[0] == byte(markerBinary) {
		return decodeBinaryFraming(body)
	}
	return decodeTextFraming(body)
}

func decodeBinaryFraming(body []byte) ([]packet.Packet, error) {
	var packets []packet.Packet
	i := 0
	for i < len(body) {
		m := marker(body[i])
		codec, ok := codecFor(m)
		if !ok {
			return nil, eioerr.Protocolf("unknown binary frame marker 0x%02x", body[i])
		}
		i++

		digitsStart := i
		for i < len(body) && body[i] <= 9 {
			i++
		}
		if i >= len(body) || body[i] != frameTerminator {
			return nil, eioerr.Protocolf("binary frame missing 0xFF length terminator")
		}
		length, err := digitsToInt(body[digitsStart:i])
		if err != nil {
			return nil, err
		}
		i++ // skip terminator

		if i+length > len(body) {
			return nil, eioerr.Protocolf("binary frame declared length %d overruns body", length)
		}
		content := body[i : i+length]
		i += length

		p, err := codec.decode(content)
		if err != nil {
			return nil, err
		}
		packets = append(packets, p)
	}
	return packets, nil
}

func digitsToInt(digits []byte) (int, error) {
	if len(digits) == 0 {
		return 0, eioerr.Protocolf("truncated binary frame length field")
	}
	n := 0
	for _, d := range digits {
		n = n*10 + int(d)
	}
	return n, nil
}

func decodeTextFraming(body []byte) ([]packet.Packet, error) {
	var packets []packet.Packet
	s := string(body)
	for len(s) > 0 {
		colon := strings.IndexByte(s, ':')
		if colon < 0 {
			return nil, eioerr.Protocolf("text frame missing ':' length delimiter")
		}
		length, err := strconv.Atoi(s[:colon])
		if err != nil {
			return nil, eioerr.Protocolf("text frame has a non-numeric length field: %v", err)
		}
		start := colon + 1
		end := start + length
		if length < 0 || end > len(s) {
			return nil, eioerr.Protocolf("text frame declared length %d overruns body", length)
		}
		p, err := packet.DecodeText(s[start:end])
		if err != nil {
			return nil, err
		}
		packets = append(packets, p)
		s = s[end:]
	}
	return packets, nil
}
