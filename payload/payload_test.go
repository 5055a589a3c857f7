package payload

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PhilippGackstatter/engineio/eioerr"
	"github.com/PhilippGackstatter/engineio/packet"
)

func TestDecodeHandshakeTextFraming(t *testing.T) {
	// A single-packet handshake body, text-framed.
	body := `96:0{"sid":"d5vWJMbJuMCRZOnuAAAI","upgrades":["websocket"],"pingInterval":25000,"pingTimeout":5000}`
	packets, err := Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet, got %d", len(packets))
	}
	if packets[0].Type != packet.Open {
		t.Fatalf("expected Open packet, got %v", packets[0].Type)
	}
	wantJSON := `{"sid":"d5vWJMbJuMCRZOnuAAAI","upgrades":["websocket"],"pingInterval":25000,"pingTimeout":5000}`
	if packets[0].Data.Text != wantJSON {
		t.Errorf("JSON body mismatch:\ngot:  %s\nwant: %s", packets[0].Data.Text, wantJSON)
	}
}

func TestDecodeMultiFrameRoundTrip(t *testing.T) {
	// Scenario 6: the handshake body repeated four times decodes to four
	// identical Open packets.
	one := `96:0{"sid":"d5vWJMbJuMCRZOnuAAAI","upgrades":["websocket"],"pingInterval":25000,"pingTimeout":5000}`
	body := strings.Repeat(one, 4)

	packets, err := Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(packets) != 4 {
		t.Fatalf("expected 4 packets, got %d", len(packets))
	}
	for i, p := range packets {
		if p.Type != packet.Open || p.Data.Text != packets[0].Data.Text {
			t.Errorf("packet %d differs from the first: %+v", i, p)
		}
	}
}

func TestDecodeTextXHRMessage(t *testing.T) {
	// Scenario 2.
	packets, err := Decode([]byte("4:4abc"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(packets) != 1 || packets[0].Type != packet.Message || packets[0].Data.Text != "abc" {
		t.Fatalf("unexpected decode result: %+v", packets)
	}
}

func TestEncodeMessageBinaryFraming(t *testing.T) {
	// Scenario 3.
	got := Encode([]packet.Packet{packet.New(packet.Message, "message")})
	want := []byte{0x00, 0x08, 0xff, 0x34, 0x6d, 0x65, 0x73, 0x73, 0x61, 0x67, 0x65}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = %v, want %v", got, want)
	}
}

func TestEncodePingProbeBinaryFraming(t *testing.T) {
	// Scenario 4.
	got := Encode([]packet.Packet{packet.New(packet.Ping, "")})
	want := []byte{0x00, 0x01, 0xff, 0x32}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = %v, want %v", got, want)
	}
}

func TestDecodeMixedBinaryPayload(t *testing.T) {
	// Scenario 5.
	body := []byte{
		0x00, 0x01, 0x03, 0xff, '4', 'u', 't', 'f', ' ', '8', ' ', 's', 't', 'r', 'i', 'n', 'g',
		0x01, 0x07, 0xff, 0x04, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05,
	}
	packets, err := Decode(body)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(packets) != 2 {
		t.Fatalf("expected 2 packets, got %d", len(packets))
	}
	if packets[0].Type != packet.Message || packets[0].Data.IsBinary || packets[0].Data.Text != "utf 8 string" {
		t.Errorf("packet 0 mismatch: %+v", packets[0])
	}
	if packets[1].Type != packet.Message || !packets[1].Data.IsBinary {
		t.Errorf("packet 1 mismatch: %+v", packets[1])
	}
	wantBinary := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	if !bytes.Equal(packets[1].Data.Binary, wantBinary) {
		t.Errorf("packet 1 body mismatch: got %v, want %v", packets[1].Data.Binary, wantBinary)
	}
}

func TestDecodeEmptyBody(t *testing.T) {
	_, err := Decode(nil)
	if !eioerr.IsProtocol(err) {
		t.Fatalf("expected Protocol error for empty body, got %v", err)
	}
}

func TestDecodeBinaryZeroLengthContent(t *testing.T) {
	// A zero-length binary frame content must decode as a type with an
	// empty body: 0x00 0x00 0xFF is an empty-payload Ping, encoded as just
	// the type char '2'.
	packets, err := Decode([]byte{0x00, 0x00, 0xff, '2'})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(packets) != 1 || packets[0].Type != packet.Ping || packets[0].Data.Text != "" {
		t.Fatalf("unexpected result: %+v", packets)
	}
}

func TestDecodeBinaryOverrunningLength(t *testing.T) {
	_, err := Decode([]byte{0x00, 5, 0xff, 'a'})
	if !eioerr.IsProtocol(err) {
		t.Fatalf("expected Protocol error for overrunning length, got %v", err)
	}
}

func TestDecodeBinaryMissingTerminator(t *testing.T) {
	_, err := Decode([]byte{0x00, 1, 'a'})
	if !eioerr.IsProtocol(err) {
		t.Fatalf("expected Protocol error for missing terminator, got %v", err)
	}
}

func TestDecodeTextContentContainingColon(t *testing.T) {
	// The content "a:b" contains a colon, which must not be treated as a
	// delimiter: only the first colon after the length digits counts.
	packets, err := Decode([]byte("4:4a:b"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(packets) != 1 || packets[0].Data.Text != "a:b" {
		t.Fatalf("unexpected result: %+v", packets)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	packets := []packet.Packet{
		packet.New(packet.Message, "hello"),
		packet.New(packet.Ping, "probe"),
		packet.New(packet.Close, ""),
	}
	encoded := Encode(packets)
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != len(packets) {
		t.Fatalf("got %d packets, want %d", len(decoded), len(packets))
	}
	for i := range packets {
		if decoded[i].Type != packets[i].Type || decoded[i].Data.IsBinary != packets[i].Data.IsBinary ||
			decoded[i].Data.Text != packets[i].Data.Text || !bytes.Equal(decoded[i].Data.Binary, packets[i].Data.Binary) {
			t.Errorf("packet %d mismatch: got %+v, want %+v", i, decoded[i], packets[i])
		}
	}
}

