package wire_test

import (
	"bytes"
	"testing"

	"github.com/soypat/ctcp/wire"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		seg  wire.Segment
	}{
		{"empty", wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagACK, Window: 1440}},
		{"data", wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagACK, Window: 1440, Data: []byte("hello")}},
		{"fin", wire.Segment{Seqno: 6, Ackno: 11, Flags: wire.FlagFIN, Window: 1440}},
		{"ack-and-fin", wire.Segment{Seqno: 6, Ackno: 11, Flags: wire.FlagACK | wire.FlagFIN, Window: 1440}},
		{"odd-length-payload", wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagACK, Window: 1440, Data: []byte("odd")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.seg.Len())
			n, err := wire.Encode(buf, &tt.seg)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if n != tt.seg.Len() {
				t.Fatalf("Encode wrote %d bytes, want %d", n, tt.seg.Len())
			}
			got, err := wire.Decode(buf)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.Seqno != tt.seg.Seqno || got.Ackno != tt.seg.Ackno || got.Flags != tt.seg.Flags || got.Window != tt.seg.Window {
				t.Fatalf("decoded header mismatch: got %+v want %+v", got, tt.seg)
			}
			if !bytes.Equal(got.Data, tt.seg.Data) {
				t.Fatalf("decoded data mismatch: got %q want %q", got.Data, tt.seg.Data)
			}
		})
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	seg := wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagACK, Window: 1440, Data: []byte("hello")}
	buf := make([]byte, seg.Len())
	wire.Encode(buf, &seg)
	_, err := wire.Decode(buf[:len(buf)-1])
	if err != wire.ErrTruncated {
		t.Fatalf("want ErrTruncated, got %v", err)
	}
}

func TestDecodeRejectsCorruptChecksum(t *testing.T) {
	seg := wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagACK, Window: 1440, Data: []byte("hello")}
	buf := make([]byte, seg.Len())
	wire.Encode(buf, &seg)
	buf[wire.HeaderSize] ^= 0xFF // flip every bit of the first payload byte
	_, err := wire.Decode(buf)
	if err != wire.ErrChecksum {
		t.Fatalf("want ErrChecksum, got %v", err)
	}
}

func TestDecodeShortBuffer(t *testing.T) {
	_, err := wire.Decode(make([]byte, wire.HeaderSize-1))
	if err != wire.ErrShortBuffer {
		t.Fatalf("want ErrShortBuffer, got %v", err)
	}
}

func TestFlagsString(t *testing.T) {
	tests := []struct {
		f    wire.Flags
		want string
	}{
		{0, "[]"},
		{wire.FlagACK, "[ACK]"},
		{wire.FlagFIN, "[FIN]"},
		{wire.FlagACK | wire.FlagFIN, "[ACK,FIN]"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("Flags(%d).String() = %q, want %q", tt.f, got, tt.want)
		}
	}
}
