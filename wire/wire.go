// Package wire implements the cTCP segment header codec and the Internet
// checksum used to validate it.
package wire

import (
	"encoding/binary"
	"errors"
)

// HeaderSize is the fixed size, in bytes, of a cTCP segment header.
// seqno(4) + ackno(4) + len(2) + flags(4) + window(2) + cksum(2).
const HeaderSize = 18

// Flags is the cTCP flags bitfield. Only ACK and FIN are meaningful to the
// core; other bits are reserved and pass through unexamined.
type Flags uint32

const (
	// FlagACK marks ackno as significant (cumulative acknowledgment).
	FlagACK Flags = 1 << iota
	// FlagFIN marks the segment as consuming one sequence number to signal
	// the sender has no more data to send.
	FlagFIN
)

// HasAll reports whether all bits in mask are set in flags.
func (f Flags) HasAll(mask Flags) bool { return f&mask == mask }

// HasAny reports whether any bit in mask is set in flags.
func (f Flags) HasAny(mask Flags) bool { return f&mask != 0 }

func (f Flags) String() string {
	switch {
	case f.HasAll(FlagACK | FlagFIN):
		return "[ACK,FIN]"
	case f.HasAny(FlagACK):
		return "[ACK]"
	case f.HasAny(FlagFIN):
		return "[FIN]"
	default:
		return "[]"
	}
}

var (
	// ErrShortBuffer is returned when a buffer is too small to hold a cTCP header.
	ErrShortBuffer = errors.New("wire: buffer shorter than header")
	// ErrTruncated is returned by Decode when the declared segment length
	// exceeds the bytes actually received.
	ErrTruncated = errors.New("wire: segment length exceeds received bytes")
	// ErrChecksum is returned by Decode when the checksum does not verify.
	ErrChecksum = errors.New("wire: checksum mismatch")
)

// Segment is the in-memory, host-order representation of a cTCP segment:
// fixed header plus 0..MaxPayload bytes of data.
type Segment struct {
	Seqno  uint32
	Ackno  uint32
	Flags  Flags
	Window uint16
	Data   []byte
}

// Len returns the total wire length of the segment: header plus payload.
func (s *Segment) Len() int { return HeaderSize + len(s.Data) }

// Encode writes s to dst in network byte order, computes and fills in the
// checksum, and returns the number of bytes written (s.Len()). dst must be
// at least s.Len() bytes.
//
// Encoding builds the header in host order, copies the payload, converts
// header fields to network order, zeroes the checksum field, computes the
// 16-bit one's-complement Internet checksum over the full segment, and
// writes it back.
func Encode(dst []byte, s *Segment) (int, error) {
	n := s.Len()
	if len(dst) < n {
		return 0, ErrShortBuffer
	}
	binary.BigEndian.PutUint32(dst[0:4], s.Seqno)
	binary.BigEndian.PutUint32(dst[4:8], s.Ackno)
	binary.BigEndian.PutUint16(dst[8:10], uint16(n))
	binary.BigEndian.PutUint32(dst[10:14], uint32(s.Flags))
	binary.BigEndian.PutUint16(dst[14:16], s.Window)
	binary.BigEndian.PutUint16(dst[16:18], 0) // cksum zeroed for computation
	copy(dst[HeaderSize:n], s.Data)
	cksum := Checksum(dst[:n])
	binary.BigEndian.PutUint16(dst[16:18], cksum)
	return n, nil
}

// Decode validates and parses a wire-format segment from src, where src is
// exactly the bytes received for this datagram (len(src) is the substrate's
// reported receive length, not a buffer capacity).
//
// It verifies len <= bytes_received, saves and zeroes the checksum
// field, recomputes, compares, restores, then converts fields to host order.
// Decode never panics on malformed input; it returns a non-nil error for
// truncated or corrupt segments, which callers must drop silently.
func Decode(src []byte) (Segment, error) {
	if len(src) < HeaderSize {
		return Segment{}, ErrShortBuffer
	}
	declaredLen := int(binary.BigEndian.Uint16(src[8:10]))
	if declaredLen < HeaderSize || declaredLen > len(src) {
		return Segment{}, ErrTruncated
	}
	buf := src[:declaredLen]
	wantCksum := binary.BigEndian.Uint16(buf[16:18])
	binary.BigEndian.PutUint16(buf[16:18], 0)
	gotCksum := Checksum(buf)
	binary.BigEndian.PutUint16(buf[16:18], wantCksum)
	if gotCksum != wantCksum {
		return Segment{}, ErrChecksum
	}
	seg := Segment{
		Seqno:  binary.BigEndian.Uint32(buf[0:4]),
		Ackno:  binary.BigEndian.Uint32(buf[4:8]),
		Flags:  Flags(binary.BigEndian.Uint32(buf[10:14])),
		Window: binary.BigEndian.Uint16(buf[14:16]),
	}
	if payload := buf[HeaderSize:]; len(payload) > 0 {
		seg.Data = append([]byte(nil), payload...)
	}
	return seg, nil
}
