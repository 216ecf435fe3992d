package engine

import (
	"testing"

	"github.com/soypat/ctcp/wire"
)

func segmentBytes(t *testing.T, seg wire.Segment) []byte {
	t.Helper()
	buf := make([]byte, seg.Len())
	if _, err := wire.Encode(buf, &seg); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buf
}

func TestOnSegmentDeliversInOrderData(t *testing.T) {
	c, ep := newTestConn(t)
	raw := segmentBytes(t, wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagACK, Data: []byte("abc")})

	c.OnSegment(raw)

	if got := ep.AppOutString(); got != "abc" {
		t.Fatalf("AppOut = %q, want %q", got, "abc")
	}
	if c.Ackno() != 4 {
		t.Errorf("Ackno() = %d, want 4", c.Ackno())
	}
	if ep.Out.Pending() != 1 {
		t.Errorf("expected one ACK queued, got %d", ep.Out.Pending())
	}
}

func TestOnSegmentBuffersOutOfOrderThenFlushes(t *testing.T) {
	c, ep := newTestConn(t)
	second := segmentBytes(t, wire.Segment{Seqno: 4, Ackno: 1, Flags: wire.FlagACK, Data: []byte("def")})
	first := segmentBytes(t, wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagACK, Data: []byte("abc")})

	c.OnSegment(second) // arrives first: held, cannot be delivered yet
	if ep.AppOutLen() != 0 {
		t.Fatalf("AppOut should be empty before the gap is filled, got %q", ep.AppOutString())
	}
	if c.BytesBuffered() != 3 {
		t.Errorf("BytesBuffered() = %d, want 3", c.BytesBuffered())
	}

	c.OnSegment(first) // fills the gap: both segments deliver in order
	if got := ep.AppOutString(); got != "abcdef" {
		t.Fatalf("AppOut = %q, want %q", got, "abcdef")
	}
	if c.BytesBuffered() != 0 {
		t.Errorf("BytesBuffered() = %d, want 0 after flush", c.BytesBuffered())
	}
}

func TestOnSegmentDropsStaleDuplicate(t *testing.T) {
	c, ep := newTestConn(t)
	raw := segmentBytes(t, wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagACK, Data: []byte("abc")})
	c.OnSegment(raw)
	ep.AppOut.Reset()

	c.OnSegment(raw) // same seqno again, now stale relative to ackno=4

	if ep.AppOutLen() != 0 {
		t.Errorf("duplicate segment should not be re-delivered, got %q", ep.AppOutString())
	}
}

func TestOnSegmentDropsInvalidChecksum(t *testing.T) {
	c, ep := newTestConn(t)
	raw := segmentBytes(t, wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagACK, Data: []byte("abc")})
	raw[len(raw)-1] ^= 0xFF // flip the last payload byte, invalidating the stored checksum

	c.OnSegment(raw)

	if ep.AppOutLen() != 0 {
		t.Error("corrupt segment should be dropped, not delivered")
	}
	if c.Ackno() != 1 {
		t.Errorf("Ackno() should be unchanged by a dropped segment, got %d", c.Ackno())
	}
}

func TestProcessAckRemovesCoveredRecords(t *testing.T) {
	c, ep := newTestConn(t)
	ep.AppIn.WriteString("hello")
	c.OnInput() // seqno 1..5 now outstanding

	ack := segmentBytes(t, wire.Segment{Seqno: 1, Ackno: 6, Flags: wire.FlagACK})
	c.OnSegment(ack)

	if c.BytesOutstanding() != 0 {
		t.Errorf("BytesOutstanding() = %d, want 0 after full ack", c.BytesOutstanding())
	}
	if len(c.unacked) != 0 {
		t.Errorf("len(unacked) = %d, want 0", len(c.unacked))
	}
}

func TestPeerFinInDataTransferClosesGracefully(t *testing.T) {
	c, ep := newTestConn(t)
	fin := segmentBytes(t, wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagFIN})

	c.OnSegment(fin)

	if c.State() != StateWaitLastAck {
		t.Fatalf("State() = %s, want WAIT_LAST_ACK", c.State())
	}
	// Expect an ACK for the FIN, then our own FIN: two frames queued.
	if got := ep.Out.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2 (ack + our fin)", got)
	}
}

func TestFullCloseSequence(t *testing.T) {
	c, ep := newTestConn(t)
	ep.CloseInput()
	c.OnInput() // -> FIN_SENT, our FIN queued

	ackOfFin := segmentBytes(t, wire.Segment{Seqno: 1, Ackno: c.finSeqnoSent + 1, Flags: wire.FlagACK})
	c.OnSegment(ackOfFin)
	if c.State() != StateWaitLastFin {
		t.Fatalf("State() = %s, want WAIT_LAST_FIN", c.State())
	}

	peerFin := segmentBytes(t, wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagFIN})
	c.OnSegment(peerFin)
	if c.State() != StateLinger {
		t.Fatalf("State() = %s, want LINGER", c.State())
	}

	// LINGER grace period is 50*RTTimeout; at DefaultConfig's 40ms tick and
	// 200ms RTTimeout that is 250 ticks.
	for i := 0; i < 250; i++ {
		c.OnTick()
	}
	if c.State() != StateClosed {
		t.Fatalf("State() = %s, want CLOSED after linger grace period elapses", c.State())
	}
	if !ep.Removed() {
		t.Error("substrate should have been removed on destroy")
	}
}
