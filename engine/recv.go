package engine

import (
	"log/slog"

	"github.com/soypat/ctcp/wire"
)

// OnSegment is invoked by the datagram substrate with one received frame.
// Invalid segments (truncated or failing checksum) are dropped silently;
// recovery happens via the peer's own retransmission timer.
func (c *Connection) OnSegment(raw []byte) {
	if c.state == StateClosed {
		return
	}
	seg, err := wire.Decode(raw)
	if err != nil {
		c.debug("engine:rx-drop-invalid", slog.String("err", err.Error()))
		return
	}
	if seg.Flags.HasAny(wire.FlagACK) {
		c.processAck(seg.Ackno)
	}

	switch c.state {
	case StateDataTransfer:
		if len(seg.Data) > 0 {
			c.receiveData(seg)
		}
		if seg.Flags.HasAny(wire.FlagFIN) {
			c.receivePeerFin(seg)
		}
	case StateFinSent:
		if seg.Flags.HasAny(wire.FlagFIN) {
			c.ackno = seg.Seqno + 1
			c.sendAck(0)
			c.destroy()
			return
		}
		if seg.Flags.HasAny(wire.FlagACK) && seg.Ackno > c.finSeqnoSent {
			c.info("engine:fin-acked", slog.Uint64("ackno", uint64(seg.Ackno)))
			c.state = StateWaitLastFin
		}
	case StateWaitLastFin:
		if seg.Flags.HasAny(wire.FlagFIN) {
			c.ackno = seg.Seqno + 1
			c.sendAck(0)
			c.enterLinger()
		}
	case StateWaitLastAck:
		if seg.Flags.HasAny(wire.FlagACK) && seg.Ackno > c.finSeqnoSent {
			c.destroy()
		}
	case StateLinger:
		if seg.Flags.HasAny(wire.FlagFIN) {
			c.debug("engine:linger-refin", slog.Uint64("seqno", uint64(seg.Seqno)))
			c.ackno = seg.Seqno + 1
			c.sendAck(0)
			c.lingerElapsed = 0
		}
	}
}

// processAck removes from the unacked set every record the cumulative
// ackno a now covers. Out-of-range or duplicate acks are idempotent:
// removeAckedBefore simply finds nothing to remove.
func (c *Connection) processAck(a uint32) {
	c.removeAckedBefore(a)
}

// receiveData admits a data-bearing segment into the reassembly buffer;
// only reachable while in DATA_TRANSFER.
func (c *Connection) receiveData(seg wire.Segment) {
	if lessThan(seg.Seqno, c.ackno) {
		// Stale duplicate: drop body but still ACK so the peer recovers
		// if its view of our ACK was lost in transit.
		c.trace("engine:rx-reject", slog.String("err", errRejectStaleDup.Error()), slog.Uint64("seqno", uint64(seg.Seqno)), slog.Uint64("ackno", uint64(c.ackno)))
		c.sendAck(0)
		return
	}
	if int(c.bytesBuffered)+len(seg.Data) > int(c.cfg.RecvWindow) {
		c.debug("engine:rx-reject", slog.String("err", errRejectRecvWindow.Error()), slog.Uint64("seqno", uint64(seg.Seqno)), slog.Int("len", len(seg.Data)))
		return
	}
	c.insertReasm(seg.Seqno, seg.Data)
	c.deliver()
}

// receivePeerFin handles a FIN arriving in DATA_TRANSFER: the peer has no
// more data. Any payload on the same segment was already processed by
// receiveData before this call: payload is delivered before the FIN is
// acted on.
func (c *Connection) receivePeerFin(seg wire.Segment) {
	c.info("engine:rx-fin", slog.Uint64("seqno", uint64(seg.Seqno)))
	// Emit EOF downstream: the original ctcp reference signals this by
	// calling the output collaborator with a nil, zero-length buffer.
	c.sub.AppWrite(nil)
	c.ackno = seg.Seqno + 1
	c.sendAck(0)
	c.sendFin()
	c.state = StateWaitLastAck
}

// deliver emits in-order reassembled payload to the application while the
// downstream output buffer has room. It stops, not errors, when the
// buffer is full; OnDrain resumes it.
func (c *Connection) deliver() {
	for len(c.reasm) > 0 && c.reasm[0].seqno == c.ackno {
		head := c.reasm[0]
		if len(head.data) > c.sub.AppBufSpace() {
			return // No room downstream yet; OnDrain will resume.
		}
		if len(head.data) > 0 {
			if _, err := c.sub.AppWrite(head.data); err != nil {
				c.logerr("engine:app-write-failed", slog.String("err", err.Error()))
				c.destroy()
				return
			}
		}
		c.popReasmHead()
		c.ackno += uint32(len(head.data))
		c.sendAck(0)
	}
}

// OnDrain is invoked by the application-side writer when the downstream
// output buffer has drained; it resumes any delivery deliver() had to
// pause for lack of buffer space.
func (c *Connection) OnDrain() {
	if c.state.IsClosed() {
		return
	}
	c.deliver()
}

// lessThan reports whether x precedes y in the unsigned sequence-number
// space. See the comment on seqLessEq in records.go: wraparound handling is
// not exercised by this engine's scope.
func lessThan(x, y uint32) bool { return x < y }
