package engine

import (
	"errors"
	"io"
	"log/slog"

	"github.com/soypat/ctcp/wire"
)

// OnInput is the event invoked by the application-side reader to indicate
// local application bytes are available, or that local input has reached
// EOF.
func (c *Connection) OnInput() {
	if !c.state.CanSendData() {
		return // no-op outside DATA_TRANSFER.
	}
	if int(c.cfg.SendWindow)-int(c.bytesOutstanding) < c.cfg.MaxPayload {
		return // backpressure: not enough send window for a full segment.
	}
	n, err := c.sub.AppRead(c.scratch[:c.cfg.MaxPayload])
	if err != nil && !errors.Is(err, io.EOF) {
		c.logerr("engine:app-read-error", slog.String("err", err.Error()))
		return
	}
	if errors.Is(err, io.EOF) {
		c.sendFin()
		c.state = StateFinSent
		return
	}
	if n > 0 {
		c.sendData(c.scratch[:n])
	}
}

// sendData frames and transmits one data segment, appending it to the
// unacked set for retransmission.
func (c *Connection) sendData(payload []byte) {
	seg := wire.Segment{
		Seqno:  c.seqno,
		Ackno:  c.ackno,
		Flags:  wire.FlagACK,
		Window: c.cfg.RecvWindow,
		Data:   payload,
	}
	encoded := encodeSegment(&seg)
	c.unacked = append(c.unacked, unackedRecord{
		encoded:    encoded,
		seqno:      c.seqno,
		consumes:   uint32(len(payload)),
		payloadLen: uint16(len(payload)),
	})
	c.bytesOutstanding += uint16(len(payload))
	c.seqno += uint32(len(payload))
	c.trace("engine:tx-data", slog.Uint64("seqno", uint64(seg.Seqno)), slog.Int("len", len(payload)))
	c.transmit(encoded)
}

// sendFin frames and transmits the FIN segment that consumes exactly one
// sequence number. FIN is always sent in its own segment, never bundled
// with data.
func (c *Connection) sendFin() {
	seg := wire.Segment{
		Seqno:  c.seqno,
		Ackno:  c.ackno,
		Flags:  wire.FlagFIN,
		Window: c.cfg.RecvWindow,
	}
	encoded := encodeSegment(&seg)
	c.finSeqnoSent = c.seqno
	c.finSent = true
	c.unacked = append(c.unacked, unackedRecord{
		encoded:  encoded,
		seqno:    c.seqno,
		consumes: 1,
	})
	c.seqno++
	c.info("engine:tx-fin", slog.Uint64("seqno", uint64(seg.Seqno)))
	c.transmit(encoded)
}

// sendAck frames and transmits a zero-payload segment carrying the
// cumulative ackno and, optionally, additional flags in extra (every caller
// in this package passes none; FIN goes out through sendFin). Pure ACKs are
// not retransmitted: they are never appended to the unacked set.
func (c *Connection) sendAck(extra wire.Flags) {
	seg := wire.Segment{
		Seqno:  c.seqno,
		Ackno:  c.ackno,
		Flags:  wire.FlagACK | extra,
		Window: c.cfg.RecvWindow,
	}
	buf := make([]byte, seg.Len())
	wire.Encode(buf, &seg)
	c.trace("engine:tx-ack", slog.Uint64("ackno", uint64(seg.Ackno)))
	c.transmit(buf)
}

// transmit hands an already-encoded segment to the substrate. A transmit
// failure is logged; retransmission will retry it.
func (c *Connection) transmit(encoded []byte) {
	n, err := c.sub.Send(encoded)
	if err != nil || n < 0 {
		c.logerr("engine:send-failed", slog.String("err", errString(err)))
	}
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

// OnTick is the periodic retransmission clock event. It must be invoked
// at a fixed period equal to cfg.Timer.
func (c *Connection) OnTick() {
	if c.state == StateClosed {
		return
	}
	if c.state == StateLinger {
		c.lingerElapsed += c.cfg.Timer
		if c.lingerElapsed >= 50*c.cfg.RTTimeout {
			c.destroy()
		}
		return
	}
	c.retransmitDue()
}

// retransmitDue walks unacked oldest-first, retransmitting any record whose
// elapsed time has reached the retransmission timeout. Reaching 5
// retransmissions of the same segment abandons the connection to LINGER.
func (c *Connection) retransmitDue() {
	for i := range c.unacked {
		u := &c.unacked[i]
		u.elapsed += c.cfg.Timer
		if u.elapsed < c.cfg.RTTimeout {
			continue
		}
		c.debug("engine:retransmit", slog.Uint64("seqno", uint64(u.seqno)), slog.Int("attempt", u.retransmits+1))
		c.transmit(u.encoded)
		u.elapsed = 0
		u.retransmits++
		if u.retransmits >= 5 {
			c.enterLinger()
			return
		}
	}
}

// enterLinger transitions to LINGER, starting the linger timer from zero,
// whether reached gracefully (peer FIN re-ACKed) or by abandoning an
// unreachable peer.
func (c *Connection) enterLinger() {
	if c.state == StateLinger {
		return
	}
	c.info("engine:enter-linger", slog.String("from", c.state.String()))
	c.state = StateLinger
	c.lingerElapsed = 0
}
