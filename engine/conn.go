// Package engine implements the cTCP Connection Engine: the per-connection
// state machine coordinating framing, retransmission, reassembly, flow
// control and FIN/ACK teardown of the cTCP byte-stream protocol.
//
// The engine is event-driven and never blocks: every exported On* method
// runs to completion and returns. Its split between a connection state
// machine and a substrate-facing handler mirrors a typical TCP
// control-block/handler split, generalized from RFC 9293's full
// handshake-bearing TCP to simplified, handshake-free cTCP.
package engine

import (
	"log/slog"
	"time"

	"github.com/soypat/ctcp/internal/xlog"
	"github.com/soypat/ctcp/substrate"
	"github.com/soypat/ctcp/wire"
)

// Connection is a single cTCP connection's protocol engine: send path
// (sequencing, unacked table, retransmission), receive path (reassembly,
// flow control) and connection state machine.
//
// A zero Connection is not ready to use; construct one with [New].
type Connection struct {
	xlog.Logger

	sub substrate.Substrate
	cfg Config

	state State

	seqno uint32 // next sequence number the local side will assign
	ackno uint32 // next sequence number expected from the peer

	bytesOutstanding uint16
	bytesBuffered    uint16

	unacked []unackedRecord
	reasm   []reasmRecord

	lingerElapsed time.Duration
	finSeqnoSent  uint32
	finSent       bool

	scratch []byte // per-connection app-read/encode scratch buffer
}

// New creates a Connection in [StateDataTransfer] with initial sequence
// number 1 on both sides: the peers are assumed paired at start, with no
// connection-establishment handshake.
func New(sub substrate.Substrate, cfg Config) (*Connection, error) {
	if sub == nil {
		return nil, errNilSubstrate
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	c := &Connection{
		sub:     sub,
		cfg:     cfg,
		state:   StateDataTransfer,
		seqno:   1,
		ackno:   1,
		scratch: make([]byte, cfg.MaxPayload),
	}
	return c, nil
}

// SetLogger attaches a structured logger to the connection; a nil logger
// (the zero value) silently disables logging.
func (c *Connection) SetLogger(log *slog.Logger) { c.Logger.SetLogger(log) }

// State returns the connection's current state.
func (c *Connection) State() State { return c.state }

// Seqno returns the next sequence number the local side will assign.
func (c *Connection) Seqno() uint32 { return c.seqno }

// Ackno returns the next sequence number expected from the peer.
func (c *Connection) Ackno() uint32 { return c.ackno }

// BytesOutstanding returns the sum of payload lengths of unacked sent
// records.
func (c *Connection) BytesOutstanding() uint16 { return c.bytesOutstanding }

// BytesBuffered returns the sum of payload lengths of received-but-not-yet
// -delivered segments held in the reassembly buffer.
func (c *Connection) BytesBuffered() uint16 { return c.bytesBuffered }

// destroy transitions the connection to CLOSED and releases the substrate.
// A [Registry] driving this connection notices the CLOSED state on its next
// Tick and compacts the slot away; destroy does not reach into a registry
// itself, since a bare Connection may not be registered at all.
func (c *Connection) destroy() {
	if c.state == StateClosed {
		return
	}
	c.debug("engine:destroy", slog.String("state", c.state.String()))
	c.state = StateClosed
	c.unacked = nil
	c.reasm = nil
	c.sub.Remove()
}

// encodeSegment encodes seg into a freshly allocated buffer sized exactly
// to seg.Len(), ready to be stored in the unacked set for retransmission
// without re-encoding.
func encodeSegment(seg *wire.Segment) []byte {
	buf := make([]byte, seg.Len())
	wire.Encode(buf, seg)
	return buf
}
