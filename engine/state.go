package engine

// State is the connection state machine's current state.
type State uint8

const (
	// StateDataTransfer is the steady state: both peers may send and
	// receive data. Every connection begins here: peers are paired at
	// start, there is no handshake.
	StateDataTransfer State = iota // DATA_TRANSFER
	// StateFinSent is entered after the local application signals EOF and
	// our FIN has been queued/sent; we're waiting for the peer's ACK of it.
	StateFinSent // FIN_SENT
	// StateWaitLastFin is entered once the peer has ACKed our FIN; we're
	// waiting for the peer's own FIN to arrive.
	StateWaitLastFin // WAIT_LAST_FIN
	// StateWaitLastAck is entered when the peer's FIN arrived first (while
	// we were still in DATA_TRANSFER); we've sent our own FIN in response
	// and are waiting for it to be ACKed.
	StateWaitLastAck // WAIT_LAST_ACK
	// StateLinger is the post-close grace period: pending connection
	// destruction, but still willing to re-ACK a retransmitted peer FIN.
	StateLinger // LINGER
	// StateClosed is the terminal state. A [Registry] holding the
	// connection drops its slot on the registry's next Tick; until then the
	// closed connection is still returned by Lookup and counted by Len.
	StateClosed // CLOSED
)

func (s State) String() string {
	switch s {
	case StateDataTransfer:
		return "DATA_TRANSFER"
	case StateFinSent:
		return "FIN_SENT"
	case StateWaitLastFin:
		return "WAIT_LAST_FIN"
	case StateWaitLastAck:
		return "WAIT_LAST_ACK"
	case StateLinger:
		return "LINGER"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN_STATE"
	}
}

// IsClosed reports whether the connection has reached its terminal state.
func (s State) IsClosed() bool { return s == StateClosed }

// CanSendData reports whether OnInput is permitted to frame new data
// segments in this state: only DATA_TRANSFER allows it.
func (s State) CanSendData() bool { return s == StateDataTransfer }
