package engine

import "errors"

// errNilSubstrate is returned by [New] when given a nil substrate. No error
// from segment processing or retransmission ever reaches the caller of
// OnInput/OnSegment/OnDrain/OnTick: those absorb every failure mode
// internally and surface it only as a dropped segment, a log line, or a
// state transition.
var errNilSubstrate = errors.New("engine: nil substrate")

// RejectError distinguishes "this segment is refused but the connection
// survives" from a fatal error. OnSegment never returns an error to its
// caller; RejectError values are only ever passed to the connection's
// logger, to classify why a segment was dropped.
type RejectError struct{ reason string }

func newRejectErr(reason string) *RejectError { return &RejectError{reason: reason} }

func (e *RejectError) Error() string { return "reject segment: " + e.reason }

var (
	errRejectStaleDup   = newRejectErr("stale duplicate seqno")
	errRejectRecvWindow = newRejectErr("receive window exceeded")
)
