// Package substratetest provides in-memory [substrate.Substrate]
// implementations for exercising the engine without a real datagram
// transport or OS socket, wiring two endpoints directly together instead of
// reaching for a mocking library. The application-side buffers use
// [internal.Ring] so AppBufSpace reports genuine, boundable headroom
// instead of an unbounded bytes.Buffer; fault injection draws on a seedable
// xorshift PRNG ([internal.Prand32]) instead of pulling in math/rand for a
// test helper.
package substratetest

import (
	"io"

	"github.com/soypat/ctcp/internal"
)

// Link is a lossy, reordering, duplicating in-memory datagram channel
// connecting exactly two peers. Frames handed to Enqueue are queued; a test
// drains them with Deliver, which applies the configured fault injection
// before calling the peer's OnSegment.
type Link struct {
	Seed uint32 // xorshift PRNG seed; 0 disables Reorder, while drop/duplicate rolls then start from state 1

	DropPermil      uint32 // per-mille (parts per 1000) chance a frame is dropped outright
	DuplicatePermil uint32 // per-mille chance a frame is delivered twice
	Reorder         bool   // shuffle queued frames before delivery

	rngState uint32
	queue    [][]byte
}

// Enqueue appends a copy of b to the link's pending queue.
func (l *Link) Enqueue(b []byte) {
	cp := make([]byte, len(b))
	copy(cp, b)
	l.queue = append(l.queue, cp)
}

// Deliver hands every queued frame to onSegment, applying drop/duplicate/
// reorder fault injection, then empties the queue.
func (l *Link) Deliver(onSegment func([]byte)) {
	frames := l.queue
	l.queue = nil
	if l.Reorder && l.Seed != 0 && len(frames) > 1 {
		l.shuffle(frames)
	}
	for _, f := range frames {
		if l.DropPermil > 0 && l.roll() < l.DropPermil {
			continue
		}
		onSegment(f)
		if l.DuplicatePermil > 0 && l.roll() < l.DuplicatePermil {
			onSegment(f)
		}
	}
}

// Pending reports the number of frames currently queued.
func (l *Link) Pending() int { return len(l.queue) }

// roll returns a pseudo-random value in [0, 1000), advancing the PRNG state
// from Seed on first use.
func (l *Link) roll() uint32 {
	if l.rngState == 0 {
		l.rngState = l.Seed
		if l.rngState == 0 {
			l.rngState = 1
		}
	}
	l.rngState = internal.Prand32(l.rngState)
	return l.rngState % 1000
}

// shuffle performs a Fisher-Yates shuffle driven by the link's PRNG.
func (l *Link) shuffle(frames [][]byte) {
	for i := len(frames) - 1; i > 0; i-- {
		j := int(l.roll()) % (i + 1)
		frames[i], frames[j] = frames[j], frames[i]
	}
}

// Endpoint is a [substrate.Substrate] backed by a [Link] for the wire side
// and a pair of [internal.Ring] buffers for the application side: AppOut
// accumulates everything the engine delivers to the application, AppIn is
// drained as simulated application input.
type Endpoint struct {
	Out *Link // link this endpoint sends on

	AppIn  internal.Ring // bytes the application has queued to send
	AppOut internal.Ring // bytes the engine has delivered to the application

	removed  bool
	ended    bool
	eofAfter bool // AppIn exhausted and caller wants io.EOF surfaced
}

// NewEndpoint returns an Endpoint with generously sized application buffers
// on both ends; tests that want to exercise backpressure should construct
// Endpoint directly with smaller AppIn/AppOut.Buf.
func NewEndpoint(out *Link) *Endpoint {
	return &Endpoint{
		Out:    out,
		AppIn:  internal.Ring{Buf: make([]byte, 1<<16)},
		AppOut: internal.Ring{Buf: make([]byte, 1<<16)},
	}
}

// Send queues b on the outbound link.
func (e *Endpoint) Send(b []byte) (int, error) {
	if e.removed {
		return 0, io.ErrClosedPipe
	}
	e.Out.Enqueue(b)
	return len(b), nil
}

// AppRead reads from AppIn, the simulated local application's pending
// output, reporting io.EOF once AppIn is empty and EOF has been armed with
// CloseInput.
func (e *Endpoint) AppRead(buf []byte) (int, error) {
	n, err := e.AppIn.Read(buf)
	if err == io.EOF {
		if e.eofAfter {
			return 0, io.EOF
		}
		return 0, nil // no data yet, but not EOF until CloseInput is called
	}
	return n, err
}

// CloseInput arms AppRead to return io.EOF once AppIn has been drained,
// simulating local application input reaching its end.
func (e *Endpoint) CloseInput() { e.eofAfter = true }

// AppWrite appends b to AppOut, the record of everything delivered to the
// simulated application. A nil b (EOF signal) is recorded as a zero-length
// write and does not otherwise mutate AppOut.
func (e *Endpoint) AppWrite(b []byte) (int, error) {
	if b == nil {
		return 0, nil
	}
	return e.AppOut.Write(b)
}

// AppBufSpace returns the remaining free space in AppOut, the downstream
// application buffer the engine is writing into.
func (e *Endpoint) AppBufSpace() int { return e.AppOut.Free() }

// AppOutLen reports how many bytes are currently buffered in AppOut,
// waiting to be read out by a test.
func (e *Endpoint) AppOutLen() int { return e.AppOut.Buffered() }

// AppOutString returns a copy of everything currently buffered in AppOut,
// without consuming it, for test assertions.
func (e *Endpoint) AppOutString() string {
	buf := make([]byte, e.AppOut.Buffered())
	e.AppOut.ReadPeek(buf)
	return string(buf)
}

// Remove marks the endpoint as torn down; subsequent Send calls fail.
func (e *Endpoint) Remove() { e.removed = true }

// EndSession marks the endpoint's session as ended for inspection by tests.
func (e *Endpoint) EndSession() { e.ended = true }

// Removed reports whether Remove has been called.
func (e *Endpoint) Removed() bool { return e.removed }

// Ended reports whether EndSession has been called.
func (e *Endpoint) Ended() bool { return e.ended }
