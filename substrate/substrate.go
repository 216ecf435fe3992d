// Package substrate declares the external collaborator contracts the
// Connection Engine consumes: the datagram transport and the application
// I/O boundary. Neither is implemented here: the engine is written against
// these interfaces without owning the socket, ring buffer, or
// IP-encapsulation details on the other side of them.
package substrate

import "io"

// Substrate is the datagram transport and application I/O boundary for a
// single connection. Every method is treated as non-blocking by the engine
// and is invoked synchronously from within an engine event handler;
// Substrate implementations must not call back into the engine
// re-entrantly.
type Substrate interface {
	// Send transmits one encoded segment as a single datagram. A negative
	// return or non-nil error indicates a transient send failure; the
	// engine logs it and relies on the retransmission timer to retry.
	Send(b []byte) (int, error)

	// AppRead fills buf with bytes available from the local application
	// and returns the byte count. A return of (0, nil) means no data is
	// currently available (not an error); a return of (0, io.EOF) means
	// the application has closed its input for good.
	AppRead(buf []byte) (int, error)

	// AppWrite delivers bytes to the application's output. An error is
	// fatal for the connection.
	AppWrite(b []byte) (int, error)

	// AppBufSpace reports the free bytes in the downstream application
	// output buffer, consulted by deliver() before emitting payload.
	AppBufSpace() int

	// Remove releases substrate-side resources associated with this
	// connection (sockets, timers, registry entries external to this
	// module). Called exactly once, when the connection reaches CLOSED.
	Remove()

	// EndSession signals a program-level teardown request, e.g. to stop
	// accepting new connections once the last one closes. Optional: a
	// substrate that does not need this may implement it as a no-op.
	EndSession()
}

// ErrEOF is returned by an AppRead implementation to signal local
// application input has been closed for good; re-exported for callers that
// want to compare without importing io directly.
var ErrEOF = io.EOF
