package main

import (
	"io"
	"net"
)

// udpSubstrate adapts a connected *net.UDPConn plus stdin/stdout to
// [github.com/soypat/ctcp/substrate.Substrate]: a thin wrapper around a
// real OS socket.
type udpSubstrate struct {
	conn *net.UDPConn
	in   io.Reader
	out  io.Writer
}

func newUDPSubstrate(conn *net.UDPConn, in io.Reader, out io.Writer) *udpSubstrate {
	return &udpSubstrate{conn: conn, in: in, out: out}
}

func (s *udpSubstrate) Send(b []byte) (int, error) { return s.conn.Write(b) }

func (s *udpSubstrate) AppRead(buf []byte) (int, error) { return s.in.Read(buf) }

func (s *udpSubstrate) AppWrite(b []byte) (int, error) {
	if b == nil {
		return 0, nil // EOF signal: nothing further to write downstream.
	}
	return s.out.Write(b)
}

// AppBufSpace reports unlimited space: stdout never exerts the
// backpressure a fixed-size application output buffer would.
func (s *udpSubstrate) AppBufSpace() int { return 1 << 30 }

func (s *udpSubstrate) Remove() { s.conn.Close() }

func (s *udpSubstrate) EndSession() {}
