//go:build tinygo || !linux

package main

import "net"

// tuneSocketBuffers is a no-op outside Linux: golang.org/x/sys/unix socket
// option tuning is Linux-specific.
func tuneSocketBuffers(conn *net.UDPConn, rcvBuf, sndBuf int) error {
	return nil
}
