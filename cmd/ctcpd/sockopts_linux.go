//go:build !tinygo && linux

package main

import (
	"net"

	"golang.org/x/sys/unix"
)

// tuneSocketBuffers applies SO_RCVBUF/SO_SNDBUF to the dialed UDP socket
// when requested, reaching past net for raw socket control on Linux.
func tuneSocketBuffers(conn *net.UDPConn, rcvBuf, sndBuf int) error {
	if rcvBuf == 0 && sndBuf == 0 {
		return nil
	}
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var setErr error
	err = raw.Control(func(fd uintptr) {
		if rcvBuf > 0 {
			if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, rcvBuf); e != nil {
				setErr = e
				return
			}
		}
		if sndBuf > 0 {
			if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, sndBuf); e != nil {
				setErr = e
				return
			}
		}
	})
	if err != nil {
		return err
	}
	return setErr
}
