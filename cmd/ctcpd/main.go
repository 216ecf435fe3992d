// Command ctcpd is a reference driver for the cTCP Connection Engine: it
// pairs two fixed UDP endpoints (no handshake) and pipes a cTCP byte stream
// between stdin/stdout and the network, wiring a protocol engine to a real
// socket with a stdlib-flag CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/soypat/ctcp/engine"
	"github.com/soypat/ctcp/internal"
)

func main() {
	if err := run(); err != nil {
		log.Fatalln("ctcpd:", err)
	}
}

func run() error {
	var (
		flagListen  = ""
		flagRemote  = ""
		flagTick    = 40 * time.Millisecond
		flagRTO     = 200 * time.Millisecond
		flagWindow  = 1440
		flagVerbose = false
		flagRcvBuf  = 0
		flagSndBuf  = 0
	)
	flag.StringVar(&flagListen, "listen", flagListen, "local UDP address to bind, e.g. :7000")
	flag.StringVar(&flagRemote, "remote", flagRemote, "peer UDP address to pair with, e.g. 10.0.0.2:7000")
	flag.DurationVar(&flagTick, "tick", flagTick, "OnTick period")
	flag.DurationVar(&flagRTO, "rto", flagRTO, "retransmission timeout")
	flag.IntVar(&flagWindow, "window", flagWindow, "send/receive window and max segment payload, in bytes")
	flag.BoolVar(&flagVerbose, "v", flagVerbose, "enable debug logging to stderr")
	flag.IntVar(&flagRcvBuf, "rcvbuf", flagRcvBuf, "OS socket receive buffer size in bytes, 0 to leave at system default (linux only)")
	flag.IntVar(&flagSndBuf, "sndbuf", flagSndBuf, "OS socket send buffer size in bytes, 0 to leave at system default (linux only)")
	flag.Parse()

	if flagListen == "" || flagRemote == "" {
		return errors.New("both -listen and -remote are required: cTCP has no handshake, peers must be preconfigured")
	}

	localAddr, err := net.ResolveUDPAddr("udp", flagListen)
	if err != nil {
		return fmt.Errorf("resolving -listen: %w", err)
	}
	remoteAddr, err := net.ResolveUDPAddr("udp", flagRemote)
	if err != nil {
		return fmt.Errorf("resolving -remote: %w", err)
	}
	conn, err := net.DialUDP("udp", localAddr, remoteAddr)
	if err != nil {
		return fmt.Errorf("dialing peer: %w", err)
	}
	defer conn.Close()

	if err := tuneSocketBuffers(conn, flagRcvBuf, flagSndBuf); err != nil {
		return fmt.Errorf("tuning socket buffers: %w", err)
	}

	cfg := engine.Config{
		Timer:      flagTick,
		RTTimeout:  flagRTO,
		SendWindow: uint16(flagWindow),
		RecvWindow: uint16(flagWindow),
		MaxPayload: flagWindow,
	}
	sub := newUDPSubstrate(conn, os.Stdin, os.Stdout)
	c, err := engine.New(sub, cfg)
	if err != nil {
		return fmt.Errorf("constructing connection: %w", err)
	}
	if flagVerbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		c.SetLogger(logger)
		logStartup(logger, localAddr, remoteAddr)
	}

	return driveConnection(c, sub, cfg.Timer)
}

// logStartup records the paired local/remote addresses at startup. IPv4
// addresses are logged as a packed uint64 attr via internal.SlogAddr4,
// avoiding a string allocation on every line; anything else falls back to
// its String() form.
func logStartup(log *slog.Logger, local, remote *net.UDPAddr) {
	attrs := []slog.Attr{}
	if ip4 := local.IP.To4(); ip4 != nil {
		attrs = append(attrs, internal.SlogAddr4("local", (*[4]byte)(ip4)))
	} else {
		attrs = append(attrs, slog.String("local", local.String()))
	}
	if ip4 := remote.IP.To4(); ip4 != nil {
		attrs = append(attrs, internal.SlogAddr4("remote", (*[4]byte)(ip4)))
	} else {
		attrs = append(attrs, slog.String("remote", remote.String()))
	}
	log.LogAttrs(context.Background(), slog.LevelInfo, "ctcpd:startup", attrs...)
}

// driveConnection runs the three event sources an engine.Connection needs
// in a real process: a read loop feeding OnSegment, a periodic ticker
// feeding OnTick, and the stdin reader feeding OnInput, all converging on
// the connection through plain goroutines and channels rather than a
// reactor framework.
func driveConnection(c *engine.Connection, sub *udpSubstrate, tick time.Duration) error {
	segments := make(chan []byte, 64)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 65535)
		backoff := internal.NewBackoff(internal.BackoffTCPConn)
		for {
			n, err := sub.conn.Read(buf)
			if err != nil {
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Temporary() {
					backoff.Miss()
					continue
				}
				readErr <- err
				close(segments)
				return
			}
			backoff.Hit()
			cp := make([]byte, n)
			copy(cp, buf[:n])
			segments <- cp
		}
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	inputPoke := time.NewTicker(tick)
	defer inputPoke.Stop()

	for {
		select {
		case seg, ok := <-segments:
			if !ok {
				return <-readErr
			}
			c.OnSegment(seg)
		case <-ticker.C:
			c.OnTick()
		case <-inputPoke.C:
			// stdin has no readiness notification wired here; poll it on
			// the same cadence as the retransmission timer.
			c.OnInput()
		}
		if c.State().IsClosed() {
			return nil
		}
	}
}
