package tnc

import (
	"errors"
	"io"
	"net"
	"syscall"
	"time"
)

// readPollTimeout bounds each non-blocking receive attempt. It must
// stay well under channelTickInterval so a CONN-state tick never
// blocks the worker.
const readPollTimeout = 2 * time.Millisecond

// writePollTimeout bounds each send attempt the same way; a peer that
// stops draining must stall the tx_buffer, not the worker.
const writePollTimeout = 2 * time.Millisecond

// errWouldBlock stands in for channel.py's BlockingIOError: no data
// was available within one tick.
var errWouldBlock = errors.New("tnc: read would block")

// syscallConnReset is checked with errors.Is against whatever the net
// package wraps a reset error in; syscall.ECONNRESET is defined with
// the same numeric meaning on every GOOS Go supports; no build tag is
// needed to reference it portably.
var syscallConnReset = syscall.ECONNRESET

// readNonBlocking approximates a non-blocking recv(2) on top of a
// net.Conn by arming a short read deadline before every attempt:
// Go's net.Conn has no "would block" read mode of its own, so a
// deadline is the idiomatic substitute (used the same way by several
// of the example repos' reactor/poller code). A timeout is reported
// as errWouldBlock; peer-closed (read of zero bytes/EOF, no error) is
// reported as (0, nil) so callers can't mistake it for "nothing
// happened this tick". An error from arming the deadline is returned
// as is without attempting the read (net.Pipe, for one, refuses a
// deadline once either end is closed).
func readNonBlocking(conn net.Conn, buf []byte) (int, error) {
	if err := conn.SetReadDeadline(time.Now().Add(readPollTimeout)); err != nil {
		return 0, err
	}

	n, err := conn.Read(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, errWouldBlock
		}
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return n, err
	}

	return n, nil
}

// writeNonBlocking attempts one bounded send. A deadline expiry is not
// an error: whatever the kernel accepted before the timeout is
// reported as n, and the caller retries the rest on a later tick.
func writeNonBlocking(conn net.Conn, buf []byte) (int, error) {
	if err := conn.SetWriteDeadline(time.Now().Add(writePollTimeout)); err != nil {
		return 0, err
	}

	n, err := conn.Write(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return n, nil
		}
	}
	return n, err
}
