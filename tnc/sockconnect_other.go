//go:build !unix

package tnc

// Stub for platforms without a unix-style non-blocking connect/
// getsockopt(SO_ERROR) pair, grounded on the platform-stub idiom in
// momentics-hioload-ws/reactor/reactor_stub.go: the named-pipe host
// link this emulator targets historically runs on Windows, but the
// raw non-blocking socket half of the Connection Channel is scoped to
// unix in this port. Every DISC-state connect attempt here fails with
// errUnsupportedPlatform, which the worker reports the same way it
// reports any other unexpected connect failure.

import (
	"errors"
	"net"
)

var errUnsupportedPlatform = errors.New("tnc: non-blocking connect is not supported on this platform")

type nonBlockingDial struct{}

func dialNonBlocking(host string, port int) (d *nonBlockingDial, status string, err error) {
	return nil, "", errUnsupportedPlatform
}

func (d *nonBlockingDial) poll() (status string, err error) {
	return "failed", errUnsupportedPlatform
}

func (d *nonBlockingDial) conn() (net.Conn, error) {
	return nil, errUnsupportedPlatform
}

func (d *nonBlockingDial) close() {}

func classifyConnectError(err error) connectErrorClass {
	return connectOther
}
