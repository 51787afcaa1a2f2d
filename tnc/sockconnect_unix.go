//go:build unix

package tnc

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// nonBlockingDial is a pending outbound TCP connect, driven the same
// way channel.py drives one: a non-blocking BSD socket, an initial
// connect(2) that almost always returns EINPROGRESS, and repeated
// getsockopt(SOL_SOCKET, SO_ERROR) polls from the SETUP-state tick
// until the kernel has a final answer.
type nonBlockingDial struct {
	fd int
	sa unix.Sockaddr
}

// dialNonBlocking resolves host, opens a non-blocking socket, and
// starts connecting to (host, port). status is "connected" or
// "pending" on success (a synchronous connect, typical for loopback,
// counts as "connected" immediately); err is non-nil only for a
// failure that should never be retried — wrapped in
// errDomainResolution when it is a name-resolution failure, bare
// otherwise.
func dialNonBlocking(host string, port int) (d *nonBlockingDial, status string, err error) {
	ips, lookErr := net.LookupHost(host)
	if lookErr != nil {
		return nil, "", fmt.Errorf("%w: %v", errDomainResolution, lookErr)
	}

	ip := net.ParseIP(ips[0])
	if ip == nil {
		return nil, "", fmt.Errorf("%w: invalid address %q", errDomainResolution, ips[0])
	}

	var (
		domain int
		sa     unix.Sockaddr
	)
	if ip4 := ip.To4(); ip4 != nil {
		a := &unix.SockaddrInet4{Port: port}
		copy(a.Addr[:], ip4)
		domain, sa = unix.AF_INET, a
	} else {
		a := &unix.SockaddrInet6{Port: port}
		copy(a.Addr[:], ip.To16())
		domain, sa = unix.AF_INET6, a
	}

	fd, sockErr := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if sockErr != nil {
		return nil, "", sockErr
	}
	if nbErr := unix.SetNonblock(fd, true); nbErr != nil {
		unix.Close(fd)
		return nil, "", nbErr
	}

	dial := &nonBlockingDial{fd: fd, sa: sa}

	connErr := unix.Connect(fd, sa)
	switch {
	case connErr == nil:
		return dial, "connected", nil
	case errors.Is(connErr, unix.EINPROGRESS):
		return dial, "pending", nil
	default:
		unix.Close(fd)
		return nil, "", connErr
	}
}

// poll checks the asynchronous connect status without ever blocking.
// It mirrors channel.py's SETUP-state logic: a zero SO_ERROR is
// ambiguous between "still connecting" and "just finished", so a
// second connect() call on the same socket disambiguates it
// (EISCONN means done, EALREADY/EINPROGRESS means still pending).
func (d *nonBlockingDial) poll() (status string, err error) {
	soErr, gErr := unix.GetsockoptInt(d.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if gErr != nil {
		return "failed", gErr
	}
	if soErr != 0 {
		return "failed", unix.Errno(soErr)
	}

	cErr := unix.Connect(d.fd, d.sa)
	switch {
	case cErr == nil, errors.Is(cErr, unix.EISCONN):
		return "connected", nil
	case errors.Is(cErr, unix.EALREADY), errors.Is(cErr, unix.EINPROGRESS):
		return "pending", nil
	default:
		return "failed", cErr
	}
}

// conn adopts the raw, now-connected socket into a net.Conn so the
// rest of the Connection Channel can use ordinary Read/Write.
func (d *nonBlockingDial) conn() (net.Conn, error) {
	f := os.NewFile(uintptr(d.fd), fmt.Sprintf("tnc-conn-%d", d.fd))
	c, err := net.FileConn(f)
	f.Close() // net.FileConn dups the descriptor; this closes our copy.
	return c, err
}

// close abandons a dial that never reached conn().
func (d *nonBlockingDial) close() {
	unix.Close(d.fd)
}

func classifyConnectError(err error) connectErrorClass {
	switch {
	case errors.Is(err, unix.ECONNREFUSED):
		return connectRefused
	case errors.Is(err, unix.ETIMEDOUT):
		return connectTimedOut
	default:
		return connectOther
	}
}
