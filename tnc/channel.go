package tnc

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// channelTickInterval is the Connection Channel worker's tick period,
// grounded on channel.py's sleep(0.01).
const channelTickInterval = 10 * time.Millisecond

// Channel is a Connection Channel: it owns a non-blocking TCP socket,
// a transmit byte buffer, a unified receive queue of Events, and the
// {DISC, SETUP, CONN} state machine of spec.md §4.3. One worker
// goroutine per Channel drives the state machine; every other method
// may be called concurrently from the host-link reader (see spec.md
// §5), so every field the worker touches is guarded by mu.
type Channel struct {
	mu sync.Mutex

	id        byte
	state     ChannelState
	mycall    Callsign
	remote    Callsign // meaningful only while hasRemote is true
	hasRemote bool

	txBuffer []byte
	queue    *eventQueue
	seq, nxt int

	conn net.Conn
	dial *nonBlockingDial

	monitor  *Monitor
	stations *StationDirectory
	logger   *Logger
}

// NewChannel builds an idle Connection Channel with the given id and
// default callsign, wired to the shared Monitor and Station
// Directory.
func NewChannel(id byte, monitor *Monitor, stations *StationDirectory, logger *Logger) *Channel {
	return &Channel{
		id:       id,
		state:    StateDisc,
		mycall:   NewCallsign([]byte(DefaultCallsign)),
		queue:    newEventQueue(),
		nxt:      1,
		monitor:  monitor,
		stations: stations,
		logger:   logger,
	}
}

// Connect sets remote to the upper-cased callsign, causing the worker
// to initiate a connection on its next tick. There is no immediate
// error even if already connected; reconnect behavior is entirely
// worker-driven (spec.md §4.3).
func (c *Channel) Connect(callsign Callsign) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remote = NewCallsign(callsign)
	c.hasRemote = true
}

// RemoteGet returns the current remote callsign, or ok=false if
// unset.
func (c *Channel) RemoteGet() (Callsign, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remote, c.hasRemote
}

// Disconnect emits the DISC→UA monitor pair and a LINK_STATUS event,
// and clears remote, if the channel is not already disconnected. The
// worker tears the socket down on its next tick.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnectLocked()
}

func (c *Channel) disconnectLocked() {
	if c.state == StateDisc {
		return
	}
	c.monitor.Log("DISC", c.mycall, c.remote, 0, 0, nil)
	c.monitor.Log("UA", c.remote, c.mycall, 0, 0, nil)
	c.queue.Push(Event{Kind: EventLinkStatus, Payload: []byte(fmt.Sprintf("DISCONNECTED fm %s", c.remote))})
	c.hasRemote = false
}

// Transmit appends data to tx_buffer. A trailing bare CR is extended
// with LF for hosts that need CRLF (spec.md §4.3; grounded on
// channel.py's Channel.tx).
func (c *Channel) Transmit(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if bytes.HasSuffix(data, []byte("\r")) && !bytes.HasSuffix(data, []byte("\r\n")) {
		data = append(append([]byte{}, data...), '\n')
	}
	c.txBuffer = append(c.txBuffer, data...)
}

// Poll dequeues and returns the oldest matching Event. kind selects a
// filter: "0" for INFO only, "1" for LINK_STATUS only, "" for any.
func (c *Channel) Poll(kind string) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case "0":
		return c.queue.Poll(func(e Event) bool { return e.Kind == EventInfo })
	case "1":
		return c.queue.Poll(func(e Event) bool { return e.Kind == EventLinkStatus })
	default:
		return c.queue.Poll(nil)
	}
}

// LinkStatus returns the six-field sextet spec.md §4.3 describes:
// (status_count, info_count, ceil(tx_buffer/MAX_PKTLEN), 0, 0,
// state_code).
func (c *Channel) LinkStatus() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	statusCount := c.queue.Count(func(e Event) bool { return e.Kind == EventLinkStatus })
	infoCount := c.queue.Count(func(e Event) bool { return e.Kind == EventInfo })
	frames := ceilDiv(len(c.txBuffer), MaxPktLen)

	return []byte(fmt.Sprintf("%d %d %d %d %d %d",
		statusCount, infoCount, frames, 0, 0, int(c.state.linkState())))
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

// CallsignGet/Set control mycall.
func (c *Channel) CallsignGet() Callsign {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mycall
}

func (c *Channel) CallsignSet(call Callsign) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mycall = NewCallsign(call)
}

// incrSeqLocked advances (seq, nxt) the way channel.py's _incr_seq
// does: seq becomes the previous nxt, nxt becomes (seq+1) mod 8.
func (c *Channel) incrSeqLocked() {
	c.seq = c.nxt
	c.nxt = (c.seq + 1) % 8
}

// run is the Connection Channel worker loop: it ticks roughly every
// 10ms until stop is closed, driving the {DISC, SETUP, CONN} state
// machine (spec.md §4.3, §5).
func (c *Channel) run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		c.tick()
		sleepTick(channelTickInterval)
	}
}

func (c *Channel) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateDisc:
		c.tickDiscLocked()
	case StateSetup:
		c.tickSetupLocked()
	case StateConn:
		c.tickConnLocked()
	}

	if !c.hasRemote {
		c.state = StateDisc
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		if c.dial != nil {
			c.dial.close()
			c.dial = nil
		}
	}
}

func (c *Channel) tickDiscLocked() {
	if !c.hasRemote {
		return
	}

	host, port, ok := c.stations.Resolve(c.remote)
	if !ok {
		resolveErr := fmt.Errorf("%w: %s", errUnknownStation, c.remote)
		c.logger.Infof("channel %d: %v", c.id, resolveErr)
		c.queue.Push(Event{Kind: EventLinkStatus,
			Payload: []byte(fmt.Sprintf("LINK FAILURE with %s: Unknown station", c.remote))})
		c.hasRemote = false
		return
	}

	dial, status, err := dialNonBlocking(host, port)
	c.monitor.Log("SABM", c.mycall, c.remote, 0, 0, nil)

	switch {
	case err != nil && errors.Is(err, errDomainResolution):
		c.queue.Push(Event{Kind: EventLinkStatus,
			Payload: []byte(fmt.Sprintf("LINK FAILURE with %s: Domain resolution failed", c.remote))})
		c.hasRemote = false

	case err != nil:
		c.logger.Errorf("channel %d: unexpected connect error for %s: %v", c.id, c.remote, err)
		c.monitor.Log("DM", c.remote, c.mycall, 0, 0, nil)
		c.queue.Push(Event{Kind: EventLinkStatus,
			Payload: []byte(fmt.Sprintf("LINK FAILURE with %s: See terminal output", c.remote))})
		c.hasRemote = false

	case status == "connected":
		c.finishConnectLocked(dial)

	default: // "pending"
		c.dial = dial
		c.state = StateSetup
	}
}

func (c *Channel) tickSetupLocked() {
	status, err := c.dial.poll()

	switch status {
	case "pending":
		// Remain in SETUP. Per spec.md §9's resolved Open Question,
		// this is an assignment (c.state already holds StateSetup),
		// not the source's latent self-comparison bug.
		c.state = StateSetup

	case "connected":
		c.finishConnectLocked(c.dial)

	default: // "failed"
		switch classifyConnectError(err) {
		case connectRefused:
			c.monitor.Log("DM", c.remote, c.mycall, 0, 0, nil)
			c.queue.Push(Event{Kind: EventLinkStatus,
				Payload: []byte(fmt.Sprintf("BUSY fm %s", c.remote))})
		case connectTimedOut:
			c.monitor.Log("DM", c.mycall, c.remote, 0, 0, nil)
			c.queue.Push(Event{Kind: EventLinkStatus,
				Payload: []byte(fmt.Sprintf("LINK FAILURE with %s", c.remote))})
		default:
			c.logger.Errorf("channel %d: socket error %v while connecting to %s", c.id, err, c.remote)
			c.monitor.Log("DM", c.remote, c.mycall, 0, 0, nil)
			c.queue.Push(Event{Kind: EventLinkStatus,
				Payload: []byte(fmt.Sprintf("LINK FAILURE with %s", c.remote))})
		}
		c.hasRemote = false
	}
}

// finishConnectLocked adopts a completed dial into a net.Conn and
// transitions to CONN. A failure here (vanishingly rare — the kernel
// already told us the connect succeeded) is treated as any other
// unexpected SETUP failure.
func (c *Channel) finishConnectLocked(dial *nonBlockingDial) {
	conn, err := dial.conn()
	if err != nil {
		c.logger.Errorf("channel %d: failed to adopt connected socket for %s: %v", c.id, c.remote, err)
		c.monitor.Log("DM", c.remote, c.mycall, 0, 0, nil)
		c.queue.Push(Event{Kind: EventLinkStatus,
			Payload: []byte(fmt.Sprintf("LINK FAILURE with %s", c.remote))})
		c.hasRemote = false
		return
	}

	c.conn = conn
	c.dial = nil
	c.state = StateConn
	c.monitor.Log("UA", c.remote, c.mycall, 0, 0, nil)
	c.queue.Push(Event{Kind: EventLinkStatus,
		Payload: []byte(fmt.Sprintf("CONNECTED to %s via Telnet", c.remote))})
}

func (c *Channel) tickConnLocked() {
	if len(c.txBuffer) > 0 {
		c.socketTxLocked()
	}
	// RX runs even when TX just hit a reset: the socket stays open
	// until the end of the tick, so a frame or peer DISC that arrived
	// concurrently with the fault can still be observed.
	if c.queue.Count(func(e Event) bool { return e.Kind == EventInfo }) < MaxIMsgs {
		c.socketRxLocked()
	}
}

func (c *Channel) socketTxLocked() {
	chunk := c.txBuffer
	if len(chunk) > MaxPktLen {
		chunk = chunk[:MaxPktLen]
	}

	n, err := writeNonBlocking(c.conn, chunk)
	if err != nil && errors.Is(err, syscallConnReset) {
		c.resetLocked()
		return
	}
	if n <= 0 {
		return
	}

	c.monitor.Log("I", c.mycall, c.remote, c.seq, c.nxt, chunk[:n])
	c.monitor.Log("RR", c.remote, c.mycall, c.seq, c.nxt, nil)
	c.incrSeqLocked()
	c.txBuffer = c.txBuffer[n:]
}

func (c *Channel) socketRxLocked() {
	buf := make([]byte, MaxPktLen)
	n, err := readNonBlocking(c.conn, buf)

	switch {
	case err != nil && errors.Is(err, errWouldBlock):
		return

	case err != nil && errors.Is(err, syscallConnReset):
		c.resetLocked()

	case n == 0:
		// Peer closed the connection (empty read, no error).
		c.monitor.Log("DISC", c.remote, c.mycall, 0, 0, nil)
		c.monitor.Log("UA", c.mycall, c.remote, 0, 0, nil)
		c.queue.Push(Event{Kind: EventLinkStatus,
			Payload: []byte(fmt.Sprintf("DISCONNECTED fm %s", c.remote))})
		c.hasRemote = false

	case buf[0] == 0xFF:
		// Telnet negotiation; refuse unconditionally and do not
		// enqueue an INFO event (spec.md §4.3.1).
		c.conn.Write(telnetRefuse(buf[:n]))

	default:
		data := append([]byte{}, buf[:n]...)
		c.monitor.Log("I", c.remote, c.mycall, c.seq, c.nxt, data)
		c.monitor.Log("RR", c.mycall, c.remote, c.seq, c.nxt, nil)
		c.incrSeqLocked()
		c.queue.Push(Event{Kind: EventInfo, Payload: data})
	}
}

func (c *Channel) resetLocked() {
	c.monitor.Log("DM", c.remote, c.mycall, 0, 0, nil)
	c.queue.Push(Event{Kind: EventLinkStatus,
		Payload: []byte(fmt.Sprintf("LINK RESET fm %s", c.remote))})
	c.hasRemote = false
}

// telnetRefuse rewrites a Telnet IAC negotiation into a blanket
// refusal: WON'T→DON'T (0xFC→0xFE), DO→WON'T (0xFD→0xFC). No state is
// kept; the rewrite is unconditional (spec.md §4.3.1).
func telnetRefuse(options []byte) []byte {
	out := make([]byte, len(options))
	for i, b := range options {
		switch b {
		case 0xFC:
			out[i] = 0xFE
		case 0xFD:
			out[i] = 0xFC
		default:
			out[i] = b
		}
	}
	return out
}
