package tnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChannel(t *testing.T) *Channel {
	t.Helper()
	monitor := NewMonitor(NewLogger(0))
	stations := NewStationDirectory(t.TempDir()+"/stations.txt", NewLogger(0))
	return NewChannel(1, monitor, stations, NewLogger(0))
}

func Test_Channel_defaultCallsign(t *testing.T) {
	c := newTestChannel(t)
	assert.Equal(t, DefaultCallsign, c.CallsignGet().String())
}

func Test_Channel_callsignSetGet(t *testing.T) {
	c := newTestChannel(t)
	c.CallsignSet(NewCallsign([]byte("n0call-5")))
	assert.Equal(t, "N0CALL-5", c.CallsignGet().String())
}

func Test_Channel_connectSetsRemote(t *testing.T) {
	c := newTestChannel(t)
	_, ok := c.RemoteGet()
	assert.False(t, ok)

	c.Connect(NewCallsign([]byte("remote-1")))
	remote, ok := c.RemoteGet()
	require.True(t, ok)
	assert.Equal(t, "REMOTE-1", remote.String())
}

func Test_Channel_disconnectWhenAlreadyDiscIsNoop(t *testing.T) {
	c := newTestChannel(t)
	c.Disconnect()
	_, ok := c.Poll("")
	assert.False(t, ok)
}

func Test_Channel_disconnectEmitsStatusAndClearsRemote(t *testing.T) {
	c := newTestChannel(t)
	c.Connect(NewCallsign([]byte("remote-1")))
	c.mu.Lock()
	c.state = StateConn
	c.mu.Unlock()

	c.Disconnect()

	_, ok := c.RemoteGet()
	assert.False(t, ok)

	ev, ok := c.Poll("1")
	require.True(t, ok)
	assert.Contains(t, string(ev.Payload), "DISCONNECTED fm REMOTE-1")
}

func Test_Channel_transmitExtendsBareCRtoCRLF(t *testing.T) {
	c := newTestChannel(t)
	c.Transmit([]byte("hello\r"))
	assert.Equal(t, "hello\r\n", string(c.txBuffer))
}

func Test_Channel_transmitLeavesExistingCRLFAlone(t *testing.T) {
	c := newTestChannel(t)
	c.Transmit([]byte("hello\r\n"))
	assert.Equal(t, "hello\r\n", string(c.txBuffer))
}

func Test_Channel_linkStatusSextet(t *testing.T) {
	c := newTestChannel(t)
	c.Transmit(make([]byte, MaxPktLen+1))

	status := c.LinkStatus()
	assert.Equal(t, "0 0 2 0 0 0", string(status))
}

func Test_Channel_pollRoutesByKind(t *testing.T) {
	c := newTestChannel(t)
	c.mu.Lock()
	c.queue.Push(Event{Kind: EventLinkStatus, Payload: []byte("status")})
	c.queue.Push(Event{Kind: EventInfo, Payload: []byte("info")})
	c.mu.Unlock()

	ev, ok := c.Poll("0")
	require.True(t, ok)
	assert.Equal(t, EventInfo, ev.Kind)

	ev, ok = c.Poll("1")
	require.True(t, ok)
	assert.Equal(t, EventLinkStatus, ev.Kind)
}

func Test_Channel_incrSeq(t *testing.T) {
	c := newTestChannel(t)
	assert.Equal(t, 0, c.seq)
	assert.Equal(t, 1, c.nxt)

	c.incrSeqLocked()
	assert.Equal(t, 1, c.seq)
	assert.Equal(t, 2, c.nxt)

	for i := 0; i < 7; i++ {
		c.incrSeqLocked()
	}
	assert.Equal(t, 1, c.nxt)
}

func Test_telnetRefuse(t *testing.T) {
	in := []byte{0xFF, 0xFB, 0x01, 0xFF, 0xFC, 0x03, 0xFF, 0xFD, 0x18}
	out := telnetRefuse(in)
	require.Len(t, out, len(in))
	assert.Equal(t, byte(0xFE), out[4])
	assert.Equal(t, byte(0xFC), out[7])
	// Bytes that aren't WON'T/DO pass through unchanged.
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[1], out[1])
}
