package tnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Monitor_filterGatesFrameClasses(t *testing.T) {
	m := NewMonitor(NewLogger(0))
	src, dst := NewCallsign([]byte("N0CALL")), NewCallsign([]byte("N1CALL"))

	// Default filter "N" admits nothing.
	m.Log("SABM", src, dst, 0, 0, nil)
	_, ok := m.Poll("")
	assert.False(t, ok)

	m.FilterSet([]byte("U"))
	m.Log("SABM", src, dst, 0, 0, nil)
	ev, ok := m.Poll("")
	require.True(t, ok)
	assert.Equal(t, EventMonHdr, ev.Kind)
	assert.Contains(t, string(ev.Payload), "fm N0CALL to N1CALL ctl SABM+")

	// Class S (RR) must not pass a U-only filter.
	m.Log("RR", src, dst, 0, 1, nil)
	_, ok = m.Poll("")
	assert.False(t, ok)
}

func Test_Monitor_iFrameEmitsHeaderInfoPair(t *testing.T) {
	m := NewMonitor(NewLogger(0))
	m.FilterSet([]byte("I"))
	src, dst := NewCallsign([]byte("N0CALL")), NewCallsign([]byte("N1CALL"))

	m.Log("I", src, dst, 3, 4, []byte("hello\r\nworld"))

	hdr, ok := m.Poll("1")
	require.True(t, ok)
	assert.Equal(t, EventMonHdrInfo, hdr.Kind)
	assert.Contains(t, string(hdr.Payload), "ctl I43 pid F0+")

	info, ok := m.Poll("0")
	require.True(t, ok)
	assert.Equal(t, EventMonInfo, info.Kind)
	assert.Equal(t, "hello\rworld", string(info.Payload))
}

func Test_Monitor_iFrameBound(t *testing.T) {
	m := NewMonitor(NewLogger(0))
	m.FilterSet([]byte("I"))
	src, dst := NewCallsign([]byte("A")), NewCallsign([]byte("B"))

	for i := 0; i < MaxMonitorMsgs; i++ {
		m.Log("I", src, dst, 0, 1, []byte("x"))
	}
	full := m.queue.Len()

	// One more I push beyond the bound must be dropped silently.
	m.Log("I", src, dst, 0, 1, []byte("x"))
	assert.Equal(t, full, m.queue.Len())
}

func Test_Monitor_stats(t *testing.T) {
	m := NewMonitor(NewLogger(0))
	m.FilterSet([]byte("IU"))
	src, dst := NewCallsign([]byte("A")), NewCallsign([]byte("B"))

	m.Log("SABM", src, dst, 0, 0, nil)
	m.Log("I", src, dst, 0, 1, []byte("hi"))

	assert.Equal(t, "2 1", string(m.Stats()))
}

func Test_Monitor_pollKindSelectors(t *testing.T) {
	m := NewMonitor(NewLogger(0))
	m.FilterSet([]byte("IU"))
	src, dst := NewCallsign([]byte("A")), NewCallsign([]byte("B"))

	m.Log("SABM", src, dst, 0, 0, nil)
	m.Log("I", src, dst, 0, 1, []byte("hi"))

	ev, ok := m.Poll("0")
	require.True(t, ok)
	assert.Equal(t, EventMonInfo, ev.Kind)

	ev, ok = m.Poll("1")
	require.True(t, ok)
	assert.Equal(t, EventMonHdr, ev.Kind)

	ev, ok = m.Poll("1")
	require.True(t, ok)
	assert.Equal(t, EventMonHdrInfo, ev.Kind)
}
