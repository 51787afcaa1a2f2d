package tnc

import (
	"bytes"
	"fmt"
	"sync"
)

// Monitor is channel 0: it holds the monitor filter and a bounded
// FIFO of synthesized AX.25 monitor frames, and accepts log() calls
// from every Connection Channel worker (spec.md §3, §4.2).
type Monitor struct {
	mu sync.Mutex

	filter         []byte
	queue          *eventQueue
	cqCallsign     Callsign
	globalCallsign Callsign

	logger *Logger
}

// NewMonitor builds an idle Monitor with the default filter ("N",
// which admits nothing) and default callsigns.
func NewMonitor(logger *Logger) *Monitor {
	return &Monitor{
		filter:         []byte(DefaultMonitorFilter),
		queue:          newEventQueue(),
		cqCallsign:     NewCallsign([]byte(DefaultCallsign)),
		globalCallsign: NewCallsign([]byte(DefaultCallsign)),
		logger:         logger,
	}
}

// Log synthesizes one or two monitor Events from an AX.25 control
// code and appends them, subject to the filter and MAX_MSGS bound
// (spec.md §4.2). ctl is one of SABM, DISC, UA, DM, RR, I.
func (m *Monitor) Log(ctl string, src, dst Callsign, seq, nxt int, info []byte) {
	var (
		class frameClass
		text  string
	)

	switch ctl {
	case "SABM":
		class, text = classU, fmt.Sprintf("fm %s to %s ctl SABM+", src, dst)
	case "DISC":
		class, text = classU, fmt.Sprintf("fm %s to %s ctl DISC+", src, dst)
	case "UA":
		class, text = classU, fmt.Sprintf("fm %s to %s ctl UA-", src, dst)
	case "DM":
		class, text = classU, fmt.Sprintf("fm %s to %s ctl DM-", src, dst)
	case "RR":
		class, text = classS, fmt.Sprintf("fm %s to %s ctl RR%d-", src, dst, nxt)
	case "I":
		class, text = classI, fmt.Sprintf("fm %s to %s ctl I%d%d pid F0+", src, dst, nxt, seq)
	default:
		m.logger.Warnf("monitor: unknown frame type to monitor: %s", ctl)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !bytes.ContainsRune(m.filter, rune(class)) {
		return
	}

	if class == classI && m.queue.Len() >= MaxMonitorMsgs {
		m.logger.Debugf("monitor: discarded monitor frame, full buffer")
		return
	}

	if ctl == "I" {
		payload := bytes.ReplaceAll(info, []byte("\r\n"), []byte("\r"))
		m.queue.Push(Event{Kind: EventMonHdrInfo, Payload: []byte(text)})
		m.queue.Push(Event{Kind: EventMonInfo, Payload: payload})
	} else {
		m.queue.Push(Event{Kind: EventMonHdr, Payload: []byte(text)})
	}
}

// Poll dequeues and returns the oldest matching Event. kind selects a
// filter: "0" for MON_INFO only, "1" for header kinds only (MON_HDR /
// MON_HDRINFO), "" for any, in chronological order — the same
// semantics as Connection Channel polling (spec.md §4.2).
func (m *Monitor) Poll(kind string) (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch kind {
	case "0":
		return m.queue.Poll(func(e Event) bool { return e.Kind == EventMonInfo })
	case "1":
		return m.queue.Poll(func(e Event) bool {
			return e.Kind == EventMonHdr || e.Kind == EventMonHdrInfo
		})
	default:
		return m.queue.Poll(nil)
	}
}

// FilterGet returns the current monitor filter string.
func (m *Monitor) FilterGet() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.filter))
	copy(out, m.filter)
	return out
}

// FilterSet upper-cases and installs a new monitor filter.
func (m *Monitor) FilterSet(filter []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = bytes.ToUpper(filter)
}

// CQCallsignGet/Set track the informational CQ callsign (the C
// command, when targeted at channel 0).
func (m *Monitor) CQCallsignGet() Callsign {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cqCallsign
}

func (m *Monitor) CQCallsignSet(c Callsign) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cqCallsign = NewCallsign(c)
}

// GlobalCallsignGet/Set track the informational global callsign (the
// I command, when targeted at channel 0).
func (m *Monitor) GlobalCallsignGet() Callsign {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.globalCallsign
}

func (m *Monitor) GlobalCallsignSet(c Callsign) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalCallsign = NewCallsign(c)
}

// Disconnect is a dummy: the Monitor has no link to tear down. It
// exists only so channel 0 answers the D command the same way any
// other channel slot does.
func (m *Monitor) Disconnect() {}

// Stats returns (status_count, info_count): the number of queued
// header-class Events (MON_HDR + MON_HDRINFO) and the number of
// queued MON_INFO Events, as ASCII decimals.
func (m *Monitor) Stats() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	statusCount := m.queue.Count(func(e Event) bool {
		return e.Kind == EventMonHdr || e.Kind == EventMonHdrInfo
	})
	infoCount := m.queue.Count(func(e Event) bool { return e.Kind == EventMonInfo })

	return []byte(fmt.Sprintf("%d %d", statusCount, infoCount))
}
