package tnc

import (
	"bytes"
	"fmt"
)

// channelLike is the subset of *Channel and *Monitor's surface the
// Command Interpreter dispatches against — channel 0 (the Monitor)
// answers the same command letters as any Connection Channel, just
// with different semantics for a few of them (spec.md §4.2).
type channelLike interface {
	Poll(kind string) (Event, bool)
	Disconnect()
}

// Interp is the Command Interpreter: it routes one host-mode request
// to channel 0 (Monitor) or one of N Connection Channels and produces
// an output-condition-coded response (spec.md §4.5).
type Interp struct {
	monitor  *Monitor
	channels []*Channel // index 0 unused; channels[i] is channel i, 1..N
	logger   *Logger
}

// NewInterp wires an Interp to the shared Monitor and Connection
// Channel slice. channels must be indexed 1..N (channels[0] is never
// read).
func NewInterp(monitor *Monitor, channels []*Channel, logger *Logger) *Interp {
	return &Interp{monitor: monitor, channels: channels, logger: logger}
}

// numChannels is N: the highest valid channel id.
func (ip *Interp) numChannels() int {
	return len(ip.channels) - 1
}

// Dispatch handles one host-mode request per spec.md §4.5 and returns
// the (condition, message) pair the Host-Link Codec frames back.
func (ip *Interp) Dispatch(ch byte, isCommand bool, buffer []byte) (Condition, []byte) {
	n := ip.numChannels()

	if !isCommand {
		if int(ch) < 1 || int(ch) > n {
			return CondErrMsg, []byte("INVALID CHANNEL NUMBER")
		}
		ip.channels[ch].Transmit(buffer)
		return CondOK, nil
	}

	if int(ch) > n {
		return CondErrMsg, []byte("INVALID CHANNEL NUMBER")
	}

	if len(buffer) == 0 {
		return CondErrMsg, []byte("INVALID COMMAND: ")
	}

	letter := upperByte(buffer[0])
	arg := bytes.TrimSpace(buffer[1:])

	if ch == 0 {
		return ip.dispatchMonitor(letter, arg)
	}
	return ip.dispatchChannel(ip.channels[ch], letter, arg)
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// dispatchChannel answers the per-channel command letters against one
// Connection Channel.
func (ip *Interp) dispatchChannel(c *Channel, letter byte, arg []byte) (Condition, []byte) {
	switch letter {
	case 'G':
		return pollResponse(c, string(arg))

	case 'C':
		if len(arg) == 0 {
			remote, ok := c.RemoteGet()
			if !ok {
				return CondErrMsg, []byte("CHANNEL NOT CONNECTED")
			}
			return CondOKMsg, []byte(remote.String())
		}
		c.Connect(NewCallsign(arg))
		return CondOK, nil

	case 'I':
		if len(arg) == 0 {
			return CondOKMsg, []byte(c.CallsignGet().String())
		}
		c.CallsignSet(NewCallsign(arg))
		return CondOK, nil

	case 'M':
		// The monitor filter is global, not per-channel (spec.md §4.5:
		// "monitor filter on channel 0"), so any channel's M reaches
		// the same Monitor the Command Interpreter dispatches channel
		// 0's own M to.
		if len(arg) == 0 {
			return CondOKMsg, ip.monitor.FilterGet()
		}
		ip.monitor.FilterSet(arg)
		return CondOK, nil

	case 'Y':
		return ip.dispatchY(arg)

	case 'L':
		return CondOKMsg, c.LinkStatus()

	case 'D':
		c.Disconnect()
		return CondOK, nil

	case 'J':
		return dispatchJ(arg)

	case 'U', 'K', 'Z', 'H':
		return CondOK, nil

	case '@':
		return dispatchAt(arg)

	default:
		return CondErrMsg, []byte(fmt.Sprintf("INVALID COMMAND: %c", letter))
	}
}

// dispatchMonitor answers the command letters meaningful on channel 0.
// M is the one letter whose real target is always the Monitor, even
// when addressed through a Connection Channel's own M — spec.md §4.5
// lists M as "monitor filter on channel 0" regardless of which channel
// the request named.
func (ip *Interp) dispatchMonitor(letter byte, arg []byte) (Condition, []byte) {
	switch letter {
	case 'G':
		return pollResponse(ip.monitor, string(arg))

	case 'M':
		if len(arg) == 0 {
			return CondOKMsg, ip.monitor.FilterGet()
		}
		ip.monitor.FilterSet(arg)
		return CondOK, nil

	case 'C':
		if len(arg) == 0 {
			return CondOKMsg, []byte(ip.monitor.CQCallsignGet().String())
		}
		ip.monitor.CQCallsignSet(NewCallsign(arg))
		return CondOK, nil

	case 'I':
		if len(arg) == 0 {
			return CondOKMsg, []byte(ip.monitor.GlobalCallsignGet().String())
		}
		ip.monitor.GlobalCallsignSet(NewCallsign(arg))
		return CondOK, nil

	case 'Y':
		return ip.dispatchY(arg)

	case 'L':
		return CondOKMsg, ip.monitor.Stats()

	case 'D':
		ip.monitor.Disconnect()
		return CondOK, nil

	case 'J':
		return dispatchJ(arg)

	case 'U', 'K', 'Z', 'H':
		return CondOK, nil

	case '@':
		return dispatchAt(arg)

	default:
		return CondErrMsg, []byte(fmt.Sprintf("INVALID COMMAND: %c", letter))
	}
}

// dispatchY answers Y against the Engine's channel count, shared by
// both channel kinds (spec.md §4.5).
func (ip *Interp) dispatchY(arg []byte) (Condition, []byte) {
	n := ip.numChannels()
	if len(arg) == 0 {
		return CondOKMsg, []byte(fmt.Sprintf("%d", n))
	}
	var want int
	if _, err := fmt.Sscanf(string(arg), "%d", &want); err != nil {
		return CondErrMsg, []byte("INVALID COMMAND: Y")
	}
	if want <= n {
		return CondOK, nil
	}
	return CondErrMsg, []byte(fmt.Sprintf("INVALID CHANNEL NUMBER: %d", want))
}

func dispatchJ(arg []byte) (Condition, []byte) {
	return CondOK, nil
}

func dispatchAt(arg []byte) (Condition, []byte) {
	if len(arg) > 0 && upperByte(arg[0]) == 'B' {
		return CondOKMsg, []byte("512")
	}
	return CondOK, nil
}

// pollResponse runs a G poll against any channelLike target and routes
// the dequeued Event (if any) to its corresponding output condition
// (spec.md §4.5).
func pollResponse(target channelLike, kind string) (Condition, []byte) {
	ev, ok := target.Poll(kind)
	if !ok {
		return CondOK, nil
	}

	switch ev.Kind {
	case EventInfo:
		return CondConInfo, ev.Payload
	case EventLinkStatus:
		return CondLnk, ev.Payload
	case EventMonHdr:
		return CondMon, ev.Payload
	case EventMonHdrInfo:
		return CondMonHdr, ev.Payload
	case EventMonInfo:
		return CondMonInf, ev.Payload
	default:
		return CondOK, nil
	}
}
