package tnc

import (
	"errors"
	"fmt"
	"io"
)

// Terminal-mode control bytes (spec.md §4.4).
const (
	chrESC byte = 0x1B
	chrCAN byte = 0x18
	chrCR  byte = 0x0D
)

// readByte reads exactly one byte, translating any EOF into
// ErrStreamClosed — spec.md §4.4: "Empty read (EOF) raises
// ClosedStream to the Engine", for both framings.
func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, ErrStreamClosed
		}
		return 0, err
	}
	return b[0], nil
}

// ReadTerminal implements the terminal framing's byte-at-a-time
// reader: ESC discards the buffer and marks the next line a command,
// CAN discards the buffer, CR emits (isCommand, buffer) and resets
// (spec.md §4.4).
func ReadTerminal(r io.Reader) (isCommand bool, buffer []byte, err error) {
	buf := make([]byte, 0, 64)
	cmd := false

	for {
		b, err := readByte(r)
		if err != nil {
			return false, nil, err
		}

		switch b {
		case chrCR:
			return cmd, buf, nil
		case chrCAN:
			buf = buf[:0]
		case chrESC:
			cmd = true
			buf = buf[:0]
		default:
			buf = append(buf, b)
		}
	}
}

// WriteTerminalResponse writes a terminal-mode response line,
// terminated CRLF.
func WriteTerminalResponse(w io.Writer, msg []byte) error {
	out := make([]byte, 0, len(msg)+2)
	out = append(out, msg...)
	out = append(out, '\r', '\n')
	_, err := w.Write(out)
	return err
}

// ReadHostRequest reads one host-mode request: three header bytes
// (channel, is-command flag, length-1) followed by exactly length+1
// payload bytes (spec.md §4.4).
func ReadHostRequest(r io.Reader) (ch byte, isCommand bool, payload []byte, err error) {
	chByte, err := readByte(r)
	if err != nil {
		return 0, false, nil, err
	}
	icByte, err := readByte(r)
	if err != nil {
		return 0, false, nil, err
	}
	lByte, err := readByte(r)
	if err != nil {
		return 0, false, nil, err
	}

	buf := make([]byte, int(lByte)+1)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, false, nil, ErrStreamClosed
		}
		return 0, false, nil, err
	}

	return chByte, icByte != 0, buf, nil
}

// WriteHostResponse writes one host-mode response, framed per the
// output-condition-coded table in spec.md §4.4. An unrecognized
// condition produces no output and no error — codec methods never
// raise, per spec.md §7's propagation policy; the Command Interpreter
// never constructs one, so this branch exists only as a backstop.
func WriteHostResponse(w io.Writer, ch byte, cond Condition, msg []byte) error {
	var out []byte

	switch cond {
	case CondOK:
		out = []byte{ch, byte(cond)}

	case CondOKMsg, CondErrMsg, CondMon, CondMonHdr:
		out = make([]byte, 0, len(msg)+3)
		out = append(out, ch, byte(cond))
		out = append(out, msg...)
		out = append(out, 0x00)

	case CondLnk:
		prefix := fmt.Sprintf("(%d) ", ch)
		out = make([]byte, 0, len(prefix)+len(msg)+3)
		out = append(out, ch, byte(cond))
		out = append(out, []byte(prefix)...)
		out = append(out, msg...)
		out = append(out, 0x00)

	case CondMonInf, CondConInfo:
		out = make([]byte, 0, len(msg)+3)
		out = append(out, ch, byte(cond), byte(len(msg)-1))
		out = append(out, msg...)

	default:
		return nil
	}

	_, err := w.Write(out)
	return err
}
