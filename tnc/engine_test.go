package tnc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Engine_terminalDataIsDiscardedNotDispatched(t *testing.T) {
	hostSide, engineSide := net.Pipe()
	defer hostSide.Close()

	engine := NewEngine(ModeTerminal, 1, NewCallsign([]byte("NOCALL")),
		NewStationDirectory(t.TempDir()+"/stations.txt", NewLogger(0)), NewLogger(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx, engineSide) }()

	// A bare data line (not ESC-prefixed) in terminal mode is read and
	// discarded; the Engine must stay in ModeTerminal and must not
	// crash or write anything back (spec.md §9's Open Question).
	_, err := hostSide.Write([]byte("hello world\r"))
	assert.NoError(t, err)

	// Closing the host stream must surface ErrStreamClosed, not hang
	// or panic, confirming the discarded line didn't desync the
	// reader's framing.
	hostSide.Close()
	err = <-done
	assert.ErrorIs(t, err, ErrStreamClosed)
}

func Test_Engine_streamClosedPropagates(t *testing.T) {
	hostSide, engineSide := net.Pipe()

	engine := NewEngine(ModeHost, 1, NewCallsign([]byte("NOCALL")),
		NewStationDirectory(t.TempDir()+"/stations.txt", NewLogger(0)), NewLogger(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx, engineSide) }()

	hostSide.Close()
	err := <-done
	assert.ErrorIs(t, err, ErrStreamClosed)
}
