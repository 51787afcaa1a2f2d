/*------------------------------------------------------------------
 *
 * Purpose:	CLI entrypoint: parses flags, opens the host-link stream,
 *		and hands it to the tnc Engine.
 *
 *---------------------------------------------------------------*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/term"
	"github.com/spf13/pflag"

	"github.com/electronicayciencia/tnc-telnet/tnc"
)

type cliConfig struct {
	file     string
	serial   string
	stations string
	mycall   string
	jhost1   bool
	ch       int
	verbose  int
	version  bool
}

func parseFlags() *cliConfig {
	var cfg cliConfig

	pflag.StringVar(&cfg.file, "file", defaultHostFile, "Host-link stream path (named pipe or plain file).")
	pflag.StringVar(&cfg.serial, "serial", "", "Open the host link as a serial device instead of --file.")
	pflag.StringVar(&cfg.stations, "stations", "stations.txt", "Stations directory file.")
	pflag.StringVar(&cfg.mycall, "mycall", tnc.DefaultCallsign, "Default callsign.")
	pflag.BoolVar(&cfg.jhost1, "jhost1", false, "Start already in host mode.")
	pflag.IntVar(&cfg.ch, "ch", 4, "Number of connection channels.")
	pflag.CountVarP(&cfg.verbose, "verbose", "v", "Increase logging verbosity (-v, -vv, -vvv).")
	pflag.BoolVar(&cfg.version, "version", false, "Print version and exit.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - AX.25 host-link TNC emulator over TCP/Telnet\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nUsage: %s [OPTIONS]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()
	return &cfg
}

func main() {
	cfg := parseFlags()

	if cfg.version {
		printVersion()
		return
	}

	logger := tnc.NewLogger(cfg.verbose)

	if cfg.serial != "" && cfg.file != defaultHostFile {
		logger.Criticalf("--serial and --file are mutually exclusive")
		os.Exit(1)
	}

	hostStream, closeStream, err := openHostStream(cfg.serial, cfg.file)
	if err != nil {
		logger.Criticalf("cannot open host stream: %v", err)
		os.Exit(1)
	}
	defer closeStream()

	mode := tnc.ModeTerminal
	if cfg.jhost1 {
		mode = tnc.ModeHost
	}

	directory := tnc.NewStationDirectory(cfg.stations, logger)
	engine := tnc.NewEngine(mode, cfg.ch, tnc.NewCallsign([]byte(cfg.mycall)), directory, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := engine.Run(ctx, hostStream); err != nil && err != tnc.ErrStreamClosed {
		logger.Criticalf("engine exited: %v", err)
		os.Exit(1)
	}
}

// openHostStream opens the host link either as a serial device
// (grounded on src/serial_port.go's github.com/pkg/term usage) or as a
// plain bidirectional file/named pipe.
func openHostStream(serialDevice, filePath string) (io.ReadWriter, func(), error) {
	if serialDevice != "" {
		t, err := term.Open(serialDevice, term.RawMode)
		if err != nil {
			return nil, nil, err
		}
		return t, func() { t.Close() }, nil
	}

	f, err := os.OpenFile(filePath, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
