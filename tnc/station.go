package tnc

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// StationDirectory resolves a callsign to a (host, port) pair by
// scanning a whitespace-delimited text file. It is grounded on
// channel.py's _station2ip: the file is reopened on every Resolve
// call (not cached), so edits take effect without restarting the
// engine — intentional, not an oversight, per spec.md §4.1.
type StationDirectory struct {
	Path   string
	Logger *Logger
}

// NewStationDirectory builds a directory over the stations file at
// path.
func NewStationDirectory(path string, logger *Logger) *StationDirectory {
	return &StationDirectory{Path: path, Logger: logger}
}

// Resolve looks up callsign and returns (host, port, true), or
// ("", 0, false) if the station is unknown, the file cannot be read,
// or the station's line is malformed. Malformed lines are logged and
// skipped, so other stations still resolve. Errors never propagate to
// the caller as a
// Go error; they are logged and treated as NOT_FOUND (spec.md §4.1).
func (d *StationDirectory) Resolve(callsign Callsign) (host string, port int, ok bool) {
	want := strings.ToUpper(strings.TrimSpace(callsign.String()))

	f, err := os.Open(d.Path)
	if err != nil {
		d.Logger.Warnf("stations: cannot open %s: %v", d.Path, err)
		return "", 0, false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			d.Logger.Warnf("stations: malformed line %q in %s", line, d.Path)
			continue
		}

		ssid, hostField, portField := fields[0], fields[1], fields[2]
		if !strings.EqualFold(ssid, want) {
			continue
		}

		p, err := strconv.Atoi(portField)
		if err != nil {
			d.Logger.Warnf("stations: malformed port %q for %s in %s", portField, ssid, d.Path)
			continue
		}

		return hostField, p, true
	}

	return "", 0, false
}
