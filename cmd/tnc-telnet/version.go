package main

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time via -ldflags "-X 'main.Version=X'",
// grounded on src/version.go's SAMOYED_VERSION pattern.
var Version string

func printVersion() {
	version := Version
	if version == "" {
		version = "!UNKNOWN!"
	}

	commit := "UNKNOWN"
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, bs := range bi.Settings {
			if bs.Key == "vcs.revision" {
				commit = bs.Value
			}
		}
	}

	fmt.Printf("tnc-telnet - Version %s (revision %s)\n", version, commit)
}
