package main

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPflag resets the global flag set between test cases, the same
// bodge src/scripts_test.go uses: pflag assumes Parse is called once
// per process.
func setupPflag(args []string) {
	os.Args = args
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
}

func Test_parseFlags_defaults(t *testing.T) {
	setupPflag([]string{"tnc-telnet"})
	cfg := parseFlags()

	assert.Equal(t, defaultHostFile, cfg.file)
	assert.Equal(t, "", cfg.serial)
	assert.Equal(t, "stations.txt", cfg.stations)
	assert.Equal(t, "NOCALL", cfg.mycall)
	assert.False(t, cfg.jhost1)
	assert.Equal(t, 4, cfg.ch)
	assert.Equal(t, 0, cfg.verbose)
}

func Test_parseFlags_overrides(t *testing.T) {
	setupPflag([]string{"tnc-telnet",
		"--file", "/tmp/link", "--stations", "/etc/stations.txt",
		"--mycall", "EA4BAO", "--jhost1", "--ch", "2", "-vv"})
	cfg := parseFlags()

	assert.Equal(t, "/tmp/link", cfg.file)
	assert.Equal(t, "/etc/stations.txt", cfg.stations)
	assert.Equal(t, "EA4BAO", cfg.mycall)
	assert.True(t, cfg.jhost1)
	assert.Equal(t, 2, cfg.ch)
	assert.Equal(t, 2, cfg.verbose)
}

func Test_openHostStream_plainFile(t *testing.T) {
	path := t.TempDir() + "/hostfile"
	f, err := os.Create(path)
	require.NoError(t, err)
	f.Close()

	rw, closeFn, err := openHostStream("", path)
	require.NoError(t, err)
	defer closeFn()
	assert.NotNil(t, rw)
}

func Test_openHostStream_missingFile(t *testing.T) {
	_, _, err := openHostStream("", t.TempDir()+"/does-not-exist")
	assert.Error(t, err)
}
