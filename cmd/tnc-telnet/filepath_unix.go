//go:build unix

package main

// defaultHostFile is a plain filesystem path on Unix; the original's
// Windows named-pipe default (\\.\PIPE\tnc) is meaningless here.
const defaultHostFile = "/tmp/tnc.pipe"
