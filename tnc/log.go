package tnc

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is the thin wrapper the teacher's dw_printf/text_color_set
// pair plays in the original codebase (src/log.go, src/textcolor.go):
// one place that owns the verbosity level and the output sink, so the
// rest of the package never touches a *log.Logger field directly.
type Logger struct {
	l *log.Logger
}

// NewLogger builds a Logger at the given verbosity. verbosity follows
// the CLI's -v/-vv/-vvv count: 0 = Warn, 1 = Info, 2+ = Debug.
func NewLogger(verbosity int) *Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	switch {
	case verbosity <= 0:
		l.SetLevel(log.WarnLevel)
	case verbosity == 1:
		l.SetLevel(log.InfoLevel)
	default:
		l.SetLevel(log.DebugLevel)
	}

	return &Logger{l: l}
}

func (lg *Logger) Debugf(format string, args ...any) {
	if lg == nil {
		return
	}
	lg.l.Debugf(format, args...)
}

func (lg *Logger) Infof(format string, args ...any) {
	if lg == nil {
		return
	}
	lg.l.Infof(format, args...)
}

func (lg *Logger) Warnf(format string, args ...any) {
	if lg == nil {
		return
	}
	lg.l.Warnf(format, args...)
}

func (lg *Logger) Errorf(format string, args ...any) {
	if lg == nil {
		return
	}
	lg.l.Errorf(format, args...)
}

// Criticalf logs at Error level, labeled the way spec.md's CRITICAL
// severity is meant to read: a fatal, unwind-the-engine condition.
// charmbracelet/log has no level above Error, so CRITICAL is
// expressed as an Error log plus the distinguishing message prefix.
func (lg *Logger) Criticalf(format string, args ...any) {
	if lg == nil {
		return
	}
	lg.l.Errorf("CRITICAL: "+format, args...)
}

// sleepTick is the worker tick delay, named and isolated the way the
// teacher's src/util.go isolates SLEEP_MS/SLEEP_SEC so call sites read
// as intent rather than a bare time.Sleep.
func sleepTick(d time.Duration) {
	time.Sleep(d)
}
