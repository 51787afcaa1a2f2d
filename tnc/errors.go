package tnc

import "errors"

// ErrStreamClosed is returned by Engine.Run when the host link hits
// EOF on either framing. Channel and protocol faults are translated
// into a queued Event or a COND_ERRMSG response and never escape as a
// Go error; apart from ErrStreamClosed, Run returns only a non-EOF
// read/write error on the host stream itself, or ctx.Err() once its
// context is canceled.
var ErrStreamClosed = errors.New("tnc: host stream closed")

// errUnknownStation classifies a DISC-state Station Directory miss; it
// is logged and folded into a LINK FAILURE status, never returned to a
// caller.
var errUnknownStation = errors.New("tnc: unknown station")

// errDomainResolution classifies a DISC-state connect failure
// internally; it never escapes the channel worker.
var errDomainResolution = errors.New("tnc: domain resolution failed")
