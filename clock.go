package rwebserve

import "time"

// Clock is the system-clock external collaborator (§6): it produces the
// RFC-822-style date string used in the Date response header.
type Clock interface {
	NowRFC822() string
}

// systemClock is the default Clock, backed by the real wall clock.
type systemClock struct{}

// httpDateLayout is the wire format for the Date header: a weekday and
// month name, a four-digit year, and GMT, per RFC 2616 §3.3.1.
const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

func (systemClock) NowRFC822() string {
	return time.Now().UTC().Format(httpDateLayout)
}
