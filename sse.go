package rwebserve

// ControlEvent is sent from the connection loop to a running SSE
// producer goroutine (§4.5, §5).
type ControlEvent int

const (
	// RefreshEvent tells a producer its path was requested again on the
	// same connection; it keeps pushing on the push channel it was given.
	RefreshEvent ControlEvent = iota

	// CloseEvent tells a producer its connection is gone; the producer
	// must stop sending on push and return.
	CloseEvent
)

// SSEOpener starts a server-sent-events producer the first time its
// path receives a text/event-stream request. It returns a control
// channel the connection loop uses to signal RefreshEvent/CloseEvent;
// the opener is expected to spawn its own goroutine that writes
// "data: ...\n\n"-framed strings to push until told to close (§4.5, §6).
type SSEOpener func(view *ConnConfig, req *Request, push chan<- string) chan<- ControlEvent

// processSSE implements the §4.5 SSE-path dispatch: if req.Path already
// has a running producer, it is sent RefreshEvent and a standing stream
// response is returned; otherwise the registered SSEOpener (if any) is
// started and registered; otherwise a 404 is returned, with a bare
// text/event-stream content type and no charset, since no stream will
// ever be written to it.
func processSSE(cc *ConnConfig, req *Request) *Response {
	if task, ok := cc.sseTasks[req.Path]; ok {
		task <- RefreshEvent
		return sseStreamResponse(cc, req)
	}

	if opener, ok := cc.sseOpeners[req.Path]; ok {
		task := opener(cc, req, cc.ssePush)
		cc.sseTasks[req.Path] = task
		return sseStreamResponse(cc, req)
	}

	res := newResponse(404, "Not Found")
	res.Header["Content-Type"] = "text/event-stream"
	res.Header["Date"] = cc.cfg.Clock.NowRFC822()
	res.Header["Server"] = cc.ServerBanner()
	return res
}

// sseStreamResponse builds the standing 200 response an SSE client
// keeps open: chunked so the body can grow indefinitely, never cached,
// with the blank line SSE clients expect before the first event.
func sseStreamResponse(cc *ConnConfig, req *Request) *Response {
	res := newResponse(200, "OK")
	res.Header["Content-Type"] = "text/event-stream; charset=utf-8"
	res.Header["Transfer-Encoding"] = "chunked"
	res.Header["Cache-Control"] = "no-cache"
	res.Header["Date"] = cc.cfg.Clock.NowRFC822()
	res.Header["Server"] = cc.ServerBanner()
	res.Body = StringBody("\n\n")
	return res
}

// closeAllSSE sends CloseEvent to every SSE producer this connection
// started, and is called once, when the connection loop exits (§4.7).
func closeAllSSE(cc *ConnConfig) {
	for _, task := range cc.sseTasks {
		task <- CloseEvent
	}
}
