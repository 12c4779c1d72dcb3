package rwebserve

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// bodyKind tags the variant a Body currently holds.
type bodyKind uint8

const (
	inlineBody bodyKind = iota
	binaryBody
	multiBody
)

// Body is a Response body: an inline string, a binary blob, or an
// ordered concatenation of other Body values (§3).
type Body struct {
	kind  bodyKind
	text  string
	blob  []byte
	parts []Body
}

// StringBody wraps s as an inline text body.
func StringBody(s string) Body { return Body{kind: inlineBody, text: s} }

// BytesBody wraps b as a binary body.
func BytesBody(b []byte) Body { return Body{kind: binaryBody, blob: b} }

// ConcatBody concatenates parts, in order, into one body.
func ConcatBody(parts ...Body) Body { return Body{kind: multiBody, parts: parts} }

// Empty reports whether the body contains no bytes.
func (b Body) Empty() bool { return len(b.Bytes()) == 0 }

// Bytes resolves the body to its raw bytes.
func (b Body) Bytes() []byte {
	switch b.kind {
	case inlineBody:
		return []byte(b.text)
	case binaryBody:
		return b.blob
	case multiBody:
		var buf bytes.Buffer
		for _, p := range b.parts {
			buf.Write(p.Bytes())
		}
		return buf.Bytes()
	default:
		return nil
	}
}

// Response is the mutable result a Handler builds (§3): a status line, a
// header map, a body, and (when the template stage is to run) a
// template path and mustache context.
type Response struct {
	Status int
	Reason string
	Header map[string]string
	Body   Body

	// Template, when non-empty, is a path relative to resources_root
	// that the template stage (§4.6) loads and renders against Context
	// instead of using Body directly.
	Template string
	Context  map[string]interface{}
}

// newResponse returns a Response with an empty header map and context.
func newResponse(status int, reason string) *Response {
	return &Response{
		Status:  status,
		Reason:  reason,
		Header:  map[string]string{},
		Context: map[string]interface{}{},
	}
}

// makeInitialResponse builds the Content-Type/Date/Server response
// skeleton and initial mustache context described in §4.4, for the
// status/reason/mime the resolution step picked.
func makeInitialResponse(cc *ConnConfig, clock Clock, status int, reason, mime string, req *Request) *Response {
	res := newResponse(status, reason)
	res.Header["Content-Type"] = mime
	res.Header["Date"] = clock.NowRFC822()
	res.Header["Server"] = cc.ServerBanner()
	if cc.Debug() {
		res.Header["Cache-Control"] = "no-cache"
	}
	res.Context["request-path"] = req.Path
	res.Context["status-code"] = strconv.Itoa(status)
	res.Context["status-mesg"] = reason
	res.Context["request-version"] = req.Version
	return res
}

// makeHeaderAndBody applies response framing (§4.4): it rewrites a
// "Content-Length: 0" header to the real body length, emits a single
// chunk when Transfer-Encoding: chunked is present (and never alongside
// an explicit Content-Length), and otherwise adds an explicit
// Content-Length. It returns the status line plus headers, and the
// framed body, ready to be written to the socket back to back.
func makeHeaderAndBody(res *Response, body []byte) (string, []byte) {
	names := make([]string, 0, len(res.Header))
	for name := range res.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	var hasContentLength, chunked bool
	var headerLines strings.Builder
	for _, name := range names {
		value := res.Header[name]
		switch {
		case strings.EqualFold(name, "Content-Length"):
			hasContentLength = true
			if value == "0" {
				value = strconv.Itoa(len(body))
			}
		case strings.EqualFold(name, "Transfer-Encoding") && value == "chunked":
			chunked = true
		}
		headerLines.WriteString(name)
		headerLines.WriteString(": ")
		headerLines.WriteString(value)
		headerLines.WriteString("\r\n")
	}

	if !chunked && !hasContentLength {
		fmt.Fprintf(&headerLines, "Content-Length: %d\r\n", len(body))
	}

	header := fmt.Sprintf("HTTP/1.1 %d %s\r\n%s\r\n", res.Status, res.Reason, headerLines.String())

	if chunked {
		var framed bytes.Buffer
		fmt.Fprintf(&framed, "%X\r\n", len(body))
		framed.Write(body)
		framed.WriteString("\r\n")
		return header, framed.Bytes()
	}
	return header, body
}
