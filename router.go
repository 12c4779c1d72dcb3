package rwebserve

import (
	"path/filepath"
	"strconv"
	"strings"
)

// resolution is the outcome of handler resolution (§4.4): the status
// line, mime type and Handler the request was dispatched to, plus any
// route-template match map.
type resolution struct {
	status int
	reason string
	mime   string
	handler Handler
	match   map[string]string
}

// resolve implements the ordered handler-resolution guards of §4.4:
// version gate, resource-root safety, static fallback, route match,
// missing. Once an earlier guard selects a resolution, later guards are
// skipped; they never overwrite an already-selected resolution.
func resolve(cc *ConnConfig, req *Request, accepted []string) *resolution {
	var r *resolution

	if major, _, ok := splitVersion(req.Version); !ok || major != 1 {
		r = &resolution{505, "HTTP Version Not Supported", "text/html; charset=UTF-8", notSupportedHandler, nil}
	}

	if r == nil {
		safePath, ok := safeResourcePath(cc.resourcesRoot, req.Path)
		if !ok {
			r = &resolution{403, "Forbidden", "text/html; charset=UTF-8", forbiddenHandler, nil}
		} else if cc.cfg.ResourceLoader.Exists(safePath) {
			mime := cc.mimeForExtension(filepath.Ext(req.Path))
			if acceptsType(accepted, "*/*") || acceptsType(accepted, mime) {
				r = &resolution{200, "OK", mime + "; charset=UTF-8", staticHandler, nil}
			}
		}
	}

	if r == nil {
		for _, route := range cc.routes {
			if route.method != req.Method {
				continue
			}
			match := route.template.Match(req.Path)
			if len(match) == 0 {
				continue
			}
			routeAccepted := false
			for _, a := range accepted {
				if a == route.mime {
					routeAccepted = true
					break
				}
			}
			if routeAccepted {
				r = &resolution{200, "OK", route.mime + "; charset=UTF-8", cc.views[route.name], match}
				break
			}
		}
	}

	if r == nil {
		r = &resolution{404, "Not Found", "text/html; charset=UTF-8", missingHandler, nil}
	}

	return r
}

// splitVersion parses a "<major>.<minor>" HTTP version string.
func splitVersion(version string) (major, minor int, ok bool) {
	parts := strings.SplitN(version, ".", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	maj, err1 := strconv.Atoi(parts[0])
	min, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return maj, min, true
}

// processRequest is the top-level §4.4 entry point: it resolves and
// invokes a handler, runs the template stage when needed, and returns
// the framed header/body pair ready to write to the socket.
func processRequest(cc *ConnConfig, pr *ParsedRequest, localAddr, remoteAddr string, body []byte) (string, []byte) {
	version := strconv.Itoa(pr.Major) + "." + strconv.Itoa(pr.Minor)
	path, query := parseTarget(DecodePercent(pr.Target))

	req := &Request{
		Version:    version,
		Method:     pr.Method,
		LocalAddr:  localAddr,
		RemoteAddr: remoteAddr,
		Path:       path,
		Query:      query,
		Headers:    pr.Headers,
		Body:       body,
	}

	accepted := req.Accept()
	wantsSSE := false
	for _, a := range accepted {
		if a == "text/event-stream" {
			wantsSSE = true
			break
		}
	}
	if wantsSSE {
		res := processSSE(cc, req)
		return finalizeResponse(cc, req, res)
	}

	r := resolve(cc, req, accepted)
	req.Match = r.match

	res := makeInitialResponse(cc, cc.cfg.Clock, r.status, r.reason, r.mime, req)
	res = r.handler(cc, req, res)

	return finalizeResponse(cc, req, res)
}

// finalizeResponse runs the template stage (§4.6) when the handler asked
// for one, then applies framing (§4.4) and optional minification.
func finalizeResponse(cc *ConnConfig, req *Request, res *Response) (string, []byte) {
	rendered := res.Template != ""
	if rendered {
		res = renderTemplate(cc, req, res)
	}

	body := res.Body.Bytes()
	if rendered && cc.cfg.MinifierEnabled {
		if minified, ok := tryMinify(res.Header["Content-Type"], body); ok {
			body = minified
		}
	}

	return makeHeaderAndBody(res, body)
}
