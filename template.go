package rwebserve

import (
	"net"
	"path"
	"strconv"
	"strings"
)

// renderTemplate implements the §4.6 template stage: it loads
// res.Template from resources_root, validates brace balance in debug
// mode, and renders it through the ConnConfig's TemplateEngine. Load or
// validation failure yields a 403 whose body is the read-error template
// expanded against {request-path}; this can override whatever status
// the handler set.
func renderTemplate(cc *ConnConfig, req *Request, res *Response) *Response {
	safePath, ok := safeResourcePath(cc.resourcesRoot, res.Template)
	if !ok {
		return readErrorResponse(cc, req, res)
	}

	data, err := cc.cfg.ResourceLoader.Load(safePath)
	if err != nil {
		return readErrorResponse(cc, req, res)
	}

	if cc.Debug() && !bracesBalanced(data) {
		return readErrorResponse(cc, req, res)
	}

	if len(res.Context) > 0 {
		res.Context["base-path"] = basePath(cc, req, res.Template)
	}

	rendered, err := cc.cfg.TemplateEngine.Render(string(data), res.Context)
	if err != nil {
		return readErrorResponse(cc, req, res)
	}

	res.Body = StringBody(rendered)
	return res
}

// readErrorResponse produces the 403 the template stage falls back to
// when a template cannot be loaded or fails debug-mode validation.
func readErrorResponse(cc *ConnConfig, req *Request, res *Response) *Response {
	res.Status, res.Reason = 403, "Forbidden"
	res.Header["Content-Type"] = "text/html; charset=UTF-8"
	rendered, err := cc.cfg.TemplateEngine.Render(cc.cfg.ReadErrorTemplate, map[string]interface{}{
		"request-path": req.Path,
	})
	if err != nil {
		rendered = cc.cfg.ReadErrorTemplate
	}
	res.Body = StringBody(rendered)
	return res
}

// basePath builds the "http://<host>:<port>/<dir>/" value injected into
// the mustache context (§4.6). <dir> is the directory portion of
// template; path.Dir collapses a bare filename like "home.html" to ".",
// which this module renders as "" so the result reads "http://host:port/"
// rather than "http://host:port/./" (§9 Open Question).
func basePath(cc *ConnConfig, req *Request, template string) string {
	host := req.LocalAddr
	if h, _, err := net.SplitHostPort(req.LocalAddr); err == nil {
		host = h
	}

	dir := path.Dir(template)
	if dir == "." {
		dir = ""
	}

	var b strings.Builder
	b.WriteString("http://")
	b.WriteString(host)
	b.WriteString(":")
	b.WriteString(strconv.Itoa(cc.cfg.Port))
	b.WriteString("/")
	if dir != "" {
		b.WriteString(dir)
		b.WriteString("/")
	}
	return b.String()
}

// bracesBalanced reports whether every "{{" in data has a matching "}}"
// after it (§4.6 debug-mode validation). It does not understand nested
// mustache sections; it only counts opens and closes in order.
func bracesBalanced(data []byte) bool {
	s := string(data)
	depth := 0
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], "{{"):
			depth++
			i += 2
		case strings.HasPrefix(s[i:], "}}"):
			depth--
			if depth < 0 {
				return false
			}
			i += 2
		default:
			i++
		}
	}
	return depth == 0
}
