package rwebserve

// These default handlers set only Template: the template stage (§4.6)
// loads and renders the named file. They never set Body directly.

func notSupportedHandler(cc *ConnConfig, req *Request, res *Response) *Response {
	res.Template = "not-supported.html"
	return res
}

func forbiddenHandler(cc *ConnConfig, req *Request, res *Response) *Response {
	res.Template = "forbidden.html"
	return res
}

func missingHandler(cc *ConnConfig, req *Request, res *Response) *Response {
	res.Template = "not-found.html"
	return res
}

// staticHandler loads the static file resolved during routing and
// returns its bytes verbatim as the body (§4.4 static fallback). It
// recomputes the safe path from scratch rather than threading it
// through Response, since ConnConfig.resourcesRoot is all it needs.
func staticHandler(cc *ConnConfig, req *Request, res *Response) *Response {
	safePath, ok := safeResourcePath(cc.resourcesRoot, req.Path)
	if !ok {
		res.Status, res.Reason = 403, "Forbidden"
		res.Template = "forbidden.html"
		return res
	}

	data, err := cc.cfg.ResourceLoader.Load(safePath)
	if err != nil {
		res.Status, res.Reason = 404, "Not Found"
		res.Template = "not-found.html"
		return res
	}

	res.Body = BytesBody(data)
	return res
}
