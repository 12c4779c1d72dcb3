package rwebserve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

// memResourceLoader is a ResourceLoader backed by an in-memory set of
// paths, used so resolution tests don't need a real resources_root.
type memResourceLoader struct {
	files map[string][]byte
}

func (l *memResourceLoader) Load(path string) ([]byte, error) {
	if b, ok := l.files[path]; ok {
		return b, nil
	}
	return nil, errNotFound
}

func (l *memResourceLoader) Exists(path string) bool {
	_, ok := l.files[path]
	return ok
}

func newResolveConnConfig() *ConnConfig {
	cfg := NewConfig("test")
	cfg.ResourcesRoot = "/resources"
	cfg.ResourceLoader = &memResourceLoader{files: map[string][]byte{
		"/resources/home.html":          []byte("home"),
		"/resources/logo.png":           []byte("png-bytes"),
		"/resources/forbidden.html":     []byte("forbidden"),
		"/resources/not-found.html":     []byte("missing"),
		"/resources/not-supported.html": []byte("unsupported"),
	}}
	cfg.Routes = []RouteSpec{
		{Method: "GET", Template: "/greet/{name}", Name: "greeting"},
		{Method: "GET", Template: "/feed<application/json>", Name: "feed"},
	}
	cfg.Views = map[string]Handler{
		"greeting": func(view *ConnConfig, req *Request, res *Response) *Response {
			res.Body = StringBody("hello " + req.Match["name"])
			return res
		},
		"feed": func(view *ConnConfig, req *Request, res *Response) *Response {
			res.Body = StringBody(`{"ok":true}`)
			return res
		},
	}
	return deriveConnConfig(cfg, make(chan string, 1))
}

func TestResolveVersionGate(t *testing.T) {
	cc := newResolveConnConfig()
	req := &Request{Version: "2.0", Method: "GET", Path: "/greet/ada"}
	r := resolve(cc, req, []string{"text/html"})
	assert.Equal(t, 505, r.status)
}

func TestResolveResourceRootSafety(t *testing.T) {
	cc := newResolveConnConfig()
	req := &Request{Version: "1.1", Method: "GET", Path: "/../../etc/passwd"}
	r := resolve(cc, req, []string{"text/html"})
	assert.Equal(t, 403, r.status)
}

func TestResolveStaticFallback(t *testing.T) {
	cc := newResolveConnConfig()
	req := &Request{Version: "1.1", Method: "GET", Path: "/logo.png"}
	r := resolve(cc, req, []string{"image/png"})
	assert.Equal(t, 200, r.status)
	assert.Contains(t, r.mime, "image/png")
}

func TestResolveStaticWrongAcceptFallsThroughToNotFound(t *testing.T) {
	cc := newResolveConnConfig()
	req := &Request{Version: "1.1", Method: "GET", Path: "/logo.png"}
	r := resolve(cc, req, []string{"text/plain"})
	assert.Equal(t, 404, r.status)
}

func TestResolveRouteMatch(t *testing.T) {
	cc := newResolveConnConfig()
	req := &Request{Version: "1.1", Method: "GET", Path: "/greet/ada"}
	r := resolve(cc, req, []string{"text/html"})
	assert.Equal(t, 200, r.status)
	assert.Equal(t, "ada", r.match["name"])
}

func TestResolveRouteMimeOverride(t *testing.T) {
	cc := newResolveConnConfig()
	req := &Request{Version: "1.1", Method: "GET", Path: "/feed"}
	r := resolve(cc, req, []string{"application/json"})
	assert.Equal(t, 200, r.status)
	assert.Contains(t, r.mime, "application/json")
}

func TestResolveNotFoundFallback(t *testing.T) {
	cc := newResolveConnConfig()
	req := &Request{Version: "1.1", Method: "GET", Path: "/nowhere"}
	r := resolve(cc, req, []string{"text/html"})
	assert.Equal(t, 404, r.status)
}

func TestSplitVersion(t *testing.T) {
	major, minor, ok := splitVersion("1.1")
	assert.True(t, ok)
	assert.Equal(t, 1, major)
	assert.Equal(t, 1, minor)

	_, _, ok = splitVersion("garbage")
	assert.False(t, ok)
}
