package rwebserve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTemplateConnConfig(files map[string][]byte) *ConnConfig {
	cfg := NewConfig("test")
	cfg.ResourcesRoot = "/resources"
	cfg.ResourceLoader = &memResourceLoader{files: files}
	cfg.Port = 8080
	return deriveConnConfig(cfg, make(chan string, 1))
}

func TestRenderTemplateSuccess(t *testing.T) {
	cc := newTemplateConnConfig(map[string][]byte{
		"/resources/greet.html": []byte("Hello {{name}} from {{base-path}}"),
	})
	req := &Request{LocalAddr: "127.0.0.1:54321", Path: "/greet"}
	res := newResponse(200, "OK")
	res.Template = "greet.html"
	res.Context["name"] = "Ada"

	out := renderTemplate(cc, req, res)
	assert.Equal(t, 200, out.Status)
	assert.Contains(t, string(out.Body.Bytes()), "Hello Ada from http://127.0.0.1:8080/")
}

func TestRenderTemplateMissingFileIs403(t *testing.T) {
	cc := newTemplateConnConfig(map[string][]byte{})
	req := &Request{LocalAddr: "127.0.0.1:54321", Path: "/nope"}
	res := newResponse(200, "OK")
	res.Template = "missing.html"

	out := renderTemplate(cc, req, res)
	assert.Equal(t, 403, out.Status)
	assert.Contains(t, string(out.Body.Bytes()), "/nope")
}

func TestRenderTemplateUnbalancedBracesInDebugModeIs403(t *testing.T) {
	cc := newTemplateConnConfig(map[string][]byte{
		"/resources/broken.html": []byte("Hello {{name}"),
	})
	cc.settings["debug"] = "true"
	req := &Request{LocalAddr: "127.0.0.1:54321", Path: "/broken"}
	res := newResponse(200, "OK")
	res.Template = "broken.html"

	out := renderTemplate(cc, req, res)
	assert.Equal(t, 403, out.Status)
}

func TestRenderTemplateOutsideRootIs403(t *testing.T) {
	cc := newTemplateConnConfig(map[string][]byte{})
	req := &Request{LocalAddr: "127.0.0.1:80", Path: "/x"}
	res := newResponse(200, "OK")
	res.Template = "../../etc/passwd"

	out := renderTemplate(cc, req, res)
	assert.Equal(t, 403, out.Status)
}

func TestBasePathCollapsesDotDirForBareFilename(t *testing.T) {
	cc := newTemplateConnConfig(map[string][]byte{})
	req := &Request{LocalAddr: "example.com:8080"}
	bp := basePath(cc, req, "home.html")
	assert.Equal(t, "http://example.com:8080/", bp)
}

func TestBasePathKeepsSubdirectory(t *testing.T) {
	cc := newTemplateConnConfig(map[string][]byte{})
	req := &Request{LocalAddr: "example.com:8080"}
	bp := basePath(cc, req, "admin/home.html")
	assert.True(t, strings.HasSuffix(bp, "/admin/"))
}

func TestBracesBalanced(t *testing.T) {
	assert.True(t, bracesBalanced([]byte("{{a}} plain {{b}}")))
	assert.False(t, bracesBalanced([]byte("{{a}")))
	assert.False(t, bracesBalanced([]byte("a}} {{b}}")))
}
