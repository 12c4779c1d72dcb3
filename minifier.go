package rwebserve

import (
	"bytes"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// minifier minifies rendered response bodies by MIME type. Only the
// three MIME types a mustache-rendered body can ever carry are
// registered: text/html, text/css and text/javascript. Static-file
// bodies are never passed through it (§4.4, §4.6).
type minifier struct {
	m *minify.M
}

var minifierSingleton = newMinifier()

func newMinifier() *minifier {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/javascript", js.Minify)
	return &minifier{m: m}
}

// tryMinify minifies b by mimeType (ignoring any ";charset=..." suffix).
// It returns (nil, false) for any MIME type other than the three
// registered above, so callers can fall back to the original bytes.
func tryMinify(mimeType string, b []byte) ([]byte, bool) {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.TrimSpace(mimeType)

	switch mimeType {
	case "text/html", "text/css", "text/javascript":
	default:
		return nil, false
	}

	var buf bytes.Buffer
	if err := minifierSingleton.m.Minify(mimeType, &buf, bytes.NewReader(b)); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
