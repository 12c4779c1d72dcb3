package rwebserve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryMinifyHTML(t *testing.T) {
	out, ok := tryMinify("text/html; charset=UTF-8", []byte("<p>   hi   </p>"))
	assert.True(t, ok)
	assert.NotContains(t, string(out), "   ")
}

func TestTryMinifyCSS(t *testing.T) {
	out, ok := tryMinify("text/css", []byte("body {  color: red;  }"))
	assert.True(t, ok)
	assert.NotEmpty(t, out)
}

func TestTryMinifyUnsupportedMimeIsNoop(t *testing.T) {
	_, ok := tryMinify("image/png", []byte{1, 2, 3})
	assert.False(t, ok)
}
