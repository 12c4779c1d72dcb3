package rwebserve

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerDisabledWritesNothing(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLogger("test-app")
	l.Output = buf
	l.Enabled = false

	l.Info("hello")

	assert.Zero(t, buf.Len())
}

func TestLoggerJSONRecordCarriesMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLogger("test-app")
	l.Output = buf

	l.Infof("listening on %s", ":8080")

	m := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "test-app", m["app_name"])
	assert.Equal(t, "listening on :8080", m["message"])
	assert.Equal(t, "INFO", m["level"])
}

func TestLoggerTextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLogger("test-app")
	l.Output = buf
	l.Format = "{{.level}}:"

	l.Warn("disk low")

	assert.Equal(t, "WARN: disk low\n", buf.String())
}
