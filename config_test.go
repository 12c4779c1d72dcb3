package rwebserve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newValidResourcesRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range requiredResourceFiles {
		assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name+" contents"), 0o644))
	}
	return dir
}

func baseTestConfig(t *testing.T) *Config {
	c := NewConfig("test-app")
	c.Hosts = []string{"127.0.0.1"}
	c.ResourcesRoot = newValidResourcesRoot(t)
	return c
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	c := baseTestConfig(t)
	c.Routes = []RouteSpec{{Method: "GET", Template: "/", Name: "home"}}
	c.Views = map[string]Handler{"home": missingHandler}

	cc := deriveConnConfig(c, make(chan string))
	assert.Empty(t, cc.Validate())
}

func TestRoutesMustHaveViews(t *testing.T) {
	c := baseTestConfig(t)
	c.Routes = []RouteSpec{
		{Method: "GET", Template: "/", Name: "home"},
		{Method: "GET", Template: "/hello", Name: "greeting"},
		{Method: "GET", Template: "/goodbye", Name: "farewell"},
	}
	c.Views = map[string]Handler{"home": missingHandler}

	cc := deriveConnConfig(c, make(chan string))
	assert.Equal(t, "No views for the following routes: farewell, greeting", cc.Validate())
}

func TestViewsMustHaveRoutes(t *testing.T) {
	c := baseTestConfig(t)
	c.Routes = []RouteSpec{{Method: "GET", Template: "/", Name: "home"}}
	c.Views = map[string]Handler{
		"home":     missingHandler,
		"greeting": missingHandler,
		"goodbye":  missingHandler,
	}

	cc := deriveConnConfig(c, make(chan string))
	assert.Equal(t, "No routes for the following views: goodbye, greeting", cc.Validate())
}

func TestResourcesRootMustHaveRequiredFiles(t *testing.T) {
	c := NewConfig("test-app")
	c.Hosts = []string{"127.0.0.1"}
	c.ResourcesRoot = t.TempDir() // empty: none of the required files exist

	cc := deriveConnConfig(c, make(chan string))
	assert.Equal(t, "Missing required files: forbidden.html, home.html, not-found.html, not-supported.html", cc.Validate())
}

func TestValidateReportsEmptyHosts(t *testing.T) {
	c := NewConfig("test-app")
	c.ResourcesRoot = newValidResourcesRoot(t)

	cc := deriveConnConfig(c, make(chan string))
	assert.Contains(t, cc.Validate(), "Hosts is empty.")
}

func TestValidateReportsBadPort(t *testing.T) {
	c := baseTestConfig(t)
	c.Port = 500

	cc := deriveConnConfig(c, make(chan string))
	assert.Contains(t, cc.Validate(), "Port should be 80 or 1024 or above.")
}

func TestDebugSetting(t *testing.T) {
	c := baseTestConfig(t)
	c.Settings = map[string]string{"debug": "true"}

	cc := deriveConnConfig(c, make(chan string))
	assert.True(t, cc.Debug())
}
