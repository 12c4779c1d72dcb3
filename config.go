package rwebserve

import (
	"os"
	"sort"
	"strings"
)

// Handler is a function from (ConnConfig view, request, response) to a
// response (GLOSSARY). Handlers are expected to be total: they return a
// response rather than raise, and must not retain the ConnConfig view
// beyond the call (§9).
type Handler func(view *ConnConfig, req *Request, res *Response) *Response

// RouteSpec is one (method, template, route-name) entry of Config.Routes.
// Template may carry a "<mime-type>" suffix overriding the default
// text/html mime for that route (§6).
type RouteSpec struct {
	Method   string
	Template string
	Name     string
}

// Config is the immutable, process-wide server configuration (§3). It is
// built once at startup (in code, or via LoadConfigFile) and never
// mutated afterward; ConnConfig is derived from it once per connection.
type Config struct {
	// Hosts is the non-empty set of addresses to bind and listen on.
	Hosts []string `mapstructure:"hosts"`

	// Port is the TCP port every host listens on: 80, or >= 1024.
	Port int `mapstructure:"port"`

	// ServerBanner is the value of the Server response header.
	ServerBanner string `mapstructure:"server_banner"`

	// ResourcesRoot is the existing directory that must contain
	// forbidden.html, home.html, not-found.html and not-supported.html,
	// and under which static files and mustache templates are resolved.
	ResourcesRoot string `mapstructure:"resources_root"`

	// Routes is the ordered list of routes participating in dispatch.
	// Order matters: the first route whose method, template and mime
	// type all match wins (§8).
	Routes []RouteSpec `mapstructure:"routes"`

	// Views maps a route name to its Handler. Every route name must
	// appear here exactly once, and every key here must name a route.
	Views map[string]Handler `mapstructure:"-"`

	// SSEOpeners maps a request path to the SSEOpener invoked the first
	// time that path receives a text/event-stream request (§4.5).
	SSEOpeners map[string]SSEOpener `mapstructure:"-"`

	// StaticTypes maps a lower-cased file extension (including the
	// leading '.') to a MIME type, overriding DefaultStaticTypes for
	// any extensions present.
	StaticTypes map[string]string `mapstructure:"static_types"`

	// ReadErrorTemplate is a non-empty mustache template string
	// containing "{{request-path}}", rendered as the 403 body whenever
	// a template fails to load or (in debug mode) fails validation.
	ReadErrorTemplate string `mapstructure:"read_error_template"`

	// Settings holds free-form string settings. Only "debug" is
	// interpreted by the core (§6): the literal value "true" enables
	// Cache-Control: no-cache and debug-mode template validation.
	Settings map[string]string `mapstructure:"settings"`

	// MinifierEnabled, when true, minifies mustache-rendered
	// text/html, text/css and text/javascript bodies before framing
	// (never static-file bodies).
	MinifierEnabled bool `mapstructure:"minifier_enabled"`

	// ResourceLoader loads and checks for template/static-file bytes.
	// Defaults to a filesystem loader rooted at ResourcesRoot.
	ResourceLoader ResourceLoader `mapstructure:"-"`

	// TemplateEngine renders a mustache template against a context.
	// Defaults to github.com/cbroglie/mustache.
	TemplateEngine TemplateEngine `mapstructure:"-"`

	// Clock produces the Date header's timestamp. Defaults to the
	// system clock.
	Clock Clock `mapstructure:"-"`

	// Logger receives operational log lines (§1.1, §7). Defaults to a
	// Logger named after ServerBanner.
	Logger *Logger `mapstructure:"-"`
}

// DefaultStaticTypes is the extension-to-MIME table used when
// Config.StaticTypes does not override an extension (§6).
func DefaultStaticTypes() map[string]string {
	return map[string]string{
		".m4a":  "audio/mp4",
		".m4b":  "audio/mp4",
		".mp3":  "audio/mpeg",
		".wav":  "audio/vnd.wave",
		".gif":  "image/gif",
		".jpeg": "image/jpeg",
		".jpg":  "image/jpeg",
		".png":  "image/png",
		".tiff": "image/tiff",
		".css":  "text/css",
		".csv":  "text/csv",
		".html": "text/html",
		".htm":  "text/html",
		".txt":  "text/plain",
		".text": "text/plain",
		".xml":  "text/xml",
		".js":   "text/javascript",
		".mp4":  "video/mp4",
		".mov":  "video/quicktime",
		".qt":   "video/quicktime",
		".mpg":  "video/mpeg",
		".mpeg": "video/mpeg",
	}
}

// DefaultReadErrorTemplate is the read-error template Config starts with
// when none is supplied.
const DefaultReadErrorTemplate = "<!DOCTYPE html>\n<meta charset=utf-8>\n\n" +
	"<title>Error 403 (Forbidden)!</title>\n\n" +
	"<p>Could not read URL {{request-path}}.</p>"

// requiredResourceFiles are the files resources_root must contain.
var requiredResourceFiles = []string{
	"forbidden.html",
	"home.html",
	"not-found.html",
	"not-supported.html",
}

// NewConfig returns a Config with the documented defaults (empty hosts,
// port 80, DefaultStaticTypes, DefaultReadErrorTemplate, and the default
// TemplateEngine/Clock/Logger implementations). Callers still must set
// Hosts, ResourcesRoot, Routes and Views.
func NewConfig(appName string) *Config {
	return &Config{
		Port:              80,
		ServerBanner:      appName,
		Views:             map[string]Handler{},
		SSEOpeners:        map[string]SSEOpener{},
		StaticTypes:       map[string]string{},
		ReadErrorTemplate: DefaultReadErrorTemplate,
		Settings:          map[string]string{},
		TemplateEngine:    mustacheEngine{},
		Clock:             systemClock{},
		Logger:            NewLogger(appName),
	}
}

// compiledRoute is a RouteSpec with its template pre-compiled and its
// mime type resolved.
type compiledRoute struct {
	method   string
	template *Template
	mime     string
	name     string
}

// toCompiledRoute parses an optional "<mime-type>" suffix off spec's
// Template (§6) and compiles the remaining path template.
func toCompiledRoute(spec RouteSpec) compiledRoute {
	tmpl := spec.Template
	mime := "text/html"
	if lt := strings.IndexByte(tmpl, '<'); lt >= 0 {
		if gt := strings.IndexByte(tmpl[lt:], '>'); gt >= 0 {
			mime = tmpl[lt+1 : lt+gt]
			tmpl = tmpl[:lt]
		}
	}
	return compiledRoute{
		method:   spec.Method,
		template: CompileTemplate(tmpl),
		mime:     mime,
		name:     spec.Name,
	}
}

// ConnConfig is the per-connection, hash-indexed projection of Config
// (§3, GLOSSARY). It is derived once per accepted connection and is
// exclusively owned by that connection's goroutines; handlers must not
// retain it past the call that receives it (§9).
type ConnConfig struct {
	cfg *Config

	routes      []compiledRoute
	views       map[string]Handler
	sseOpeners  map[string]SSEOpener
	staticTypes map[string]string
	settings    map[string]string

	resourcesRoot string

	// sseTasks and ssePush are exclusively owned and mutated by the
	// connection loop goroutine (§5).
	sseTasks map[string]chan<- ControlEvent
	ssePush  chan string
}

// deriveConnConfig builds a ConnConfig from cfg, binding ssePush as the
// connection's SSE push channel (§4.3).
func deriveConnConfig(cfg *Config, ssePush chan string) *ConnConfig {
	routes := make([]compiledRoute, len(cfg.Routes))
	for i, spec := range cfg.Routes {
		routes[i] = toCompiledRoute(spec)
	}

	staticTypes := map[string]string{}
	for k, v := range DefaultStaticTypes() {
		staticTypes[k] = v
	}
	for k, v := range cfg.StaticTypes {
		staticTypes[k] = v
	}

	settings := map[string]string{}
	for k, v := range cfg.Settings {
		settings[k] = v
	}

	return &ConnConfig{
		cfg:           cfg,
		routes:        routes,
		views:         cfg.Views,
		sseOpeners:    cfg.SSEOpeners,
		staticTypes:   staticTypes,
		settings:      settings,
		resourcesRoot: cfg.ResourcesRoot,
		sseTasks:      map[string]chan<- ControlEvent{},
		ssePush:       ssePush,
	}
}

// ServerBanner returns the Config's server banner.
func (cc *ConnConfig) ServerBanner() string { return cc.cfg.ServerBanner }

// Settings returns the derived settings map.
func (cc *ConnConfig) Settings() map[string]string { return cc.settings }

// Debug reports whether settings["debug"] == "true".
func (cc *ConnConfig) Debug() bool { return cc.settings["debug"] == "true" }

// Validate returns a single, space-joined error string describing every
// configuration problem found, or "" if ConnConfig is valid (§4.3).
// Missing-name lists are sorted lexicographically and joined with ", "
// so the message is deterministic for tests.
func (cc *ConnConfig) Validate() string {
	var problems []string

	if len(cc.cfg.Hosts) == 0 {
		problems = append(problems, "Hosts is empty.")
	}
	for _, h := range cc.cfg.Hosts {
		if h == "" {
			problems = append(problems, "Host is empty.")
		}
	}

	if cc.cfg.Port != 80 && cc.cfg.Port < 1024 {
		problems = append(problems, "Port should be 80 or 1024 or above.")
	}

	if cc.cfg.ServerBanner == "" {
		problems = append(problems, "server_info is empty.")
	}

	if cc.resourcesRoot == "" {
		problems = append(problems, "resources_root is empty.")
	} else if info, err := os.Stat(cc.resourcesRoot); err != nil || !info.IsDir() {
		problems = append(problems, "resources_root is not a directory.")
	} else {
		var missing []string
		for _, name := range requiredResourceFiles {
			if _, err := os.Stat(cc.resourcesRoot + string(os.PathSeparator) + name); err != nil {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			problems = append(problems, "Missing required files: "+strings.Join(missing, ", "))
		}
	}

	if cc.cfg.ReadErrorTemplate == "" {
		problems = append(problems, "read_error is empty.")
	}

	routeNames := map[string]bool{}
	for _, r := range cc.routes {
		routeNames[r.name] = true
	}
	viewNames := map[string]bool{}
	for name := range cc.views {
		viewNames[name] = true
	}

	var routesWithoutViews []string
	for name := range routeNames {
		if !viewNames[name] {
			routesWithoutViews = append(routesWithoutViews, name)
		}
	}
	if len(routesWithoutViews) > 0 {
		sort.Strings(routesWithoutViews)
		problems = append(problems, "No views for the following routes: "+strings.Join(routesWithoutViews, ", "))
	}

	var viewsWithoutRoutes []string
	for name := range viewNames {
		if !routeNames[name] {
			viewsWithoutRoutes = append(viewsWithoutRoutes, name)
		}
	}
	if len(viewsWithoutRoutes) > 0 {
		sort.Strings(viewsWithoutRoutes)
		problems = append(problems, "No routes for the following views: "+strings.Join(viewsWithoutRoutes, ", "))
	}

	return strings.Join(problems, " ")
}

// mimeForExtension looks up ext (including the leading '.') in the
// derived static-type table, defaulting to text/html (§6).
func (cc *ConnConfig) mimeForExtension(ext string) string {
	if mime, ok := cc.staticTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return "text/html"
}
