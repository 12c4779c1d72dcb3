package rwebserve

import "github.com/cbroglie/mustache"

// TemplateEngine is the mustache template engine external collaborator
// (§6): render a template's source text against a context map.
type TemplateEngine interface {
	Render(templateText string, context map[string]interface{}) (string, error)
}

// mustacheEngine is the default TemplateEngine, backed by
// github.com/cbroglie/mustache.
type mustacheEngine struct{}

func (mustacheEngine) Render(templateText string, context map[string]interface{}) (string, error) {
	return mustache.Render(templateText, context)
}
