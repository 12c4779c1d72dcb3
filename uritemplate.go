package rwebserve

import "strings"

// componentKind classifies one slash-separated segment of a compiled
// route template.
type componentKind uint8

const (
	literalComponent componentKind = iota
	variableComponent
	trailerComponent
)

// templateComponent is one matcher in a compiled Template.
type templateComponent struct {
	kind componentKind
	text string // literal text, or the captured variable/trailer name
}

// Template is a compiled route path pattern, e.g. "/blueprint/{site}" or
// "/csv/*path". Compile it once with CompileTemplate and reuse it across
// requests; Match is safe for concurrent use.
type Template struct {
	raw        string
	components []templateComponent
}

// String returns the template string Template was compiled from.
func (t *Template) String() string {
	return t.raw
}

// splitPathNonEmpty splits p on '/', dropping empty segments, so that
// "/foo//bar/" and "foo/bar" both yield ["foo", "bar"].
func splitPathNonEmpty(p string) []string {
	raw := strings.Split(p, "/")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CompileTemplate compiles a route template string into a Template. Each
// '/'-separated segment becomes a Literal, Variable ("{name}") or, only
// in final position, a Trailer ("*name") matcher. A leading '*' anywhere
// but the last segment is not special and matches literally.
func CompileTemplate(template string) *Template {
	parts := splitPathNonEmpty(template)

	components := make([]templateComponent, len(parts))
	for i, part := range parts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") && len(part) >= 2 {
			components[i] = templateComponent{kind: variableComponent, text: part[1 : len(part)-1]}
		} else {
			components[i] = templateComponent{kind: literalComponent, text: part}
		}
	}

	if n := len(parts); n > 0 && strings.HasPrefix(parts[n-1], "*") {
		components[n-1] = templateComponent{kind: trailerComponent, text: parts[n-1][1:]}
	}

	return &Template{raw: template, components: components}
}

// Match matches path against t. On success the returned map holds one
// entry per captured variable/trailer name plus a "fullpath" entry equal
// to path itself. A nil (zero-length) map means no match.
func (t *Template) Match(path string) map[string]string {
	parts := splitPathNonEmpty(path)

	result := make(map[string]string)
	i := 0
	for i < len(t.components) {
		if i == len(parts) {
			return nil // ran out of path components to match
		}

		switch c := t.components[i]; c.kind {
		case literalComponent:
			if parts[i] != c.text {
				return nil
			}
		case variableComponent:
			result[c.text] = parts[i]
		case trailerComponent:
			result[c.text] = strings.Join(parts[i:], "/")
			i = len(parts) - 1
		}
		i++
	}

	if i != len(parts) {
		return nil // trailing path components the template never consumed
	}

	result["fullpath"] = path
	return result
}
