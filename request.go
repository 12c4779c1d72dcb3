package rwebserve

import "strings"

// Query is a query-parameter multimap that preserves duplicate keys
// (§3). Only GetAll is exposed: the spec leaves duplicate-key/"first
// wins" semantics for a single-value Get unstated, so this module does
// not guess a winner policy (§9 Open Question).
type Query map[string][]string

// GetAll returns every value associated with key, in the order they
// appeared in the query string, or nil if key was never present.
func (q Query) GetAll(key string) []string { return q[key] }

// Request is one parsed, percent-decoded HTTP request (§3). It is built
// once by the connection loop and is immutable from then on; handlers
// must not mutate it.
type Request struct {
	Version    string // "<major>.<minor>", e.g. "1.1"
	Method     string
	LocalAddr  string
	RemoteAddr string

	// Path is percent-decoded with any query string stripped off.
	Path string

	// Match holds the variables/trailer captured by the route template
	// that dispatched this request, plus "fullpath" (§4.1). Nil for
	// requests resolved by the static or error-page handlers.
	Match map[string]string

	Query   Query
	Headers map[string]string // lower-cased names, trimmed values
	Body    []byte
}

// Accept returns the Accept header split on ',' with surrounding
// whitespace trimmed, defaulting to ["text/html"] when Accept is absent
// (§4.4 step 2). Quality values such as "q=0.9" are never parsed or
// stripped (§9 Open Question): a type either appears verbatim in this
// list or it doesn't.
func (r *Request) Accept() []string {
	raw, ok := r.Headers["accept"]
	if !ok || raw == "" {
		return []string{"text/html"}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

func acceptsType(accepted []string, mime string) bool {
	for _, a := range accepted {
		if a == mime || a == "*/*" {
			return true
		}
	}
	return false
}

// parseTarget splits a percent-decoded request target into its path and
// query-parameter multimap (§4.4 step 1). The query is split on '&',
// then each fragment on the first '='. If any fragment fails to split
// into exactly key and value, the whole target is malformed: the
// original target (including the unsplit query string) is returned as
// path, with an empty Query, so that routing then simply fails to match
// any route (mirrors original_source/src/request.rs's parse_url).
func parseTarget(target string) (path string, query Query) {
	i := strings.IndexByte(target, '?')
	if i < 0 {
		return target, Query{}
	}

	fragments := strings.Split(target[i+1:], "&")
	pairs := make([][2]string, 0, len(fragments))
	for _, f := range fragments {
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 {
			return target, Query{}
		}
		pairs = append(pairs, [2]string{kv[0], kv[1]})
	}

	query = Query{}
	for _, kv := range pairs {
		query[kv[0]] = append(query[kv[0]], kv[1])
	}
	return target[:i], query
}
