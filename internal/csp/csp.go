// Package csp implements the informal "Parse a serialized CSP" rewriting
// Penguin needs so its injected <script> tag is never blocked by a
// Content-Security-Policy header the proxied origin sends.
package csp

import (
	"sort"
	"strings"
)

// directivesNeedingSelf are the directives injection depends on: the
// <script> tag Penguin adds must be allowed to load (script-src) and to
// open its WebSocket back to the control path (connect-src).
var directivesNeedingSelf = []string{"script-src", "connect-src"}

// policy is an ordered, deduplicated set of CSP directives.
type policy struct {
	order  []string
	values map[string][]string
}

// parse splits a serialized CSP header value into directives, per the W3C
// CSP3 "Parse a serialized CSP" algorithm, informally: split on ';', trim
// surrounding whitespace, drop empty tokens, lowercase the first token as
// the directive name, keep the rest as source expressions. A directive
// name repeated after its first occurrence is dropped (duplicates are
// ignored, not merged); the drop is not logged.
func parse(header string) policy {
	p := policy{values: map[string][]string{}}

	for _, raw := range strings.Split(header, ";") {
		tokens := strings.Fields(raw)
		if len(tokens) == 0 {
			continue
		}

		name := strings.ToLower(tokens[0])
		if _, seen := p.values[name]; seen {
			continue
		}

		p.order = append(p.order, name)
		p.values[name] = append([]string(nil), tokens[1:]...)
	}

	return p
}

// serialize renders directives in sorted name order, each directive's
// values space-separated, directives joined with "; ".
func (p policy) serialize() string {
	names := append([]string(nil), p.order...)
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		values := p.values[name]
		if len(values) == 0 {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, name+" "+strings.Join(values, " "))
	}

	return strings.Join(parts, "; ")
}

func (p policy) permitsSelf(directive string) bool {
	values, ok := p.values[directive]
	if !ok {
		return false
	}
	for _, v := range values {
		if v == "'self'" || v == "*" {
			return true
		}
	}
	return false
}

func (p *policy) set(directive string, values []string) {
	if _, existed := p.values[directive]; !existed {
		p.order = append(p.order, directive)
	}
	p.values[directive] = values
}

func removeNone(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "'none'" {
			out = append(out, v)
		}
	}
	return out
}

// EnsureInjectable rewrites header so that both script-src and connect-src
// (falling back to default-src when a specific directive is absent) permit
// 'self' or '*'. If the input already permits both, it is returned
// unchanged (idempotence); otherwise the minimal directives needed are
// added or widened with 'self', dropping any 'none' they carried.
func EnsureInjectable(header string) string {
	p := parse(header)

	alreadyOK := true
	for _, d := range directivesNeedingSelf {
		if !permitsEffective(p, d) {
			alreadyOK = false
			break
		}
	}
	if alreadyOK {
		return header
	}

	for _, d := range directivesNeedingSelf {
		if permitsEffective(p, d) {
			continue
		}

		if values, ok := p.values[d]; ok {
			p.set(d, appendSelf(removeNone(values)))
			continue
		}

		if values, ok := p.values["default-src"]; ok {
			p.set(d, appendSelf(removeNone(values)))
			continue
		}

		p.set(d, []string{"'self'"})
	}

	return p.serialize()
}

func appendSelf(values []string) []string {
	for _, v := range values {
		if v == "'self'" || v == "*" {
			return values
		}
	}
	return append(values, "'self'")
}

// permitsEffective reports whether directive is permitted either directly
// or, when absent, via default-src.
func permitsEffective(p policy, directive string) bool {
	if _, ok := p.values[directive]; ok {
		return p.permitsSelf(directive)
	}
	return p.permitsSelf("default-src")
}
