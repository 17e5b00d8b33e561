// Package encoding filters the Accept-Encoding header Penguin forwards to
// the proxied origin down to the encodings its response pipeline actually
// knows how to decode and recompress.
package encoding

import "strings"

// supported is the set of content-codings the proxy backend can round-trip
// through decode/inject/recompress. Anything else is stripped so the
// origin never answers with a body Penguin can't transform.
var supported = map[string]bool{
	"gzip":     true,
	"br":       true,
	"identity": true,
}

// Filter keeps only the gzip, br, and identity entries of an
// Accept-Encoding header value, preserving each kept entry's original
// q-value and the relative order entries appeared in.
func Filter(acceptEncoding string) string {
	var kept []string

	for _, entry := range strings.Split(acceptEncoding, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		coding := entry
		if i := strings.IndexByte(entry, ';'); i >= 0 {
			coding = strings.TrimSpace(entry[:i])
		}

		if supported[strings.ToLower(coding)] {
			kept = append(kept, entry)
		}
	}

	return strings.Join(kept, ", ")
}
