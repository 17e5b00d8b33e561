package proxybackend

import (
	"mime"
	"strings"

	"github.com/aofei/mimesniffer"
)

// looksHTML reports whether a response should be treated as HTML for
// injection purposes. The Content-Type header is authoritative when
// present and parses; only when it is absent or unparsable do we fall back
// to sniffing prefix, the start of the body as received from the upstream
// (still in its Content-Encoding, if any).
//
// Either ambiguous outcome (no usable content-type but the bytes resemble
// HTML, or a content-type that says otherwise while the bytes resemble
// HTML) is logged once per pathAndQuery through warn, per spec.md §4.4
// step 2.
func looksHTML(contentType string, prefix []byte, warn *warnOnce, pathAndQuery string) bool {
	bodyLooksHTML := strings.HasPrefix(mimesniffer.Sniff(prefix), "text/html") || looksLikeHTMLBytes(prefix)

	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			isHTML := strings.HasPrefix(mt, "text/html")
			if !isHTML && bodyLooksHTML {
				warn.warnf("sniff:"+pathAndQuery, "proxybackend: content-type %q for %s but body looks like HTML, not treating as HTML", contentType, pathAndQuery)
			}
			return isHTML
		}
	}

	if bodyLooksHTML {
		warn.warnf("sniff:"+pathAndQuery, "proxybackend: no usable content-type for %s, sniffed body looks like HTML, treating as HTML", pathAndQuery)
		return true
	}

	return false
}

// looksLikeHTMLBytes is the heuristic fallback for when even mimesniffer
// couldn't decide: printable text containing an opening HTML tag.
func looksLikeHTMLBytes(body []byte) bool {
	n := len(body)
	if n > 512 {
		n = 512
	}
	sample := body[:n]

	for _, b := range sample {
		if b == 0x7f || (b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f') {
			return false
		}
	}

	lower := strings.ToLower(string(sample))
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html")
}
