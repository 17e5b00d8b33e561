package proxybackend

import (
	"net/http"
	"strconv"

	"github.com/penguindev/penguin/internal/csp"
	"github.com/penguindev/penguin/internal/inject"
)

// AdjustResponse rewrites an already-fully-read HTML response body in
// place: it is decoded, injected, and recompressed with its original
// Content-Encoding, and the Content-Security-Policy header is widened if
// necessary. Location rewriting happens earlier, in Server.ServeHTTP,
// before the caller decides whether to buffer the body at all. Non-fatal
// problems are logged: an unknown or undecodable encoding leaves the body
// untouched, and a failed recompression serves the injected body
// uncompressed with the Content-Encoding header removed.
func AdjustResponse(resp *http.Response, body []byte, controlPath string, warn *warnOnce) []byte {
	contentEncoding := resp.Header.Get("Content-Encoding")

	decoded, err := decode(body, contentEncoding)
	if err != nil {
		warn.warnf("encoding:"+contentEncoding, "proxybackend: %v, skipping injection", err)
		return body
	}

	injected := inject.Into(decoded, inject.Script(controlPath))

	if policy := resp.Header.Get("Content-Security-Policy"); policy != "" {
		resp.Header.Set("Content-Security-Policy", csp.EnsureInjectable(policy))
	}

	recompressed, err := recompress(injected, contentEncoding)
	if err != nil {
		warn.warnf("recompress:"+contentEncoding, "proxybackend: %v, serving uncompressed injected body", err)
		resp.Header.Del("Content-Encoding")
		recompressed = injected
	}

	resp.Header.Set("Content-Length", strconv.Itoa(len(recompressed)))
	return recompressed
}
